package options

import (
	"go.uber.org/zap"
)

// OpenDriveOptions configures behaviour while opening a drive.
type OpenDriveOptions struct {
	Prefix *string
	Logger *zap.Logger
}

// SetPrefix sets the key prefix under which documents are kept.
func (o *OpenDriveOptions) SetPrefix(prefix string) *OpenDriveOptions {
	o.Prefix = &prefix
	return o
}

// SetLogger sets the Logger field of the OpenDriveOptions.
func (o *OpenDriveOptions) SetLogger(logger *zap.Logger) *OpenDriveOptions {
	o.Logger = logger
	return o
}

// OpenDrive creates a new OpenDriveOptions instance.
func OpenDrive() *OpenDriveOptions {
	return &OpenDriveOptions{}
}

// MergeOpenDriveOptions combines given OpenDriveOptions into a single OpenDriveOption in
// a last-one-wins fashion.
func MergeOpenDriveOptions(opts ...*OpenDriveOptions) *OpenDriveOptions {
	o := &OpenDriveOptions{
		Prefix: strPtr("doc/"),
		Logger: zap.NewNop(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Prefix != nil {
			o.Prefix = opt.Prefix
		}
		if opt.Logger != nil {
			o.Logger = opt.Logger
		}
	}

	return o
}
