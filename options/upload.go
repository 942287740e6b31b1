package options

import (
	"time"

	"go.uber.org/zap"
)

const (
	defaultGatewayHost  = "ipfs.w3s.link"
	defaultStoreTimeout = time.Minute
)

// UploadOptions configures the upload orchestrator.
type UploadOptions struct {
	Gateway      *string
	StoreTimeout *time.Duration
	UnpinOrphans *bool
	Logger       *zap.Logger
	Clock        func() time.Time
}

// SetGateway sets the subdomain gateway host used for retrieval URLs.
func (o *UploadOptions) SetGateway(host string) *UploadOptions {
	if len(host) == 0 {
		return o
	}
	o.Gateway = strPtr(host)
	return o
}

// SetStoreTimeout bounds each store call. A zero duration leaves the
// bound to the Storer.
func (o *UploadOptions) SetStoreTimeout(d time.Duration) *UploadOptions {
	o.StoreTimeout = &d
	return o
}

// SetUnpinOrphans sets whether a stored document is unpinned when its
// metadata could not be stored.
func (o *UploadOptions) SetUnpinOrphans(flag bool) *UploadOptions {
	o.UnpinOrphans = boolPtr(flag)
	return o
}

// SetLogger sets the Logger field of the UploadOptions.
func (o *UploadOptions) SetLogger(logger *zap.Logger) *UploadOptions {
	o.Logger = logger
	return o
}

// SetClock overrides the time source used to name uploads.
func (o *UploadOptions) SetClock(clock func() time.Time) *UploadOptions {
	o.Clock = clock
	return o
}

// Upload creates an empty UploadOptions.
func Upload() *UploadOptions {
	return &UploadOptions{}
}

// DefaultUpload creates the default UploadOptions.
func DefaultUpload() *UploadOptions {
	d := defaultStoreTimeout
	return &UploadOptions{
		Gateway:      strPtr(defaultGatewayHost),
		StoreTimeout: &d,
		UnpinOrphans: boolPtr(true),
		Logger:       zap.NewNop(),
		Clock:        time.Now,
	}
}

// MergeUploadOptions combines given UploadOptions on top of DefaultUpload
// in a last-one-wins fashion.
func MergeUploadOptions(opts ...*UploadOptions) *UploadOptions {
	o := DefaultUpload()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Gateway != nil {
			o.Gateway = opt.Gateway
		}
		if opt.StoreTimeout != nil {
			o.StoreTimeout = opt.StoreTimeout
		}
		if opt.UnpinOrphans != nil {
			o.UnpinOrphans = opt.UnpinOrphans
		}
		if opt.Logger != nil {
			o.Logger = opt.Logger
		}
		if opt.Clock != nil {
			o.Clock = opt.Clock
		}
	}
	return o
}
