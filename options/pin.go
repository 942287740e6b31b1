package options

import "time"

const (
	defaultCidVersion = 1
)

// PinOptions configures how blob sets are added to the pinning network.
type PinOptions struct {
	CidVersion *int
	Pin        *bool
	Timeout    *time.Duration
}

// SetCidVersion sets the CID version of added directories.
func (o *PinOptions) SetCidVersion(v int) *PinOptions {
	o.CidVersion = &v
	return o
}

// SetPin sets whether added content is pinned.
func (o *PinOptions) SetPin(flag bool) *PinOptions {
	o.Pin = boolPtr(flag)
	return o
}

// SetTimeout bounds each outbound call. A zero duration means no bound.
func (o *PinOptions) SetTimeout(d time.Duration) *PinOptions {
	o.Timeout = &d
	return o
}

// Pin creates an empty PinOptions.
func Pin() *PinOptions {
	return &PinOptions{}
}

// DefaultPin creates PinOptions that pin CIDv1 directories.
func DefaultPin() *PinOptions {
	return &PinOptions{
		CidVersion: intPtr(defaultCidVersion),
		Pin:        boolPtr(true),
	}
}

// MergePinOptions merges multiple PinOptions on top of DefaultPin in a
// last-one-wins fashion.
func MergePinOptions(opts ...*PinOptions) *PinOptions {
	o := DefaultPin()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.CidVersion != nil {
			o.CidVersion = opt.CidVersion
		}
		if opt.Pin != nil {
			o.Pin = opt.Pin
		}
		if opt.Timeout != nil {
			o.Timeout = opt.Timeout
		}
	}
	return o
}

func boolPtr(flag bool) *bool {
	return &flag
}

func intPtr(v int) *int {
	return &v
}

func strPtr(str string) *string {
	return &str
}
