package doclocker

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure of the upload flow.
type Kind int

const (
	// KindUnknown denotes an error raised outside of this package.
	KindUnknown Kind = iota

	// KindInvalidInput denotes a request missing a required field.
	KindInvalidInput

	// KindStorageUnavailable denotes a network, auth or service failure of
	// the pinning network.
	KindStorageUnavailable

	// KindTimeout denotes a store call exceeding its deadline.
	KindTimeout

	// KindLocalIO denotes a failure reading or removing the temporary file.
	KindLocalIO

	// KindInvalidRecord denotes a payload that could not be serialized.
	KindInvalidRecord

	// KindTooLarge denotes a request body over the configured size limit.
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindTimeout:
		return "timeout"
	case KindLocalIO:
		return "local_io"
	case KindInvalidRecord:
		return "invalid_record"
	case KindTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// Error is a tagged failure of one step of the upload flow.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func invalidInput(reason string) error {
	return &Error{Kind: KindInvalidInput, Op: "validate", Err: errors.New(reason)}
}
