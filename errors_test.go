package doclocker

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))

	err := &Error{Kind: KindTimeout, Op: "store", Err: context.DeadlineExceeded}
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, KindTimeout, KindOf(errors.Wrap(err, "upload document")))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "store: timeout: context deadline exceeded", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "invalid_input", KindInvalidInput.String())
	assert.Equal(t, "storage_unavailable", KindStorageUnavailable.String())
	assert.Equal(t, "local_io", KindLocalIO.String())
	assert.Equal(t, "too_large", KindTooLarge.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
