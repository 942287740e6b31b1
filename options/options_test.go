package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMergePinOptions(t *testing.T) {
	o := MergePinOptions(nil, Pin().SetCidVersion(0), Pin().SetTimeout(time.Second))
	assert.Equal(t, 0, *o.CidVersion)
	assert.True(t, *o.Pin)
	assert.Equal(t, time.Second, *o.Timeout)

	o = MergePinOptions()
	assert.Equal(t, 1, *o.CidVersion)
	assert.Nil(t, o.Timeout)
}

func TestMergeUploadOptions(t *testing.T) {
	o := MergeUploadOptions()
	assert.Equal(t, "ipfs.w3s.link", *o.Gateway)
	assert.Equal(t, time.Minute, *o.StoreTimeout)
	assert.True(t, *o.UnpinOrphans)
	assert.NotNil(t, o.Logger)
	assert.NotNil(t, o.Clock)

	logger := zap.NewExample()
	o = MergeUploadOptions(
		Upload().SetGateway("dweb.link").SetUnpinOrphans(false),
		Upload().SetGateway(""),
		Upload().SetLogger(logger),
	)
	assert.Equal(t, "dweb.link", *o.Gateway)
	assert.False(t, *o.UnpinOrphans)
	assert.Same(t, logger, o.Logger)
}

func TestMergeOpenDriveOptions(t *testing.T) {
	o := MergeOpenDriveOptions(nil)
	assert.Equal(t, "doc/", *o.Prefix)

	o = MergeOpenDriveOptions(OpenDrive().SetPrefix("locker/"))
	assert.Equal(t, "locker/", *o.Prefix)
}
