package drive

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/meowdada/doclocker/pkg/kv"
	"github.com/meowdada/doclocker/pkg/object"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	docCid  = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
	metaCid = "bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku"
)

type recordingUnpinner struct {
	ids []cid.Cid
	err error
}

func (r *recordingUnpinner) Unpin(ctx context.Context, id cid.Cid) error {
	r.ids = append(r.ids, id)
	return r.err
}

func openTestDrive(t *testing.T, u Unpinner) Instance {
	t.Helper()
	store, err := kv.Open("", true, nil)
	require.NoError(t, err)
	d := Open(store, u)
	t.Cleanup(func() { d.Close(context.Background()) })
	return d
}

func testDocument(t *testing.T, token string) object.Document {
	dc, err := cid.Decode(docCid)
	require.NoError(t, err)
	mc, err := cid.Decode(metaCid)
	require.NoError(t, err)
	return object.Document{
		TokenID:     token,
		OwnerName:   "Alice",
		DocName:     "Deed",
		DocumentCid: dc,
		DocumentURL: "https://" + docCid + ".ipfs.w3s.link/1700000000000_MyFile.pdf",
		MetadataCid: mc,
		MetadataURL: "https://" + metaCid + ".ipfs.w3s.link/" + token + ".json",
		Size:        2048,
		Timestamp:   time.UnixMilli(1700000000000),
	}
}

func TestDrive(t *testing.T) {
	ctx := context.Background()
	d := openTestDrive(t, nil)

	require.NoError(t, d.Put(ctx, testDocument(t, "42")))
	require.NoError(t, d.Put(ctx, testDocument(t, "7")))
	require.NoError(t, d.Put(ctx, testDocument(t, "142")))

	f, err := d.Stat(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Deed", f.DocName)
	assert.Equal(t, docCid, f.Cid.String())
	assert.Equal(t, metaCid, f.MetadataCid.String())
	assert.Equal(t, int64(2048), f.Size)
	assert.True(t, f.Timestamp.Equal(time.UnixMilli(1700000000000)))

	_, err = d.Stat(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNoSuchKey))

	lr, err := d.List(ctx, "42")
	require.NoError(t, err)
	require.Len(t, lr.Files(), 2)
	assert.Equal(t, "142", lr.Files()[0].Key)

	lr, err = d.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, lr.Files(), 3)
}

func TestListResultRender(t *testing.T) {
	ctx := context.Background()
	d := openTestDrive(t, nil)
	require.NoError(t, d.Put(ctx, testDocument(t, "42")))

	lr, err := d.List(ctx, "")
	require.NoError(t, err)

	table := string(lr.Bytes(ListMaskKey | ListMaskSize))
	assert.Contains(t, table, "|Key|Size   |")
	assert.Contains(t, table, "|42 |2.0 KiB|")

	var buf bytes.Buffer
	_, err = lr.WriteTo(&buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(buf.String(), "1 documents, 2.0 KiB\n"), buf.String())
}

func TestDriveRemove(t *testing.T) {
	ctx := context.Background()
	u := &recordingUnpinner{}
	d := openTestDrive(t, u)
	require.NoError(t, d.Put(ctx, testDocument(t, "42")))

	require.NoError(t, d.Remove(ctx, "42"))
	require.Len(t, u.ids, 2)
	assert.Equal(t, metaCid, u.ids[0].String())
	assert.Equal(t, docCid, u.ids[1].String())

	_, err := d.Stat(ctx, "42")
	assert.True(t, errors.Is(err, ErrNoSuchKey))
}

func TestDriveRemoveKeepsEntryOnUnpinFailure(t *testing.T) {
	ctx := context.Background()
	u := &recordingUnpinner{err: errors.New("unreachable")}
	d := openTestDrive(t, u)
	require.NoError(t, d.Put(ctx, testDocument(t, "42")))

	assert.Error(t, d.Remove(ctx, "42"))
	_, err := d.Stat(ctx, "42")
	assert.NoError(t, err)
}
