package pinning

import (
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	files "github.com/ipfs/go-ipfs-files"
	ifaceopts "github.com/ipfs/interface-go-ipfs-core/options"
	"github.com/ipfs/interface-go-ipfs-core/path"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/options"
	"github.com/meowdada/doclocker/pkg/object"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rootCid = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"

type addedEntry struct {
	name string
	data string
}

type fakeUnixfs struct {
	entries  []addedEntry
	settings *ifaceopts.UnixfsAddSettings
	err      error
	block    bool
}

func (f *fakeUnixfs) Add(ctx context.Context, node files.Node, opts ...ifaceopts.UnixfsAddOption) (path.Resolved, error) {
	settings, _, err := ifaceopts.UnixfsAddOptions(opts...)
	if err != nil {
		return nil, err
	}
	f.settings = settings

	it := files.ToDir(node).Entries()
	for it.Next() {
		data, err := ioutil.ReadAll(files.ToFile(it.Node()))
		if err != nil {
			return nil, err
		}
		f.entries = append(f.entries, addedEntry{name: it.Name(), data: string(data)})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	c, err := cid.Decode(rootCid)
	if err != nil {
		return nil, err
	}
	return path.IpfsPath(c), nil
}

type fakePin struct {
	removed   []string
	recursive bool
	err       error
}

func (f *fakePin) Rm(ctx context.Context, p path.Path, opts ...ifaceopts.PinRmOption) error {
	settings, err := ifaceopts.PinRmOptions(opts...)
	if err != nil {
		return err
	}
	f.recursive = settings.Recursive
	f.removed = append(f.removed, p.String())
	return f.err
}

func newTestClient(u *fakeUnixfs, p *fakePin, opts ...*options.PinOptions) *Client {
	return &Client{
		unixfs: u,
		pin:    p,
		opt:    options.MergePinOptions(opts...),
	}
}

func TestStore(t *testing.T) {
	u := &fakeUnixfs{}
	c := newTestClient(u, &fakePin{})

	id, err := c.Store(context.Background(), object.BlobSet{
		{Name: "application_pdf", Data: []byte("contents-of-file-1")},
		{Name: "1700000000000_deed.pdf", Data: []byte("%PDF-1.4")},
	})
	require.NoError(t, err)
	assert.Equal(t, rootCid, id.String())

	assert.Equal(t, []addedEntry{
		{name: "application_pdf", data: "contents-of-file-1"},
		{name: "1700000000000_deed.pdf", data: "%PDF-1.4"},
	}, u.entries)
	assert.Equal(t, 1, u.settings.CidVersion)
	assert.True(t, u.settings.Pin)
}

func TestStoreEmptySet(t *testing.T) {
	u := &fakeUnixfs{}
	c := newTestClient(u, &fakePin{})

	_, err := c.Store(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrEmptyBlobSet))
	assert.Equal(t, doclocker.KindInvalidRecord, doclocker.KindOf(err))
	assert.Nil(t, u.settings, "api must not be called")
}

func TestStoreErrors(t *testing.T) {
	bs := object.BlobSet{{Name: "a.json", Data: []byte("{}")}}

	testcases := []struct {
		description string
		unixfs      *fakeUnixfs
		opts        []*options.PinOptions
		kind        doclocker.Kind
	}{
		{
			description: "api rejects request",
			unixfs:      &fakeUnixfs{err: errors.New("401 unauthorized")},
			kind:        doclocker.KindStorageUnavailable,
		},
		{
			description: "api does not answer in time",
			unixfs:      &fakeUnixfs{block: true},
			opts:        []*options.PinOptions{options.Pin().SetTimeout(10 * time.Millisecond)},
			kind:        doclocker.KindTimeout,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.description, func(t *testing.T) {
			c := newTestClient(tc.unixfs, &fakePin{}, tc.opts...)
			_, err := c.Store(context.Background(), bs)
			assert.Equal(t, tc.kind, doclocker.KindOf(err))
		})
	}
}

func TestUnpin(t *testing.T) {
	p := &fakePin{}
	c := newTestClient(&fakeUnixfs{}, p)

	id, err := cid.Decode(rootCid)
	require.NoError(t, err)

	require.NoError(t, c.Unpin(context.Background(), id))
	assert.Equal(t, []string{"/ipfs/" + rootCid}, p.removed)
	assert.True(t, p.recursive)

	require.NoError(t, c.Unpin(context.Background(), cid.Undef))
	assert.Len(t, p.removed, 1, "undefined cid must be ignored")

	p.err = errors.New("not pinned")
	err = c.Unpin(context.Background(), id)
	assert.Equal(t, doclocker.KindStorageUnavailable, doclocker.KindOf(err))
}
