// Package pinning adapts an IPFS HTTP API endpoint into a blob set store.
package pinning

import (
	"context"

	"github.com/ipfs/go-cid"
	files "github.com/ipfs/go-ipfs-files"
	coreiface "github.com/ipfs/interface-go-ipfs-core"
	ifaceopts "github.com/ipfs/interface-go-ipfs-core/options"
	"github.com/ipfs/interface-go-ipfs-core/path"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/options"
	"github.com/meowdada/doclocker/pkg/object"
	"github.com/pkg/errors"
)

// ErrEmptyBlobSet raised when storing a blob set without any blob.
var ErrEmptyBlobSet = errors.New("empty blob set")

type unixfsAPI interface {
	Add(ctx context.Context, node files.Node, opts ...ifaceopts.UnixfsAddOption) (path.Resolved, error)
}

type pinAPI interface {
	Rm(ctx context.Context, p path.Path, opts ...ifaceopts.PinRmOption) error
}

// Client stores blob sets as unixfs directories. It holds no state
// between calls.
type Client struct {
	unixfs unixfsAPI
	pin    pinAPI
	opt    *options.PinOptions
}

var _ doclocker.Storer = (*Client)(nil)

// NewClient creates a Client on top of an ipfs api instance.
func NewClient(api coreiface.CoreAPI, opts ...*options.PinOptions) *Client {
	return &Client{
		unixfs: api.Unixfs(),
		pin:    api.Pin(),
		opt:    options.MergePinOptions(opts...),
	}
}

// Store adds all blobs of bs as a single directory and returns the
// identifier of the directory root. Each blob is addressable as
// <cid>/<blob name>.
func (c *Client) Store(ctx context.Context, bs object.BlobSet) (cid.Cid, error) {
	if len(bs) == 0 {
		return cid.Undef, &doclocker.Error{Kind: doclocker.KindInvalidRecord, Op: "store", Err: ErrEmptyBlobSet}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resolved, err := c.unixfs.Add(ctx, directoryNode(bs),
		ifaceopts.Unixfs.CidVersion(*c.opt.CidVersion),
		ifaceopts.Unixfs.Pin(*c.opt.Pin),
	)
	if err != nil {
		return cid.Undef, classify(ctx, "store", err)
	}
	return resolved.Cid(), nil
}

// Unpin removes the recursive pin of the given identifier. The data stays
// retrievable until the network garbage collects it.
func (c *Client) Unpin(ctx context.Context, id cid.Cid) error {
	if !id.Defined() {
		return nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.pin.Rm(ctx, path.IpfsPath(id), ifaceopts.Pin.RmRecursive(true)); err != nil {
		return classify(ctx, "unpin", err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opt.Timeout == nil || *c.opt.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, *c.opt.Timeout)
}

func directoryNode(bs object.BlobSet) files.Directory {
	entries := make([]files.DirEntry, len(bs))
	for i := range bs {
		entries[i] = files.FileEntry(bs[i].Name, files.NewBytesFile(bs[i].Data))
	}
	return files.NewSliceDirectory(entries)
}

func classify(ctx context.Context, op string, err error) error {
	kind := doclocker.KindStorageUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = doclocker.KindTimeout
	}
	return &doclocker.Error{Kind: kind, Op: op, Err: err}
}
