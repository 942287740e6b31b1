// Package doclocker pins uploaded documents and their NFT metadata to a
// content-addressed storage network.
package doclocker

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/meowdada/doclocker/pkg/object"
)

// Storer puts blob sets to the pinning network.
type Storer interface {
	// Store stores all blobs of the set in one call and returns the content
	// identifier of the set. Each blob is retrievable as <cid>/<name>.
	Store(ctx context.Context, bs object.BlobSet) (cid.Cid, error)

	// Unpin releases previously stored content.
	Unpin(ctx context.Context, id cid.Cid) error
}

// Index records completed uploads locally.
type Index interface {
	Put(ctx context.Context, doc object.Document) error
}
