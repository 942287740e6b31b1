package object

import (
	"time"

	"github.com/ipfs/go-cid"
)

// Blob is a named byte payload submitted to the pinning network.
type Blob struct {
	Name string
	Data []byte
}

// Size returns the payload length in bytes.
func (b Blob) Size() int64 {
	return int64(len(b.Data))
}

// BlobSet is an ordered collection of blobs stored together in one call.
type BlobSet []Blob

// Names returns the blob names in order.
func (bs BlobSet) Names() []string {
	names := make([]string, len(bs))
	for i := range bs {
		names[i] = bs[i].Name
	}
	return names
}

// Size returns the total payload length of the set.
func (bs BlobSet) Size() (n int64) {
	for i := range bs {
		n += bs[i].Size()
	}
	return n
}

// MetadataRecord is the NFT metadata object pinned next to a document.
type MetadataRecord struct {
	OwnerName   string `json:"ownerName"`
	DocName     string `json:"docName"`
	Validated   bool   `json:"validated"`
	Description string `json:"description"`
	Document    string `json:"document"`
}

// Document denotes the local index entry of a completed upload.
type Document struct {
	TokenID     string
	OwnerName   string
	DocName     string
	Wallet      string
	DocumentCid cid.Cid
	DocumentURL string
	MetadataCid cid.Cid
	MetadataURL string
	Size        int64
	Timestamp   time.Time
}
