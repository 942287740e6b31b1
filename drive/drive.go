package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ipfs/go-cid"
	"github.com/meowdada/doclocker/options"
	"github.com/meowdada/doclocker/pkg/format"
	"github.com/meowdada/doclocker/pkg/kv"
	"github.com/meowdada/doclocker/pkg/object"
)

const (
	// ListMask is a bitmask to determine which value to be printed out.
	ListMask uint32 = 127

	// ListMaskKey is a bitmask to enable listing Key fields.
	ListMaskKey uint32 = 1

	// ListMaskCid is a bitmask to enable listing document Cid fields.
	ListMaskCid uint32 = 2

	// ListMaskSize is a bitmask to enable listing Size fields.
	ListMaskSize uint32 = 4

	// ListMaskTime is a bitmask to enable listing Time fields.
	ListMaskTime uint32 = 8

	// ListMaskOwner is a bitmask to enable listing Owner fields.
	ListMaskOwner uint32 = 16

	// ListMaskName is a bitmask to enable listing document name fields.
	ListMaskName uint32 = 32

	// ListMaskURL is a bitmask to enable listing metadata URL fields.
	ListMaskURL uint32 = 64
)

// ErrNoSuchKey denotes an error that indicates no such key presents.
var ErrNoSuchKey = kv.ErrKeyNotFound

// Unpinner releases pinned content.
type Unpinner interface {
	Unpin(ctx context.Context, id cid.Cid) error
}

// Instance denotes a document locker: the local index of everything that
// has been pinned, keyed by token id.
type Instance interface {
	// Put records a completed upload. An existing entry with the same
	// token id is replaced.
	Put(ctx context.Context, doc object.Document) error

	// Stat returns the entry of a token id.
	Stat(ctx context.Context, key string) (File, error)

	// List lists all entries whose key contains the given substring.
	List(ctx context.Context, prefix string) (ListResult, error)

	// Remove unpins both blob sets of an entry and forgets it.
	Remove(ctx context.Context, key string) error

	// Close closes the underlying store.
	Close(ctx context.Context) error
}

// ListResult denote a data structure contains result of list operation.
type ListResult struct {
	files []File
}

// WriteTo implements io.WriterTo interface. It writes a one line summary
// per file.
func (lr *ListResult) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	var total int64
	for _, f := range lr.Files() {
		fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\n", f.Key, f.DocName, humanize.IBytes(uint64(f.Size)), humanize.Time(f.Timestamp))
		total += f.Size
	}
	fmt.Fprintf(&buf, "%d documents, %s\n", len(lr.files), humanize.IBytes(uint64(total)))
	return io.Copy(w, &buf)
}

// Bytes marshals the result into a table.
func (lr *ListResult) Bytes(mask uint32) []byte {
	files := lr.Files()
	rows := make([]format.Row, len(files))
	for i := range files {
		rows[i] = files[i].row(mask)
	}
	return format.Basic{}.Render(rows, format.Options{Sort: true})
}

// Files returns all list results ordered by key.
func (lr *ListResult) Files() []File {
	sort.Slice(lr.files, func(i, j int) bool {
		return lr.files[i].Key < lr.files[j].Key
	})
	return lr.files
}

// File denotes the index entry of one pinned document.
type File struct {
	Key         string    `json:"tokenId"`
	DocName     string    `json:"docName"`
	Owner       string    `json:"ownerName"`
	Wallet      string    `json:"wallet,omitempty"`
	Cid         cid.Cid   `json:"documentCid"`
	URL         string    `json:"documentUrl"`
	MetadataCid cid.Cid   `json:"metadataCid"`
	MetadataURL string    `json:"ipfsUrl_NFT_Metadata"`
	Size        int64     `json:"size"`
	Timestamp   time.Time `json:"timestamp"`
}

func (f *File) row(mask uint32) format.Row {
	m := mask & ListMask
	if m == 0 {
		m = ListMask
	}

	cols := []format.Col{}
	if m&ListMaskKey != 0 {
		cols = append(cols, format.Col{Key: "Key", Value: f.Key})
	}
	if m&ListMaskName != 0 {
		cols = append(cols, format.Col{Key: "Name", Value: f.DocName})
	}
	if m&ListMaskCid != 0 {
		cols = append(cols, format.Col{Key: "Cid", Value: f.Cid})
	}
	if m&ListMaskSize != 0 {
		cols = append(cols, format.Col{Key: "Size", Value: humanize.IBytes(uint64(f.Size))})
	}
	if m&ListMaskTime != 0 {
		cols = append(cols, format.Col{Key: "Timestamp", Value: f.Timestamp.UTC().Format(time.RFC1123)})
	}
	if m&ListMaskOwner != 0 {
		cols = append(cols, format.Col{Key: "Owner", Value: f.Owner})
	}
	if m&ListMaskURL != 0 {
		cols = append(cols, format.Col{Key: "Metadata", Value: f.MetadataURL})
	}

	return format.Row(cols)
}

// Open opens a drive on top of an existing store. The unpinner is used by
// Remove and may be nil for a read only drive.
func Open(store kv.Store, unpinner Unpinner, opts ...*options.OpenDriveOptions) Instance {
	opt := options.MergeOpenDriveOptions(opts...)
	return &drive{
		store:    store,
		unpinner: unpinner,
		prefix:   *opt.Prefix,
		logger:   opt.Logger,
	}
}

func containsKey(key, sub string) bool {
	return len(sub) == 0 || strings.Contains(key, sub)
}
