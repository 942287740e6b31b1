package drive

import (
	"context"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/pkg/codec"
	"github.com/meowdada/doclocker/pkg/kv"
	"github.com/meowdada/doclocker/pkg/object"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var _ doclocker.Index = (*drive)(nil)

type drive struct {
	store    kv.Store
	unpinner Unpinner
	prefix   string
	logger   *zap.Logger
}

// record is the gob encoded form of a File. Identifiers are kept as
// strings so the encoding does not depend on cid internals.
type record struct {
	Key         string
	DocName     string
	Owner       string
	Wallet      string
	Cid         string
	URL         string
	MetadataCid string
	MetadataURL string
	Size        int64
	Timestamp   time.Time
}

func (d *drive) Put(ctx context.Context, doc object.Document) error {
	if len(doc.TokenID) == 0 {
		return fmt.Errorf("cannot use empty key")
	}

	data := mustEncodeGob(record{
		Key:         doc.TokenID,
		DocName:     doc.DocName,
		Owner:       doc.OwnerName,
		Wallet:      doc.Wallet,
		Cid:         cidString(doc.DocumentCid),
		URL:         doc.DocumentURL,
		MetadataCid: cidString(doc.MetadataCid),
		MetadataURL: doc.MetadataURL,
		Size:        doc.Size,
		Timestamp:   doc.Timestamp,
	})

	if err := d.store.Set(d.prefix+doc.TokenID, data); err != nil {
		return errors.Wrapf(err, "index %s", doc.TokenID)
	}
	return nil
}

func (d *drive) Stat(ctx context.Context, key string) (File, error) {
	if len(key) == 0 {
		return File{}, fmt.Errorf("cannot use empty key")
	}

	data, err := d.store.Get(d.prefix + key)
	if err != nil {
		return File{}, err
	}
	return decodeFile(data)
}

func (d *drive) List(ctx context.Context, prefix string) (ListResult, error) {
	var files []File
	err := d.store.Iter(d.prefix, func(key string, value []byte) error {
		if !containsKey(key[len(d.prefix):], prefix) {
			return nil
		}
		f, err := decodeFile(value)
		if err != nil {
			d.logger.Warn("skip undecodable entry", zap.String("key", key), zap.Error(err))
			return nil
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		files: files,
	}, nil
}

func (d *drive) Remove(ctx context.Context, key string) error {
	f, err := d.Stat(ctx, key)
	if err != nil {
		return err
	}

	if d.unpinner == nil {
		return errors.New("drive opened without unpinner")
	}

	// Metadata first, it references the document.
	for _, id := range []cid.Cid{f.MetadataCid, f.Cid} {
		if err := d.unpinner.Unpin(ctx, id); err != nil {
			return errors.Wrapf(err, "unpin %s", id)
		}
	}

	return d.store.Delete(d.prefix + key)
}

func (d *drive) Close(ctx context.Context) error {
	return d.store.Close()
}

func decodeFile(data []byte) (File, error) {
	var r record
	if err := (codec.Gob{}).Unmarshal(data, &r); err != nil {
		return File{}, err
	}
	return File{
		Key:         r.Key,
		DocName:     r.DocName,
		Owner:       r.Owner,
		Wallet:      r.Wallet,
		Cid:         parseCid(r.Cid),
		URL:         r.URL,
		MetadataCid: parseCid(r.MetadataCid),
		MetadataURL: r.MetadataURL,
		Size:        r.Size,
		Timestamp:   r.Timestamp,
	}, nil
}

func mustEncodeGob(v interface{}) []byte {
	encoder := codec.Gob{}
	data, _ := encoder.Marshal(v)
	return data
}

func cidString(c cid.Cid) string {
	if !c.Defined() {
		return ""
	}
	return c.String()
}

func parseCid(s string) cid.Cid {
	if len(s) == 0 {
		return cid.Undef
	}
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef
	}
	return c
}
