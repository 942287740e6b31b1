package doclocker

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/meowdada/doclocker/pkg/codec"
	"github.com/meowdada/doclocker/pkg/object"
)

const (
	placeholderContent  = "contents-of-file-1"
	metadataPlaceholder = "plain-utf8.txt"
	defaultMimeType     = "application/octet-stream"
)

var recordCodec codec.Instance = codec.JSON{}

// AssembleDocumentBlobs pairs the raw document, named targetName, with a
// placeholder blob labelled by its declared MIME type.
func AssembleDocumentBlobs(raw []byte, mimeType, targetName string) object.BlobSet {
	return object.BlobSet{
		{Name: placeholderName(mimeType), Data: []byte(placeholderContent)},
		{Name: targetName, Data: raw},
	}
}

// AssembleMetadataBlobs serializes record as UTF-8 JSON named
// <tokenID>.json and pairs it with a placeholder blob.
func AssembleMetadataBlobs(record object.MetadataRecord, tokenID string) (object.BlobSet, error) {
	data, err := recordCodec.Marshal(record)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRecord, Op: "assemble metadata", Err: err}
	}
	return object.BlobSet{
		{Name: metadataPlaceholder, Data: []byte(placeholderContent)},
		{Name: MetadataName(tokenID), Data: data},
	}, nil
}

// MetadataName returns the blob name of the metadata record of a token.
func MetadataName(tokenID string) string {
	return tokenID + ".json"
}

// StorageName derives the stored name of an upload from the upload time
// and the original file name with whitespace removed, e.g.
// 1700000000000_MyFile.pdf.
func StorageName(now time.Time, original string) string {
	base := filepath.Base(filepath.ToSlash(original))
	if i := strings.LastIndex(base, "\\"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.Join(strings.Fields(base), "")
	if base == "" || base == "." || base == "/" {
		base = "document"
	}
	return fmt.Sprintf("%d_%s", now.UnixMilli(), base)
}

// Unixfs entry names cannot contain a path separator.
func placeholderName(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	return strings.ReplaceAll(mimeType, "/", "_")
}
