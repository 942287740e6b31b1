package doclocker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/meowdada/doclocker/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleDocumentBlobs(t *testing.T) {
	raw := []byte("%PDF-1.4 deed")
	bs := AssembleDocumentBlobs(raw, "application/pdf", "1700000000000_MyFile.pdf")

	require.Len(t, bs, 2)
	assert.Equal(t, []string{"application_pdf", "1700000000000_MyFile.pdf"}, bs.Names())
	assert.Equal(t, placeholderContent, string(bs[0].Data))
	assert.Equal(t, raw, bs[1].Data)
	assert.Equal(t, int64(len(raw)+len(placeholderContent)), bs.Size())

	bs = AssembleDocumentBlobs(raw, "", "x")
	assert.Equal(t, "application_octet-stream", bs[0].Name)
}

func TestAssembleMetadataBlobs(t *testing.T) {
	record := object.MetadataRecord{
		OwnerName:   "Alice",
		DocName:     "Deed",
		Validated:   true,
		Description: "land deed",
		Document:    "https://bafy.ipfs.w3s.link/1700000000000_MyFile.pdf",
	}

	bs, err := AssembleMetadataBlobs(record, "42")
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, []string{"plain-utf8.txt", "42.json"}, bs.Names())

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(bs[1].Data, &got))
	assert.Equal(t, map[string]interface{}{
		"ownerName":   "Alice",
		"docName":     "Deed",
		"validated":   true,
		"description": "land deed",
		"document":    "https://bafy.ipfs.w3s.link/1700000000000_MyFile.pdf",
	}, got)
}

func TestStorageName(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	testcases := []struct {
		original string
		expect   string
	}{
		{"My File.pdf", "1700000000000_MyFile.pdf"},
		{"deed.pdf", "1700000000000_deed.pdf"},
		{" a\tb  c.txt ", "1700000000000_abc.txt"},
		{"../../etc/passwd", "1700000000000_passwd"},
		{`C:\Users\alice\My Deed.pdf`, "1700000000000_MyDeed.pdf"},
		{"", "1700000000000_document"},
	}

	for _, tc := range testcases {
		got := StorageName(now, tc.original)
		assert.Equal(t, tc.expect, got, tc.original)
		assert.NotContains(t, got, " ")
	}
}
