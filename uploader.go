package doclocker

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/dustin/go-humanize"
	"github.com/ipfs/go-cid"
	"github.com/meowdada/doclocker/options"
	"github.com/meowdada/doclocker/pkg/ipfs"
	"github.com/meowdada/doclocker/pkg/object"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var tokenIDPattern = regexp2.MustCompile(`^[A-Za-z0-9_-]{1,128}$`, regexp2.None)

// DocumentHandle refers to an uploaded file spooled to local storage.
type DocumentHandle struct {
	TempPath string
	MimeType string
	Filename string
}

// UploadRequest is a document upload together with its NFT metadata.
type UploadRequest struct {
	OwnerName   string
	DocName     string
	Validated   string
	Description string
	TokenID     string

	// Wallet is the address of the logged in uploader, if any.
	Wallet string

	Document *DocumentHandle
}

// UploadResult is returned to the client after both blob sets are stored.
type UploadResult struct {
	OwnerName   string `json:"ownerName"`
	DocName     string `json:"docName"`
	Validated   bool   `json:"validated"`
	Description string `json:"description"`
	MetadataURL string `json:"ipfsUrl_NFT_Metadata"`

	DocumentURL string  `json:"-"`
	DocumentCid cid.Cid `json:"-"`
	MetadataCid cid.Cid `json:"-"`
	Size        int64   `json:"-"`
}

// Validate checks that every field is present. It returns the parsed
// validated flag.
func (r UploadRequest) Validate() (bool, error) {
	if r.Document == nil || len(r.Document.TempPath) == 0 {
		return false, invalidInput("document is missing")
	}

	fields := []struct {
		name  string
		value string
	}{
		{"ownerName", r.OwnerName},
		{"docName", r.DocName},
		{"validated", r.Validated},
		{"description", r.Description},
		{"tokenId", r.TokenID},
	}
	for _, f := range fields {
		if len(strings.TrimSpace(f.value)) == 0 {
			return false, invalidInput(f.name + " is missing")
		}
	}

	validated, err := strconv.ParseBool(strings.TrimSpace(r.Validated))
	if err != nil {
		return false, invalidInput("validated is not a boolean")
	}

	if ok, _ := tokenIDPattern.MatchString(r.TokenID); !ok {
		return false, invalidInput("tokenId has unsupported characters")
	}

	return validated, nil
}

// Uploader drives one upload: it stores the document, then the metadata
// record embedding the document URL.
type Uploader struct {
	storer Storer
	index  Index

	gateway      string
	storeTimeout time.Duration
	unpinOrphans bool
	logger       *zap.Logger
	now          func() time.Time
}

// NewUploader creates an Uploader. The index may be nil.
func NewUploader(storer Storer, index Index, opts ...*options.UploadOptions) *Uploader {
	opt := options.MergeUploadOptions(opts...)
	return &Uploader{
		storer:       storer,
		index:        index,
		gateway:      *opt.Gateway,
		storeTimeout: *opt.StoreTimeout,
		unpinOrphans: *opt.UnpinOrphans,
		logger:       opt.Logger,
		now:          opt.Clock,
	}
}

// Upload runs the upload flow once. The temporary file of the request is
// removed before returning, whatever the outcome.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if req.Document != nil && len(req.Document.TempPath) != 0 {
		defer u.removeTemp(req.Document.TempPath)
	}

	validated, err := req.Validate()
	if err != nil {
		return UploadResult{}, err
	}

	name := StorageName(u.now(), req.Document.Filename)
	logger := u.logger.With(zap.String("token_id", req.TokenID), zap.String("document", name))
	logger.Info("uploading document to ipfs", zap.String("doc_name", req.DocName))

	raw, err := os.ReadFile(req.Document.TempPath)
	if err != nil {
		return UploadResult{}, &Error{Kind: KindLocalIO, Op: "read document", Err: err}
	}

	docCid, err := u.store(ctx, "store document", AssembleDocumentBlobs(raw, req.Document.MimeType, name))
	if err != nil {
		return UploadResult{}, err
	}
	docURL := ipfs.GatewayURL(u.gateway, docCid, name)
	logger.Info("document stored",
		zap.String("cid", docCid.String()),
		zap.String("size", humanize.IBytes(uint64(len(raw)))),
	)

	metaSet, err := AssembleMetadataBlobs(object.MetadataRecord{
		OwnerName:   req.OwnerName,
		DocName:     req.DocName,
		Validated:   validated,
		Description: req.Description,
		Document:    docURL,
	}, req.TokenID)
	if err != nil {
		u.releaseOrphan(ctx, logger, docCid)
		return UploadResult{}, err
	}

	metaCid, err := u.store(ctx, "store metadata", metaSet)
	if err != nil {
		u.releaseOrphan(ctx, logger, docCid)
		return UploadResult{}, err
	}
	metaURL := ipfs.GatewayURL(u.gateway, metaCid, MetadataName(req.TokenID))
	logger.Info("metadata stored", zap.String("cid", metaCid.String()), zap.String("url", metaURL))

	result := UploadResult{
		OwnerName:   req.OwnerName,
		DocName:     req.DocName,
		Validated:   validated,
		Description: req.Description,
		MetadataURL: metaURL,
		DocumentURL: docURL,
		DocumentCid: docCid,
		MetadataCid: metaCid,
		Size:        int64(len(raw)),
	}

	if u.index != nil {
		if err := u.index.Put(ctx, object.Document{
			TokenID:     req.TokenID,
			OwnerName:   req.OwnerName,
			DocName:     req.DocName,
			Wallet:      req.Wallet,
			DocumentCid: docCid,
			DocumentURL: docURL,
			MetadataCid: metaCid,
			MetadataURL: metaURL,
			Size:        result.Size,
			Timestamp:   u.now(),
		}); err != nil {
			logger.Warn("failed to index upload", zap.Error(err))
		}
	}

	return result, nil
}

func (u *Uploader) store(ctx context.Context, op string, bs object.BlobSet) (cid.Cid, error) {
	if u.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.storeTimeout)
		defer cancel()
	}

	id, err := u.storer.Store(ctx, bs)
	if err == nil {
		return id, nil
	}
	if KindOf(err) != KindUnknown {
		return cid.Undef, errors.Wrap(err, op)
	}

	kind := KindStorageUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return cid.Undef, &Error{Kind: kind, Op: op, Err: err}
}

// releaseOrphan unpins a stored document whose metadata could not be
// stored. Failure leaves the document pinned and is only logged.
func (u *Uploader) releaseOrphan(ctx context.Context, logger *zap.Logger, id cid.Cid) {
	if !u.unpinOrphans {
		logger.Warn("document stored without metadata", zap.String("cid", id.String()))
		return
	}

	ctx = context.WithoutCancel(ctx)
	if u.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.storeTimeout)
		defer cancel()
	}

	if err := u.storer.Unpin(ctx, id); err != nil {
		logger.Warn("failed to unpin orphaned document", zap.String("cid", id.String()), zap.Error(err))
		return
	}
	logger.Warn("unpinned orphaned document", zap.String("cid", id.String()))
}

func (u *Uploader) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		u.logger.Warn("failed to remove temporary file",
			zap.String("path", path),
			zap.Error(&Error{Kind: KindLocalIO, Op: "remove document", Err: err}),
		)
	}
}
