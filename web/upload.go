package web

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/auth"
	"github.com/meowdada/doclocker/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	msgInvalidInput  = "invalid input"
	msgUploadFailure = "Problem while uploading document to ipfs"
	msgTooLarge      = "document too large"
)

// Uploader runs the document upload flow.
type Uploader interface {
	Upload(ctx context.Context, req doclocker.UploadRequest) (doclocker.UploadResult, error)
}

// UploadHandler serves the upload form and the upload endpoint.
type UploadHandler struct {
	uploader Uploader
	observer *metrics.Observer
	logger   *zap.Logger

	tempDir   string
	maxBytes  int64
	rateLimit float64
	burst     int
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(uploader Uploader, observer *metrics.Observer, logger *zap.Logger, cfg UploadConfig) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &UploadHandler{
		uploader:  uploader,
		observer:  observer,
		logger:    logger,
		tempDir:   cfg.TempDir,
		maxBytes:  cfg.MaxBytes,
		rateLimit: cfg.RateLimit,
		burst:     cfg.Burst,
	}
}

func (h *UploadHandler) RegisterRoutes(server *gin.Engine) {
	server.GET("/upload", h.UploadPage)
	server.POST("/upload", rateLimit(h.rateLimit, h.burst), limitBody(h.maxBytes), h.Upload)
}

func (h *UploadHandler) UploadPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "upload.tmpl", gin.H{"Title": "Upload"})
}

func (h *UploadHandler) Upload(ctx *gin.Context) {
	start := time.Now()

	req := doclocker.UploadRequest{
		OwnerName:   ctx.PostForm("ownerName"),
		DocName:     ctx.PostForm("docName"),
		Validated:   ctx.PostForm("validated"),
		Description: ctx.PostForm("description"),
		TokenID:     ctx.PostForm("tokenId"),
	}
	if uc, ok := auth.Claims(ctx); ok {
		req.Wallet = uc.Wallet
	}

	if fh, err := ctx.FormFile("document"); err == nil {
		path, err := h.spool(fh)
		if err != nil {
			h.fail(ctx, start, &doclocker.Error{Kind: doclocker.KindLocalIO, Op: "spool document", Err: err})
			return
		}
		req.Document = &doclocker.DocumentHandle{
			TempPath: path,
			MimeType: fh.Header.Get("Content-Type"),
			Filename: fh.Filename,
		}
	} else if tooLarge(err) {
		h.logger.Info("rejected upload", zap.Int64("max_bytes", h.maxBytes), zap.Error(err))
		h.observer.RecordUpload(metrics.OutcomeTooLarge, doclocker.KindTooLarge.String(), time.Since(start), 0)
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": msgTooLarge})
		return
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.fail(ctx, start, &doclocker.Error{Kind: doclocker.KindLocalIO, Op: "parse form", Err: err})
		return
	}

	res, err := h.uploader.Upload(ctx.Request.Context(), req)
	switch {
	case err == nil:
		h.observer.RecordUpload(metrics.OutcomeSuccess, "", time.Since(start), res.Size)
		ctx.JSON(http.StatusOK, res)
	case doclocker.KindOf(err) == doclocker.KindInvalidInput:
		h.logger.Info("rejected upload", zap.Error(err))
		h.observer.RecordUpload(metrics.OutcomeInvalid, "", time.Since(start), 0)
		ctx.JSON(http.StatusOK, gin.H{"message": msgInvalidInput})
	default:
		h.fail(ctx, start, err)
	}
}

func (h *UploadHandler) fail(ctx *gin.Context, start time.Time, err error) {
	kind := doclocker.KindOf(err)
	h.logger.Error(msgUploadFailure, zap.String("kind", kind.String()), zap.Error(err))
	h.observer.RecordUpload(metrics.OutcomeFailure, kind.String(), time.Since(start), 0)
	_ = ctx.Error(err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"message": msgUploadFailure})
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// spool copies the uploaded part to a temporary file owned by the
// upload flow.
func (h *UploadHandler) spool(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.tempDir, "doclocker-upload-*")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
