package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/auth"
	"github.com/meowdada/doclocker/drive"
	"go.uber.org/zap"
)

// Lister lists indexed documents.
type Lister interface {
	List(ctx context.Context, prefix string) (drive.ListResult, error)
}

// PageHandler renders the server side pages and the document listing.
type PageHandler struct {
	lister Lister
	jwtHdl auth.Handler
	logger *zap.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(lister Lister, jwtHdl auth.Handler, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		lister: lister,
		jwtHdl: jwtHdl,
		logger: logger,
	}
}

func (h *PageHandler) RegisterRoutes(server *gin.Engine) {
	server.GET("/", h.Index)

	in := auth.RequireRole(h.jwtHdl, doclocker.RoleIndividual)
	gov := auth.RequireRole(h.jwtHdl, doclocker.RoleGovernment)
	anyRole := auth.RequireRole(h.jwtHdl, doclocker.RoleIndividual, doclocker.RoleGovernment)

	server.GET("/dashboard-in", in, h.IndividualDashboard)
	server.GET("/dashboard-gov", gov, h.GovernmentDashboard)
	server.GET("/dashboard-gn", gov, h.GovernmentDashboard)
	server.GET("/locker", anyRole, h.Locker)
	server.GET("/api/documents", anyRole, h.Documents)
}

func (h *PageHandler) Index(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.tmpl", gin.H{"Title": "Document Locker"})
}

func (h *PageHandler) IndividualDashboard(ctx *gin.Context) {
	uc, _ := auth.Claims(ctx)
	ctx.HTML(http.StatusOK, "individualDashboard.tmpl", gin.H{"Title": "Dashboard", "User": uc})
}

func (h *PageHandler) GovernmentDashboard(ctx *gin.Context) {
	uc, _ := auth.Claims(ctx)
	ctx.HTML(http.StatusOK, "governmentDashboard.tmpl", gin.H{"Title": "Government Dashboard", "User": uc})
}

func (h *PageHandler) Locker(ctx *gin.Context) {
	files, err := h.visibleFiles(ctx)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		ctx.String(http.StatusInternalServerError, "system error")
		return
	}
	ctx.HTML(http.StatusOK, "locker.tmpl", gin.H{"Title": "Locker", "Files": files})
}

func (h *PageHandler) Documents(ctx *gin.Context) {
	files, err := h.visibleFiles(ctx)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "system error"})
		return
	}
	if files == nil {
		files = []drive.File{}
	}
	ctx.JSON(http.StatusOK, gin.H{"documents": files})
}

// Government users see every document, individuals only their own.
func (h *PageHandler) visibleFiles(ctx *gin.Context) ([]drive.File, error) {
	lr, err := h.lister.List(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		return nil, err
	}

	uc, _ := auth.Claims(ctx)
	if uc != nil && uc.Role == doclocker.RoleGovernment {
		return lr.Files(), nil
	}

	var own []drive.File
	for _, f := range lr.Files() {
		if uc != nil && len(f.Wallet) != 0 && equalWallet(f.Wallet, uc.Wallet) {
			own = append(own, f)
		}
	}
	return own, nil
}
