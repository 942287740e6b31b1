package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/auth"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// WalletProver proves control of a wallet with a signed challenge.
type WalletProver interface {
	Challenge(wallet string) string
	Verify(wallet, signature string) error
}

// AuthHandler glues the browser wallet flow to server side sessions. The
// browser has already written to or read from the user contract when
// these endpoints are called. Every session requires a signature of a
// fresh challenge, and the government role is limited to allowlisted
// wallets.
type AuthHandler struct {
	users       doclocker.Users
	jwtHdl      auth.Handler
	prover      WalletProver
	governments map[string]struct{}
	logger      *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users doclocker.Users, jwtHdl auth.Handler, prover WalletProver, governments []string, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	allow := make(map[string]struct{}, len(governments))
	for _, w := range governments {
		allow[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &AuthHandler{
		users:       users,
		jwtHdl:      jwtHdl,
		prover:      prover,
		governments: allow,
		logger:      logger,
	}
}

func (h *AuthHandler) RegisterRoutes(server *gin.Engine) {
	g := server.Group("/auth")
	g.GET("/login", h.LoginPage)
	g.GET("/register", h.RegisterPage)
	g.GET("/nonce", h.Nonce)
	g.POST("/login", h.Login)
	g.POST("/register", h.Register)
	g.POST("/logout", h.Logout)
	g.GET("/logout", h.Logout)
}

type walletRequest struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Authority string `json:"authority"`
	WalletID  string `json:"wallet_id"`
	Signature string `json:"signature"`
}

type walletResponse struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	WalletID string `json:"wallet_id"`
	Redirect string `json:"redirect"`
}

func (h *AuthHandler) LoginPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.tmpl", gin.H{"Title": "Login"})
}

func (h *AuthHandler) RegisterPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "register.tmpl", gin.H{"Title": "Register"})
}

// Nonce issues the challenge the wallet signs before login or register.
func (h *AuthHandler) Nonce(ctx *gin.Context) {
	wallet := strings.TrimSpace(ctx.Query("wallet_id"))
	if !doclocker.ValidWallet(wallet) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"wallet_id": wallet, "message": h.prover.Challenge(wallet)})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req walletRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}
	if !h.proveWallet(ctx, req) {
		return
	}
	if req.Role == doclocker.RoleGovernment && !h.governmentWallet(req.WalletID) {
		h.logger.Warn("government registration refused", zap.String("wallet", req.WalletID))
		ctx.JSON(http.StatusForbidden, gin.H{"error": "wallet is not allowed the government role"})
		return
	}

	u, err := h.users.Register(ctx.Request.Context(), doclocker.User{
		Wallet:    req.WalletID,
		Name:      req.Name,
		Role:      req.Role,
		Authority: req.Authority,
	})
	switch {
	case err == nil:
	case errors.Is(err, doclocker.ErrDuplicateUser):
		ctx.JSON(http.StatusConflict, gin.H{"error": "wallet already registered"})
		return
	case errors.Is(err, doclocker.ErrInvalidUser):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		h.logger.Error("failed to register wallet", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "system error"})
		return
	}

	h.startSession(ctx, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req walletRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}
	if !h.proveWallet(ctx, req) {
		return
	}

	u, err := h.users.Lookup(ctx.Request.Context(), req.WalletID)
	switch {
	case err == nil:
	case errors.Is(err, doclocker.ErrNoSuchUser):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "need to register"})
		return
	default:
		h.logger.Error("failed to look up wallet", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "system error"})
		return
	}

	// The contract is the source of truth for the role.
	if len(req.Role) != 0 && req.Role != u.Role {
		h.logger.Warn("role mismatch on login",
			zap.String("wallet", u.Wallet),
			zap.String("claimed", req.Role),
			zap.String("registered", u.Role),
		)
	}

	// The allowlist may have shrunk since registration.
	if u.Role == doclocker.RoleGovernment && !h.governmentWallet(u.Wallet) {
		h.logger.Warn("government login refused", zap.String("wallet", u.Wallet))
		ctx.JSON(http.StatusForbidden, gin.H{"error": "wallet is not allowed the government role"})
		return
	}

	h.startSession(ctx, u)
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	if err := h.jwtHdl.ClearToken(ctx); err != nil {
		h.logger.Warn("failed to clear session", zap.Error(err))
	}
	if ctx.Request.Method == http.MethodGet {
		ctx.Redirect(http.StatusFound, "/")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) startSession(ctx *gin.Context, u doclocker.User) {
	if err := h.jwtHdl.SetLoginToken(ctx, u); err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "system error"})
		return
	}
	ctx.JSON(http.StatusOK, walletResponse{
		Name:     u.Name,
		Role:     u.Role,
		WalletID: u.Wallet,
		Redirect: dashboardPath(u.Role),
	})
}

// proveWallet answers 401 unless the request carries a signature of the
// pending challenge by the claimed wallet.
func (h *AuthHandler) proveWallet(ctx *gin.Context, req walletRequest) bool {
	err := h.prover.Verify(req.WalletID, req.Signature)
	if err == nil {
		return true
	}
	h.logger.Info("wallet proof rejected", zap.String("wallet", req.WalletID), zap.Error(err))
	ctx.JSON(http.StatusUnauthorized, gin.H{"error": "wallet signature required"})
	return false
}

func (h *AuthHandler) governmentWallet(wallet string) bool {
	_, ok := h.governments[strings.ToLower(strings.TrimSpace(wallet))]
	return ok
}

func dashboardPath(role string) string {
	if role == doclocker.RoleGovernment {
		return "/dashboard-gov"
	}
	return "/dashboard-in"
}
