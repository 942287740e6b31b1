// Package auth issues and checks wallet sessions.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/meowdada/doclocker"
	"github.com/pkg/errors"
)

const (
	// TokenHeader carries the session token on responses.
	TokenHeader = "x-jwt-token"

	// CookieName carries the session token for page navigation.
	CookieName = "jwt"

	claimsKey = "claims"
)

var (
	// ErrNoToken raised when the request carries no session token.
	ErrNoToken = errors.New("no session token")

	// ErrInvalidToken raised when the token is malformed, expired or revoked.
	ErrInvalidToken = errors.New("invalid session token")
)

// UserClaims are carried in the session token.
type UserClaims struct {
	jwt.RegisteredClaims
	Wallet    string `json:"wallet"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Ssid      string `json:"ssid"`
	UserAgent string `json:"ua"`
}

// Handler manages session tokens of wallet users.
type Handler interface {
	SetLoginToken(ctx *gin.Context, u doclocker.User) error
	ExtractClaims(ctx *gin.Context) (*UserClaims, error)
	ClearToken(ctx *gin.Context) error
}

var _ Handler = &LocalJWTHandler{}

// LocalJWTHandler signs tokens with a static key and keeps live session
// ids in process memory, so a logout revokes the token before it expires.
type LocalJWTHandler struct {
	key           []byte
	signingMethod jwt.SigningMethod
	tokenTTL      time.Duration
	sessions      *ttlcache.Cache[string, string]
}

// NewLocalJWTHandler creates a LocalJWTHandler. An empty secret gets a
// random per-process key, which invalidates all sessions on restart.
func NewLocalJWTHandler(secret string, tokenTTL, sessionTTL time.Duration) *LocalJWTHandler {
	key := []byte(secret)
	if len(key) == 0 {
		key = []byte(uuid.NewString() + uuid.NewString())
	}
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}

	sessions := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](sessionTTL),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go sessions.Start()

	return &LocalJWTHandler{
		key:           key,
		signingMethod: jwt.SigningMethodHS512,
		tokenTTL:      tokenTTL,
		sessions:      sessions,
	}
}

// Stop stops the session expiry loop.
func (h *LocalJWTHandler) Stop() {
	h.sessions.Stop()
}

func (h *LocalJWTHandler) SetLoginToken(ctx *gin.Context, u doclocker.User) error {
	ssid := uuid.New().String()
	h.sessions.Set(sessionKey(ssid), u.Wallet, ttlcache.DefaultTTL)

	uc := UserClaims{
		Wallet:    u.Wallet,
		Name:      u.Name,
		Role:      u.Role,
		Ssid:      ssid,
		UserAgent: ctx.GetHeader("User-Agent"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Wallet,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.tokenTTL)),
		},
	}
	tokenStr, err := jwt.NewWithClaims(h.signingMethod, uc).SignedString(h.key)
	if err != nil {
		return errors.Wrap(err, "sign session token")
	}

	ctx.Header(TokenHeader, tokenStr)
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(CookieName, tokenStr, int(h.tokenTTL.Seconds()), "/", "", false, true)
	return nil
}

func (h *LocalJWTHandler) ExtractClaims(ctx *gin.Context) (*UserClaims, error) {
	tokenStr := extractToken(ctx)
	if len(tokenStr) == 0 {
		return nil, ErrNoToken
	}

	uc := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, uc, func(t *jwt.Token) (interface{}, error) {
		return h.key, nil
	}, jwt.WithValidMethods([]string{h.signingMethod.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if h.sessions.Get(sessionKey(uc.Ssid)) == nil {
		return nil, ErrInvalidToken
	}
	return uc, nil
}

func (h *LocalJWTHandler) ClearToken(ctx *gin.Context) error {
	ctx.Header(TokenHeader, "")
	ctx.SetCookie(CookieName, "", -1, "/", "", false, true)

	uc, err := h.ExtractClaims(ctx)
	if err != nil {
		return nil
	}
	h.sessions.Delete(sessionKey(uc.Ssid))
	return nil
}

func extractToken(ctx *gin.Context) string {
	if authCode := ctx.GetHeader("Authorization"); authCode != "" {
		segs := strings.Split(authCode, " ")
		if len(segs) == 2 && strings.EqualFold(segs[0], "Bearer") {
			return segs[1]
		}
		return ""
	}
	cookie, err := ctx.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie
}

func sessionKey(ssid string) string {
	return "users:ssid:" + ssid
}
