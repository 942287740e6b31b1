package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginPath is where pages redirect when a session is required.
const LoginPath = "/auth/login"

// CheckLogin attaches the claims of a valid session to the context. It
// never rejects a request.
func CheckLogin(h Handler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if uc, err := h.ExtractClaims(ctx); err == nil {
			ctx.Set(claimsKey, uc)
		}
		ctx.Next()
	}
}

// RequireRole rejects requests without a session holding one of roles.
// Page requests are redirected to the login page, API requests get 401.
func RequireRole(h Handler, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(ctx *gin.Context) {
		uc, err := h.ExtractClaims(ctx)
		if err == nil {
			if _, ok := allowed[uc.Role]; ok || len(allowed) == 0 {
				ctx.Set(claimsKey, uc)
				ctx.Next()
				return
			}
		}

		if wantsHTML(ctx) {
			ctx.Redirect(http.StatusFound, LoginPath)
			ctx.Abort()
			return
		}
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
	}
}

// Claims returns the session claims attached by CheckLogin or RequireRole.
func Claims(ctx *gin.Context) (*UserClaims, bool) {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil, false
	}
	uc, ok := v.(*UserClaims)
	return uc, ok
}

func wantsHTML(ctx *gin.Context) bool {
	return ctx.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEHTML
}
