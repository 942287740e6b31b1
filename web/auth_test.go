package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonce(t *testing.T) {
	env := newTestEnv(t)
	alice := newWallet(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/auth/nonce?wallet_id=nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/auth/nonce?wallet_id="+alice.address, nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, alice.address, body["wallet_id"])
	assert.Contains(t, body["message"], alice.address)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	alice := newWallet(t)

	// Unknown wallet with a valid proof must register first.
	w := env.login(t, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "need to register", decodeBody(t, w)["error"])

	token := env.register(t, alice, alice.address, "Alice", doclocker.RoleIndividual)
	assert.NotEmpty(t, token)

	w = env.tryRegister(t, alice, alice.address, "Alice", doclocker.RoleIndividual)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.login(t, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, doclocker.RoleIndividual, body["role"])
	assert.Equal(t, "/dashboard-in", body["redirect"])
	assert.NotEmpty(t, w.Header().Get(auth.TokenHeader))
}

func TestLoginRequiresWalletProof(t *testing.T) {
	env := newTestEnv(t)
	alice := newWallet(t)
	mallory := newWallet(t)
	env.register(t, alice, alice.address, "Alice", doclocker.RoleIndividual)

	testcases := []struct {
		description string
		signature   func(t *testing.T) string
	}{
		{"no signature", func(t *testing.T) string {
			env.challenge(t, alice, alice.address)
			return ""
		}},
		{"no challenge issued", func(t *testing.T) string {
			return alice.sign(t, "Sign in to doclocker")
		}},
		{"signed by another wallet", func(t *testing.T) string {
			return env.challenge(t, mallory, alice.address)
		}},
	}

	for _, tc := range testcases {
		t.Run(tc.description, func(t *testing.T) {
			w := env.do(jsonRequest(http.MethodPost, "/auth/login", gin.H{
				"wallet_id": alice.address,
				"signature": tc.signature(t),
			}))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "wallet signature required", decodeBody(t, w)["error"])
			assert.Empty(t, w.Header().Get(auth.TokenHeader))
		})
	}
}

func TestLoginSignatureIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	alice := newWallet(t)
	env.register(t, alice, alice.address, "Alice", doclocker.RoleIndividual)

	sig := env.challenge(t, alice, alice.address)
	req := gin.H{"wallet_id": alice.address, "signature": sig}

	w := env.do(jsonRequest(http.MethodPost, "/auth/login", req))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(jsonRequest(http.MethodPost, "/auth/login", req))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRequiresWalletProof(t *testing.T) {
	env := newTestEnv(t)
	alice := newWallet(t)

	w := env.do(jsonRequest(http.MethodPost, "/auth/register", gin.H{
		"name":      "Alice",
		"role":      doclocker.RoleIndividual,
		"wallet_id": alice.address,
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, err := env.users.Lookup(context.Background(), alice.address)
	assert.ErrorIs(t, err, doclocker.ErrNoSuchUser)
}

func TestGovernmentRoleRequiresAllowlist(t *testing.T) {
	registry := newWallet(t)
	impostor := newWallet(t)
	env := newTestEnv(t, withGovernments(strings.ToLower(registry.address)))

	w := env.tryRegister(t, impostor, impostor.address, "Registry", doclocker.RoleGovernment)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get(auth.TokenHeader))
	_, err := env.users.Lookup(context.Background(), impostor.address)
	assert.ErrorIs(t, err, doclocker.ErrNoSuchUser)

	w = env.tryRegister(t, registry, registry.address, "Registry", doclocker.RoleGovernment)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/dashboard-gov", decodeBody(t, w)["redirect"])
}

func TestGovernmentLoginAfterAllowlistChange(t *testing.T) {
	env := newTestEnv(t)
	registry := newWallet(t)

	_, err := env.users.Register(context.Background(), doclocker.User{
		Wallet: registry.address,
		Name:   "Registry",
		Role:   doclocker.RoleGovernment,
	})
	require.NoError(t, err)

	w := env.login(t, registry)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get(auth.TokenHeader))
}

func TestRegisterInvalid(t *testing.T) {
	env := newTestEnv(t)
	alice := newWallet(t)

	w := env.tryRegister(t, alice, alice.address, "Alice", "admin")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w = env.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
