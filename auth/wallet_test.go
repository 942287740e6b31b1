package auth

import (
	"crypto/ecdsa"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// personalSign signs like a browser wallet, with a 27/28 recovery id.
func personalSign(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

func newTestVerifier(t *testing.T) *WalletVerifier {
	v := NewWalletVerifier(time.Minute)
	t.Cleanup(v.Stop)
	return v
}

func TestWalletVerifier(t *testing.T) {
	v := newTestVerifier(t)
	key, wallet := newKey(t)

	msg := v.Challenge(wallet)
	assert.Contains(t, msg, wallet)
	require.NoError(t, v.Verify(strings.ToLower(wallet), personalSign(t, key, msg)))

	// Challenges are single use.
	assert.ErrorIs(t, v.Verify(wallet, personalSign(t, key, msg)), ErrNoChallenge)
}

func TestWalletVerifierRejects(t *testing.T) {
	key, wallet := newKey(t)
	other, _ := newKey(t)

	testcases := []struct {
		description string
		sign        func(msg string) string
		err         error
	}{
		{"missing signature", func(string) string { return "" }, ErrBadSignature},
		{"not hex", func(string) string { return "signed" }, ErrBadSignature},
		{"short signature", func(string) string { return "0x1234" }, ErrBadSignature},
		{"signed by another wallet", func(msg string) string { return personalSign(t, other, msg) }, ErrBadSignature},
		{"signed another message", func(string) string { return personalSign(t, key, "hello") }, ErrBadSignature},
	}

	for _, tc := range testcases {
		t.Run(tc.description, func(t *testing.T) {
			v := newTestVerifier(t)
			msg := v.Challenge(wallet)
			assert.ErrorIs(t, v.Verify(wallet, tc.sign(msg)), tc.err)
		})
	}
}

func TestWalletVerifierWithoutChallenge(t *testing.T) {
	v := newTestVerifier(t)
	key, wallet := newKey(t)

	err := v.Verify(wallet, personalSign(t, key, "Sign in to doclocker"))
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestVerifySignatureRecoveryID(t *testing.T) {
	key, wallet := newKey(t)

	sig, err := crypto.Sign(accounts.TextHash([]byte("hello")), key)
	require.NoError(t, err)
	assert.NoError(t, VerifySignature(wallet, "hello", hexutil.Encode(sig)))
}
