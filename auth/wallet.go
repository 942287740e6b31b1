package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
)

const defaultChallengeTTL = 5 * time.Minute

var (
	// ErrNoChallenge raised when a wallet proves ownership without a live
	// challenge.
	ErrNoChallenge = errors.New("no pending challenge")

	// ErrBadSignature raised when the signature does not recover to the
	// claimed wallet.
	ErrBadSignature = errors.New("signature does not match wallet")
)

// WalletVerifier hands out single use challenges and checks that they
// were signed by the wallet they were issued to. Signatures follow the
// personal_sign convention browser wallets use.
type WalletVerifier struct {
	challenges *ttlcache.Cache[string, string]
}

// NewWalletVerifier creates a WalletVerifier whose challenges expire
// after ttl.
func NewWalletVerifier(ttl time.Duration) *WalletVerifier {
	if ttl <= 0 {
		ttl = defaultChallengeTTL
	}
	challenges := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go challenges.Start()
	return &WalletVerifier{challenges: challenges}
}

// Stop stops the challenge expiry loop.
func (v *WalletVerifier) Stop() {
	v.challenges.Stop()
}

// Challenge returns the message the wallet has to sign. A new challenge
// replaces the previous one of the same wallet.
func (v *WalletVerifier) Challenge(wallet string) string {
	msg := fmt.Sprintf("Sign in to doclocker\nWallet: %s\nNonce: %s", wallet, uuid.NewString())
	v.challenges.Set(challengeKey(wallet), msg, ttlcache.DefaultTTL)
	return msg
}

// Verify consumes the pending challenge of wallet and checks signature
// against it. The challenge is gone afterwards, whatever the outcome.
func (v *WalletVerifier) Verify(wallet, signature string) error {
	item, ok := v.challenges.GetAndDelete(challengeKey(wallet))
	if !ok || item == nil || item.IsExpired() {
		return ErrNoChallenge
	}
	return VerifySignature(wallet, item.Value(), signature)
}

// VerifySignature checks that signature is a personal_sign signature of
// message made by wallet. Both 0/1 and 27/28 recovery ids are accepted.
func VerifySignature(wallet, message, signature string) error {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return ErrBadSignature
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return ErrBadSignature
	}
	if !strings.EqualFold(crypto.PubkeyToAddress(*pub).Hex(), wallet) {
		return ErrBadSignature
	}
	return nil
}

func challengeKey(wallet string) string {
	return "wallets:challenge:" + strings.ToLower(strings.TrimSpace(wallet))
}
