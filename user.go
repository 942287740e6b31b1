package doclocker

import (
	"context"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/meowdada/doclocker/pkg/codec"
	"github.com/meowdada/doclocker/pkg/kv"
	"github.com/pkg/errors"
)

const userPrefix = "user/"

// Roles of a registered wallet.
const (
	RoleIndividual = "individual"
	RoleGovernment = "government"
)

var (
	// ErrDuplicateUser raised when registering a wallet twice.
	ErrDuplicateUser = errors.New("wallet already registered")

	// ErrNoSuchUser raised when the wallet is not registered.
	ErrNoSuchUser = errors.New("need to register")

	// ErrInvalidUser raised when a registration misses required data.
	ErrInvalidUser = errors.New("invalid user")

	walletPattern = regexp2.MustCompile(`^0x[0-9a-fA-F]{40}$`, regexp2.None)
)

// User denotes a wallet registered through the browser wallet flow. The
// authoritative record lives in the on-chain user contract; this is the
// server side copy used for sessions.
type User struct {
	Wallet    string
	Name      string
	Role      string
	Authority string
	Created   time.Time
}

// Users keeps registered wallets.
type Users interface {
	Register(ctx context.Context, u User) (User, error)
	Lookup(ctx context.Context, wallet string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// NewUsers creates an instance of Users backed by the given store.
func NewUsers(store kv.Store) Users {
	return &users{
		store: store,
		codec: codec.Gob{},
		now:   time.Now,
	}
}

type users struct {
	store kv.Store
	codec codec.Instance
	now   func() time.Time
}

// ValidWallet reports whether s looks like an account address.
func ValidWallet(s string) bool {
	ok, _ := walletPattern.MatchString(s)
	return ok
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return role == RoleIndividual || role == RoleGovernment
}

func (us *users) Register(ctx context.Context, u User) (User, error) {
	u.Wallet = strings.TrimSpace(u.Wallet)
	u.Name = strings.TrimSpace(u.Name)
	if !ValidWallet(u.Wallet) {
		return User{}, errors.Wrapf(ErrInvalidUser, "wallet %q", u.Wallet)
	}
	if len(u.Name) == 0 {
		return User{}, errors.Wrap(ErrInvalidUser, "name is missing")
	}
	if !ValidRole(u.Role) {
		return User{}, errors.Wrapf(ErrInvalidUser, "role %q", u.Role)
	}

	u.Created = us.now()
	data, err := us.codec.Marshal(u)
	if err != nil {
		return User{}, err
	}

	err = us.store.SetIfAbsent(userKey(u.Wallet), data)
	if errors.Is(err, kv.ErrKeyExists) {
		return User{}, ErrDuplicateUser
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (us *users) Lookup(ctx context.Context, wallet string) (User, error) {
	data, err := us.store.Get(userKey(strings.TrimSpace(wallet)))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return User{}, ErrNoSuchUser
	}
	if err != nil {
		return User{}, err
	}

	var u User
	if err := us.codec.Unmarshal(data, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (us *users) List(ctx context.Context) ([]User, error) {
	var list []User
	err := us.store.Iter(userPrefix, func(key string, value []byte) error {
		var u User
		if err := us.codec.Unmarshal(value, &u); err != nil {
			return errors.Wrapf(err, "decode %s", key)
		}
		list = append(list, u)
		return nil
	})
	return list, err
}

// Addresses are case-insensitive.
func userKey(wallet string) string {
	return userPrefix + strings.ToLower(wallet)
}
