package ipfsutil

import (
	"net/http"
	"strings"
	"time"

	ipfsClient "github.com/ipfs/go-ipfs-http-client"
	coreiface "github.com/ipfs/interface-go-ipfs-core"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/pkg/errors"
)

const (
	// DefaultAPIAddress is the default address of a ipfs http api endpoint.
	DefaultAPIAddress = "/ip4/127.0.0.1/tcp/5001"
)

// NewAPI creates an ipfs api instance backed by a http client.
//
// The addr could be either a multiaddr such as /ip4/127.0.0.1/tcp/5001 or
// a http(s) URL of a hosted pinning endpoint. A non-empty token is sent as
// a bearer credential with every request. A zero timeout leaves requests
// bounded only by their context.
func NewAPI(addr, token string, timeout time.Duration) (coreiface.CoreAPI, error) {
	if len(addr) == 0 {
		addr = DefaultAPIAddress
	}

	clnt := NewHTTPClient(token, timeout)

	if strings.HasPrefix(addr, "/") {
		maddr, err := ma.NewMultiaddr(addr)
		if err != nil {
			return nil, errors.Wrapf(err, "parse api address %q", addr)
		}
		return ipfsClient.NewApiWithClient(maddr, clnt)
	}

	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		return nil, errors.Errorf("unsupported api address %q", addr)
	}
	return ipfsClient.NewURLApiWithClient(strings.TrimSuffix(addr, "/"), clnt)
}

// NewHTTPClient returns a http client that authenticates every request
// with the given bearer token.
func NewHTTPClient(token string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &bearerTransport{
			token: token,
			base:  http.DefaultTransport,
		},
	}
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.token) == 0 || req.Header.Get("Authorization") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r)
}
