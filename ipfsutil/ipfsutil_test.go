package ipfsutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientSendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	resp, err := NewHTTPClient("secret-token", time.Second).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer secret-token", got)

	resp, err = NewHTTPClient("", time.Second).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, got)
}

func TestNewAPI(t *testing.T) {
	api, err := NewAPI("", "", 0)
	require.NoError(t, err)
	assert.NotNil(t, api)

	api, err = NewAPI("https://api.example.com/", "token", time.Second)
	require.NoError(t, err)
	assert.NotNil(t, api)

	_, err = NewAPI("/not/a/multiaddr", "", 0)
	assert.Error(t, err)

	_, err = NewAPI("ftp://example.com", "", 0)
	assert.Error(t, err)
}
