package ipfs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ipfs/go-cid"
)

// DefaultGatewayHost is the subdomain gateway used to build retrieval URLs.
const DefaultGatewayHost = "ipfs.w3s.link"

// GatewayURL returns the public retrieval URL of a file named name inside
// the directory addressed by c, in the form https://<cid>.<host>/<name>.
//
// Subdomain gateways only accept case-insensitive identifiers, so CIDv0
// values are upgraded to their base32 CIDv1 form.
func GatewayURL(host string, c cid.Cid, name string) string {
	if host == "" {
		host = DefaultGatewayHost
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "https://"), "/")
	return fmt.Sprintf("https://%s.%s/%s", ToV1(c).String(), host, url.PathEscape(name))
}

// ToV1 converts c to a version 1 identifier. Undefined and v1 values are
// returned unchanged.
func ToV1(c cid.Cid) cid.Cid {
	if !c.Defined() || c.Version() == 1 {
		return c
	}
	return cid.NewCidV1(c.Type(), c.Hash())
}
