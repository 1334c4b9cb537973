package subgraph

import "net/http"

// reservedHeaders are never propagated to a subgraph: hop-by-hop headers plus
// those the fetcher sets itself.
var reservedHeaders = map[string]struct{}{
	"Connection":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Content-Length":      {},
	"Content-Type":        {},
	"Host":                {},
	"Accept":              {},
}

// PropagateHeaders copies src into dst, skipping the reserved set.
func PropagateHeaders(dst, src http.Header) {
	for key, values := range src {
		if _, reserved := reservedHeaders[http.CanonicalHeaderKey(key)]; reserved {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
