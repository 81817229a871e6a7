package shared

import (
	"net/http"
)

const (
	HeaderCacheControl = "Cache-Control"
	HeaderContentType  = "Content-Type"
	HeaderETag         = "ETag"
	HeaderIfNoneMatch  = "If-None-Match"

	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// SetNoStore keeps browsers and proxies from caching per view responses.
func SetNoStore(w http.ResponseWriter) {
	w.Header().Set(HeaderCacheControl, "no-store")
}
