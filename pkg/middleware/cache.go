package middleware

import (
	"net/http"
	"strconv"
)

// CacheControl lets browsers keep successful catalog reads for maxAge
// seconds. Responses are private because the session middleware may attach
// a cookie; error responses are never stored.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := "private, max-age=" + strconv.Itoa(maxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(&cacheWriter{ResponseWriter: w}, r)
		})
	}
}

type cacheWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (c *cacheWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.wroteHeader = true
		if status < 200 || status >= 300 {
			c.Header().Set("Cache-Control", "no-store")
		}
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *cacheWriter) Write(b []byte) (int, error) {
	c.wroteHeader = true
	return c.ResponseWriter.Write(b)
}

func (c *cacheWriter) Unwrap() http.ResponseWriter {
	return c.ResponseWriter
}
