package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func cachedCatalog() http.Handler {
	r := chi.NewRouter()
	r.Use(CacheControl(300))
	r.Get("/stores/cities", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`["Ha Noi"]`))
	})
	r.Get("/stores/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Head("/stores/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/stores/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{"implicit ok", http.MethodGet, "/stores/cities", "private, max-age=300"},
		{"explicit ok", http.MethodGet, "/stores/12", "private, max-age=300"},
		{"head", http.MethodHead, "/stores/12", "private, max-age=300"},
		{"not found", http.MethodGet, "/stores/404", "no-store"},
		{"writes untouched", http.MethodPost, "/stores/12", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			cachedCatalog().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}
