package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/30-dung/salon-web/internal/service"
	"github.com/30-dung/salon-web/pkg/httputil"
)

// CatalogHandler serves stores, their services and their stylists.
type CatalogHandler struct {
	errorWriter
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, sessions *service.SessionService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		errorWriter: errorWriter{sessions: sessions, logger: logger},
		catalog:     catalog,
	}
}

// ListStores handles GET /api/v1/stores?city=
func (h *CatalogHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.StoresInCity(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, stores)
}

// Cities handles GET /api/v1/stores/cities
func (h *CatalogHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.catalog.Cities(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, cities)
}

// Districts handles GET /api/v1/stores/districts?city=
func (h *CatalogHandler) Districts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.catalog.Districts(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, districts)
}

// Locate handles GET /api/v1/stores/locate?city=&district=
func (h *CatalogHandler) Locate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stores, err := h.catalog.Locate(r.Context(), q.Get("city"), q.Get("district"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, stores)
}

// Search handles GET /api/v1/stores/search?q=&city=
//
// Searches are debounced per visitor session: a newer search answers the
// older one with 409 SUPERSEDED.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	stores, err := h.catalog.Search(r.Context(), sess.ID, q.Get("q"), q.Get("city"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, stores)
}

// GetStore handles GET /api/v1/stores/{id}
func (h *CatalogHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "store id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	store, err := h.catalog.Store(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, store)
}

// Services handles GET /api/v1/stores/{id}/services
func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "store id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	services, err := h.catalog.Services(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, services)
}

// Employees handles GET /api/v1/stores/{id}/employees
func (h *CatalogHandler) Employees(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "store id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	employees, err := h.catalog.Employees(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, employees)
}
