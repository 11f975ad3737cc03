package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/30-dung/salon-web/internal/service"
	"github.com/30-dung/salon-web/pkg/httputil"
	"github.com/30-dung/salon-web/pkg/validator"
)

// HistoryHandler lists and cancels the signed-in user's bookings.
type HistoryHandler struct {
	errorWriter
	history *service.HistoryService
}

// NewHistoryHandler creates a new history HTTP handler.
func NewHistoryHandler(history *service.HistoryService, sessions *service.SessionService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		errorWriter: errorWriter{sessions: sessions, logger: logger},
		history:     history,
	}
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.history.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, rows)
}

// Cancel handles POST /api/v1/history/{id}/cancel
//
// The confirmation comes from a {"confirm": true} body or ?confirm=true.
func (h *HistoryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	id, ok := httputil.ParseID(w, "appointment id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.CancelInput
	if r.Body != nil && r.Body != http.NoBody {
		if err := validator.DecodeAndValidate(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if confirm, err := strconv.ParseBool(r.URL.Query().Get("confirm")); err == nil && confirm {
		req.Confirm = true
	}

	rows, err := h.history.Cancel(r.Context(), sess, id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, rows)
}
