package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/30-dung/salon-web/internal/review"
	"github.com/30-dung/salon-web/internal/service"
	"github.com/30-dung/salon-web/pkg/httputil"
	"github.com/30-dung/salon-web/pkg/validator"
)

// ReviewHandler serves store reviews and accepts reviews and replies.
type ReviewHandler struct {
	errorWriter
	reviews *service.ReviewService
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, sessions *service.SessionService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		errorWriter: errorWriter{sessions: sessions, logger: logger},
		reviews:     reviews,
	}
}

// Summary handles GET /api/v1/stores/{id}/reviews/summary
func (h *ReviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	storeID, ok := httputil.ParseID(w, "store id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	summary, err := h.reviews.Summary(r.Context(), storeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, summary)
}

// List handles GET /api/v1/stores/{id}/reviews?page=&employeeId=&storeServiceId=&rating=
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, ok := httputil.ParseID(w, "store id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	q, err := review.ParseQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.reviews.List(r.Context(), storeID, q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, page)
}

// Create handles POST /api/v1/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req service.CreateReviewInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.reviews.Create(r.Context(), sess, req); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"redirectTo": "/history"},
	})
}

// Reply handles POST /api/v1/reviews/{id}/replies
func (h *ReviewHandler) Reply(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	reviewID, ok := httputil.ParseID(w, "review id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.ReplyInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.reviews.Reply(r.Context(), sess, reviewID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: view})
}
