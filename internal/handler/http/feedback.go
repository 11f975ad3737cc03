package http

import (
	"log/slog"
	"net/http"

	"github.com/30-dung/salon-web/internal/service"
	"github.com/30-dung/salon-web/pkg/httputil"
	"github.com/30-dung/salon-web/pkg/validator"
)

// FeedbackHandler accepts the contact form.
type FeedbackHandler struct {
	errorWriter
	feedback *service.FeedbackService
}

func NewFeedbackHandler(feedback *service.FeedbackService, sessions *service.SessionService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		errorWriter: errorWriter{sessions: sessions, logger: logger},
		feedback:    feedback,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.FeedbackInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.feedback.Submit(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{
		Data: map[string]string{"status": "received"},
	})
}
