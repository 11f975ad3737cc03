package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/30-dung/salon-web/internal/domain"
)

// FeedbackInput is the contact form.
type FeedbackInput struct {
	Name    string `json:"name" validate:"required,notblank,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

// FeedbackService forwards contact form messages to the salon.
type FeedbackService struct {
	api    FeedbackAPI
	logger *slog.Logger
}

func NewFeedbackService(api FeedbackAPI, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{api: api, logger: logger}
}

func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput) error {
	fb := domain.Feedback{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.ReplaceAll(in.Phone, " ", ""),
		Content: strings.TrimSpace(in.Content),
	}
	if err := s.api.SubmitFeedback(ctx, fb); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "feedback submitted", slog.String("email", fb.Email))
	return nil
}
