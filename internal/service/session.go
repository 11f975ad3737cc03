package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/repository"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

// SessionService loads and stores the per-browser session document.
type SessionService struct {
	repo   repository.SessionRepository
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewSessionService creates a session service. ttl is the idle lifetime of a
// session without credentials.
func NewSessionService(repo repository.SessionRepository, ttl time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Load returns the session with the given id, or a fresh one when the id is
// empty or unknown. Expired credentials are dropped.
func (s *SessionService) Load(ctx context.Context, id string) (*domain.Session, error) {
	now := s.now().UTC()
	if id == "" {
		return domain.NewSession(uuid.NewString(), now), nil
	}

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewSession(uuid.NewString(), now), nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sess.AccessToken != "" && !sess.Authenticated(now) {
		s.logger.InfoContext(ctx, "access token expired, clearing credentials",
			slog.String("session_id", sess.ID),
		)
		sess.ClearCredentials()
	}
	return sess, nil
}

// Save persists the session. A session holding a token lives no longer than
// the token.
func (s *SessionService) Save(ctx context.Context, sess *domain.Session) error {
	now := s.now().UTC()
	sess.UpdatedAt = now
	if err := s.repo.Save(ctx, sess, s.TTLFor(sess, now)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// TTLFor returns how long sess should be kept from now.
func (s *SessionService) TTLFor(sess *domain.Session, now time.Time) time.Duration {
	ttl := s.ttl
	if sess.AccessToken == "" || sess.TokenExpiry.IsZero() {
		return ttl
	}
	if left := sess.TokenExpiry.Sub(now); left > 0 && left < ttl {
		return left
	}
	return ttl
}

// SignOut clears credentials and persists the session.
func (s *SessionService) SignOut(ctx context.Context, sess *domain.Session) error {
	sess.ClearCredentials()
	return s.Save(ctx, sess)
}

// Destroy removes the session.
func (s *SessionService) Destroy(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
