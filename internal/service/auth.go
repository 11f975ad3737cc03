package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/salonapi"
)

// LoginInput holds the credentials posted to the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput holds the sign-up form.
type RegisterInput struct {
	FullName string `json:"fullName" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ForgotPasswordInput requests a reset email.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput sets a new password using the emailed token.
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required,notblank"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// AuthService signs customers in and out of their session.
type AuthService struct {
	api      AuthAPI
	sessions *SessionService
	logger   *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(api AuthAPI, sessions *SessionService, logger *slog.Logger) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// tokenClaims are the claims read from an access token. The upstream owns
// signature verification, so the token is only decoded here.
type tokenClaims struct {
	Expiry time.Time
	Role   string
}

func readClaims(token string) tokenClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenClaims{}
	}

	var out tokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Expiry = exp.Time.UTC()
	}
	switch role := claims["role"].(type) {
	case string:
		out.Role = role
	case []any:
		if len(role) > 0 {
			out.Role, _ = role[0].(string)
		}
	}
	return out
}

// Login exchanges credentials for a token and stores it with the user's
// profile in the session.
func (s *AuthService) Login(ctx context.Context, sess *domain.Session, in LoginInput) (*domain.User, error) {
	resp, err := s.api.Login(ctx, salonapi.LoginRequest{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
	if err != nil {
		return nil, err
	}

	claims := readClaims(resp.Token)
	role := resp.Role
	if role == "" {
		role = claims.Role
	}

	user, err := s.api.Profile(salonapi.WithToken(ctx, resp.Token))
	if err != nil {
		return nil, fmt.Errorf("load profile after login: %w", err)
	}

	sess.AccessToken = resp.Token
	sess.UserRole = role
	sess.TokenExpiry = claims.Expiry
	sess.User = user
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed in",
		slog.String("session_id", sess.ID),
		slog.Int64("user_id", user.ID),
	)
	return user, nil
}

// Logout forgets the session's credentials. The booking selection is kept.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if err := s.sessions.SignOut(ctx, sess); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user signed out", slog.String("session_id", sess.ID))
	return nil
}

// Profile refreshes the signed-in user from the upstream.
func (s *AuthService) Profile(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	user, err := s.api.Profile(salonapi.WithToken(ctx, sess.AccessToken))
	if err != nil {
		return nil, err
	}
	sess.User = user
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	return s.api.Register(ctx, salonapi.RegisterRequest{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.ReplaceAll(in.Phone, " ", ""),
		Password: in.Password,
	})
}

func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	return s.api.ForgotPassword(ctx, strings.TrimSpace(in.Email))
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	return s.api.ResetPassword(ctx, salonapi.ResetPasswordRequest{
		Token:       strings.TrimSpace(in.Token),
		NewPassword: in.NewPassword,
	})
}
