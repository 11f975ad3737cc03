package salonapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/30-dung/salon-web/internal/domain"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
	"github.com/30-dung/salon-web/pkg/httpclient"
)

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for an access token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token. Older backends name the field
// accessToken.
type LoginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}

func (r *LoginResponse) Normalize() error {
	if r.Token == "" {
		r.Token = r.AccessToken
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return errors.New("login response has no token")
	}
	return nil
}

// ResetPasswordRequest sets a new password using an emailed token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type profileResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func (p *profileResponse) Normalize() error {
	p.Email = strings.TrimSpace(p.Email)
	if p.Email == "" {
		return errors.New("profile has no email")
	}
	return nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.call(ctx, "Register", http.MethodPost, "auth/register", nil, req, nil)
}

// Login returns the token issued for the credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.call(ctx, "Login", http.MethodPost, "auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return decodeOne("Login", &resp)
}

// ForgotPassword asks the backend to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, "ForgotPassword", http.MethodPost, "auth/forgot-password", nil, map[string]string{"email": email}, nil)
}

// ResetPassword completes a password reset.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.call(ctx, "ResetPassword", http.MethodPost, "auth/reset-password", nil, req, nil)
}

// Profile returns the user the bearer token belongs to.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	if TokenFromContext(ctx) == "" {
		return nil, apperrors.Unauthorized("sign in to continue")
	}
	var p profileResponse
	if err := c.get(ctx, "Profile", "user/profile", nil, &p); err != nil {
		return nil, err
	}
	if err := p.Normalize(); err != nil {
		return nil, apperrors.Upstream(httpclient.GenericErrorMessage, fmt.Errorf("Profile: malformed payload: %w", err))
	}
	return &domain.User{ID: p.ID, Name: strings.TrimSpace(p.FullName), Email: p.Email, Phone: p.Phone}, nil
}
