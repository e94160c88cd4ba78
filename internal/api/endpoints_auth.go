package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func requireEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email is required")
	}
	return nil
}

func (c *Client) Register(ctx context.Context, p model.RegisterPayload) (*model.RegisterResponse, error) {
	if err := requireEmail(p.Email); err != nil {
		return nil, err
	}
	if p.Password == "" {
		return nil, invalid("password is required")
	}
	var out model.RegisterResponse
	if err := c.mutate(ctx, http.MethodPost, "/auth/register", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, p model.VerifyEmailPayload) (*model.MessageResponse, error) {
	if err := requireEmail(p.Email); err != nil {
		return nil, err
	}
	if p.OTP == "" {
		return nil, invalid("otp is required")
	}
	var out model.MessageResponse
	if err := c.mutate(ctx, http.MethodPost, "/auth/verify-email", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) (*model.MessageResponse, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	var out model.MessageResponse
	if err := c.mutate(ctx, http.MethodPost, "/auth/resend-otp", model.EmailPayload{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login stores the returned credentials. Cached reads belonged to whoever was
// signed in before, so the cache is flushed.
func (c *Client) Login(ctx context.Context, p model.LoginPayload) (*model.AuthLoginResponse, error) {
	if err := requireEmail(p.Email); err != nil {
		return nil, err
	}
	var out model.AuthLoginResponse
	if err := c.mutate(ctx, http.MethodPost, pathLogin, p, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, errors.New("login response without tokens")
	}
	c.cache.Flush()
	if err := c.store.Set(ctx, credentials.FromLogin(out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout clears local credentials whether or not the server call succeeded.
// The server's error, if any, is still returned.
func (c *Client) Logout(ctx context.Context) (*model.MessageResponse, error) {
	var out model.MessageResponse
	err := c.mutate(ctx, http.MethodPost, "/auth/logout", nil, &out)
	c.cache.Flush()
	if cerr := c.store.Clear(ctx); cerr != nil {
		log.Printf("logout: %v", cerr)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*model.MessageResponse, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	var out model.MessageResponse
	if err := c.mutate(ctx, http.MethodPost, "/auth/forgot-password", model.EmailPayload{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, p model.ResetPasswordPayload) (*model.MessageResponse, error) {
	if err := requireEmail(p.Email); err != nil {
		return nil, err
	}
	if p.OTP == "" || p.NewPassword == "" {
		return nil, invalid("otp and new password are required")
	}
	var out model.MessageResponse
	if err := c.mutate(ctx, http.MethodPost, "/auth/reset-password", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken forces a refresh through the coordinator, so it shares the
// in-flight call with any request currently recovering from a 401.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	return c.refresh.Refresh(ctx)
}
