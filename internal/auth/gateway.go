// Package auth turns credential submissions into session state.
//
// Validation runs client-side before any network call; a validation failure
// never reaches the backend. Transport and server failures surface the
// backend's response body verbatim as a one-shot banner message.
package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/stockdeck/internal/api"
	"github.com/fyrsmithlabs/stockdeck/internal/logging"
	"github.com/fyrsmithlabs/stockdeck/internal/session"
)

// Fixed validation messages, shown inline on the auth form.
const (
	MsgEmailRequired       = "Email is required"
	MsgPasswordRequired    = "Password is required"
	MsgDisplayNameRequired = "Display name is required"
	MsgPasswordTooShort    = "Password must be at least 8 characters"
	MsgPasswordMismatch    = "Passwords do not match"

	// MsgSignupFallback is shown when the register endpoint returns no
	// message of its own.
	MsgSignupFallback = "Account created. You can log in now."
)

// ValidationError is a client-side rejection; no request was sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Gateway executes login and signup against the backend.
type Gateway struct {
	api *api.Client
	log *logging.Logger
}

// NewGateway creates a gateway over the given API client.
func NewGateway(client *api.Client, log *logging.Logger) *Gateway {
	if log == nil {
		log = logging.NewNop()
	}
	return &Gateway{api: client, log: log.Named("auth")}
}

// Login authenticates and returns the session seed to persist. When the
// backend omits a user payload the submitted email stands in, matching the
// original client's fallback.
func (g *Gateway) Login(ctx context.Context, email, password string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &ValidationError{Message: MsgEmailRequired}
	}
	if strings.TrimSpace(password) == "" {
		return nil, &ValidationError{Message: MsgPasswordRequired}
	}

	user, err := g.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		g.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	if user == nil {
		g.log.Info("login succeeded without user payload", zap.String("email", email))
		return &session.Session{Email: email}, nil
	}

	g.log.Info("login succeeded", zap.String("user_id", user.UserID))
	// Some backends omit the email on the user record; the submitted one
	// stands in so the session always carries a non-empty email.
	sessionEmail := user.Email
	if sessionEmail == "" {
		sessionEmail = email
	}
	return &session.Session{
		UserID:      user.UserID,
		DisplayName: user.DisplayName,
		Email:       sessionEmail,
		AvatarURL:   user.AvatarURL,
		Status:      user.Status,
	}, nil
}

// Signup registers an account and returns the confirmation message the
// caller shows after switching back to login mode.
//
// Validation order is fixed: email, password, display name, password
// length, confirmation match.
func (g *Gateway) Signup(ctx context.Context, email, password, displayName, confirmPassword string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", &ValidationError{Message: MsgEmailRequired}
	}
	if strings.TrimSpace(password) == "" {
		return "", &ValidationError{Message: MsgPasswordRequired}
	}
	if strings.TrimSpace(displayName) == "" {
		return "", &ValidationError{Message: MsgDisplayNameRequired}
	}
	if len(password) < 8 {
		return "", &ValidationError{Message: MsgPasswordTooShort}
	}
	if password != confirmPassword {
		return "", &ValidationError{Message: MsgPasswordMismatch}
	}

	conf, err := g.api.Register(ctx, api.RegisterRequest{
		DisplayName: strings.TrimSpace(displayName),
		Email:       email,
		Password:    password,
	})
	if err != nil {
		g.log.Warn("signup failed", zap.String("email", email), zap.Error(err))
		return "", err
	}

	g.log.Info("signup succeeded", zap.String("email", email))
	if msg := conf.Text(); msg != "" {
		return msg, nil
	}
	return MsgSignupFallback, nil
}
