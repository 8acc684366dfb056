package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	LoginPath  = "/api/v1/auth/login"
	SignupPath = "/api/v1/users"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the API's answer to a successful login. Expiry is resolved
// from ExpiresAtRaw, or from the token's exp claim when the server omits it.
type LoginResult struct {
	Token        string    `json:"token"`
	TokenType    string    `json:"token_type"`
	ExpiresAtRaw string    `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
	Expiry       time.Time `json:"-"`
}

// Service logs operators in and out of the console session.
type Service struct {
	sessions Sessions
	api      Poster
}

func NewService(sessions Sessions, poster Poster) (*Service, error) {
	if sessions == nil {
		return nil, pkgerrors.New("[NewService] sessions is required")
	}
	if poster == nil {
		return nil, pkgerrors.New("[NewService] poster is required")
	}
	return &Service{sessions: sessions, api: poster}, nil
}

// Login exchanges username and password for a bearer token and stores it as
// the current credential.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, InvalidCredentialsErr
	}

	raw, err := s.api.Post(ctx, LoginPath, loginPayload{Username: username, Password: password})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Login] request failed")
	}
	result, err := api.Unwrap[LoginResult](raw)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Login] decode response")
	}
	if result.Token == "" {
		return nil, MissingTokenErr
	}

	result.Expiry = resolveExpiry(result)
	if err := s.sessions.SetCredential(result.Token, result.Expiry); err != nil {
		return nil, pkgerrors.Wrap(err, "[Login] store credential")
	}

	event := log.Info().Str("username", username)
	if !result.Expiry.IsZero() {
		event = event.Time("expires_at", result.Expiry)
	}
	event.Msg("Logged in")
	return &result, nil
}

func resolveExpiry(result LoginResult) time.Time {
	if result.ExpiresAtRaw != "" {
		expiry, err := api.ParseTimestamp(result.ExpiresAtRaw)
		if err == nil {
			return expiry
		}
		log.Warn().Err(err).Msg("Ignoring unreadable expires_at, falling back to token claims")
	}
	claims, err := ParseClaims(result.Token)
	if err != nil {
		return time.Time{}
	}
	return claims.ExpiresAt
}

// Signup registers a new operator account. It does not log in.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	raw, err := s.api.Post(ctx, SignupPath, req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Signup] request failed")
	}
	user, err := api.Unwrap[User](raw)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Signup] decode response")
	}
	log.Info().Str("username", user.Username).Msg("Operator registered")
	return &user, nil
}

// Logout removes the credential. Logging out is not a session expiry and is
// never announced as one.
func (s *Service) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return pkgerrors.Wrap(err, "[Logout] clear session")
	}
	log.Info().Msg("Logged out")
	return nil
}

// Authenticated reports whether a live credential is held. An expired
// credential is cleared as a side effect.
func (s *Service) Authenticated() bool {
	_, ok := s.sessions.AccessToken()
	return ok
}

// Claims describes the stored credential without applying expiry.
func (s *Service) Claims() (*Claims, error) {
	cred, ok := s.sessions.Credential()
	if !ok {
		return nil, errors.ErrNoCredential
	}
	claims, err := ParseClaims(cred.Token)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt.IsZero() {
		claims.ExpiresAt = cred.ExpiresAt
	}
	return claims, nil
}
