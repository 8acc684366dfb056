package session

import (
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/regulus-console/events"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Store)(nil)

// Store is the single source of truth for the current credential.
// Only SetCredential, Clear, Invalidate and the expiry path of AccessToken mutate it.
type Store struct {
	mu      sync.Mutex
	current *Credential
	repo    Repo
	bus     *events.Bus
	nowFunc func() time.Time
}

type StoreOption func(*Store)

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// NewStore creates a store backed by repo and restores any persisted credential.
// A persisted credential with an unreadable expiry, or an expiry without a
// token, is discarded entirely.
func NewStore(repo Repo, bus *events.Bus, options ...StoreOption) (*Store, error) {
	s := &Store{
		repo: repo,
		bus:  bus,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}

	entries, err := repo.Load()
	if err != nil {
		return nil, errors.Wrapf(err, "session.NewStore Load")
	}

	cred, err := credentialFromEntries(entries)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Discarding persisted credential with unreadable expiry")
	case cred == nil && entries[ExpiryKey] != "":
		log.Warn().Msg("Discarding persisted expiry without a token")
	default:
		s.current = cred
		return s, nil
	}
	if err := repo.Delete(TokenKey, ExpiryKey); err != nil {
		return nil, errors.Wrapf(err, "session.NewStore Delete")
	}
	return s, nil
}

// SetCredential replaces the credential and persists it.
// A zero expiresAt stores a credential that never expires.
func (s *Store) SetCredential(token string, expiresAt time.Time) error {
	if strings.TrimSpace(token) == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "session.SetCredential empty token")
	}
	cred := &Credential{Token: token, ExpiresAt: expiresAt}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(cred.entries()); err != nil {
		return errors.Wrapf(err, "session.SetCredential Save")
	}
	s.current = cred
	return nil
}

// AccessToken returns the token only while it has not expired. An expired
// credential is cleared from memory and storage and session-expired is
// published before reporting absence.
func (s *Store) AccessToken() (string, bool) {
	cred, ok := s.live()
	if !ok {
		return "", false
	}
	return cred.Token, true
}

// Token implements oauth2.TokenSource on top of AccessToken.
func (s *Store) Token() (*oauth2.Token, error) {
	cred, ok := s.live()
	if !ok {
		return nil, errors.ErrNoCredential
	}
	return cred.OAuth2(), nil
}

func (s *Store) live() (Credential, bool) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return Credential{}, false
	}
	if !s.current.Expired(s.nowFunc()) {
		cred := *s.current
		s.mu.Unlock()
		return cred, true
	}

	s.clearLocked()
	s.mu.Unlock()

	log.Info().Msg("Session expired")
	s.bus.Publish(events.SessionExpired)
	return Credential{}, false
}

// Credential returns the stored credential without applying expiry.
func (s *Store) Credential() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Credential{}, false
	}
	return *s.current, true
}

// Clear removes the credential unconditionally. It is used for explicit
// logout and never publishes session-expired.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.repo.Delete(TokenKey, ExpiryKey); err != nil {
		return errors.Wrapf(err, "session.Clear Delete")
	}
	return nil
}

// Invalidate clears the credential after the server rejected token. A
// credential stored since token was sent is left alone. Only the call that
// actually removes the credential publishes session-expired, so concurrent
// authorization failures produce a single notification.
func (s *Store) Invalidate(token string) bool {
	s.mu.Lock()
	if s.current == nil || s.current.Token != token {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	s.mu.Unlock()

	log.Warn().Msg("Credential rejected by server, session cleared")
	s.bus.Publish(events.SessionExpired)
	return true
}

func (s *Store) clearLocked() {
	s.current = nil
	if err := s.repo.Delete(TokenKey, ExpiryKey); err != nil {
		// Memory is already clear; the stale entries are re-validated on next load
		log.Err(err).Msg("Failed to delete persisted credential")
	}
}
