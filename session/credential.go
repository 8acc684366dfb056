package session

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the bearer token plus its expiry.
// A zero ExpiresAt means the token does not expire.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the credential is no longer usable at now.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !c.ExpiresAt.After(now)
}

// OAuth2 converts the credential into a bearer oauth2.Token.
func (c Credential) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: c.Token,
		TokenType:   "Bearer",
		Expiry:      c.ExpiresAt,
	}
}

func (c Credential) entries() map[string]string {
	entries := map[string]string{TokenKey: c.Token}
	if !c.ExpiresAt.IsZero() {
		entries[ExpiryKey] = c.ExpiresAt.UTC().Format(time.RFC3339Nano)
	} else {
		entries[ExpiryKey] = ""
	}
	return entries
}

func credentialFromEntries(entries map[string]string) (*Credential, error) {
	token := entries[TokenKey]
	if token == "" {
		return nil, nil
	}

	cred := &Credential{Token: token}
	if raw := entries[ExpiryKey]; raw != "" {
		expiresAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		cred.ExpiresAt = expiresAt
	}
	return cred, nil
}
