package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/regulus-console/session"
)

// Sessions is the credential store the service logs in to and out of.
type Sessions interface {
	SetCredential(token string, expiresAt time.Time) error
	AccessToken() (string, bool)
	Credential() (session.Credential, bool)
	Clear() error
}

// Poster sends JSON requests to the monitoring API.
type Poster interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}
