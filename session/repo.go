package session

// Durable keys. Both are written and removed together.
const (
	TokenKey  = "regulus_token"
	ExpiryKey = "regulus_token_expiry"
)

// Repo defines durable key-value storage for the credential so that it
// survives process restarts.
type Repo interface {
	// Load returns every stored entry. A missing store is an empty map, not an error.
	Load() (map[string]string, error)

	// Save writes all entries in one operation, replacing any previous values
	Save(entries map[string]string) error

	// Delete removes the given keys in one operation
	Delete(keys ...string) error
}
