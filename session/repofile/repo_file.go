package repofile

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/jrsteele09/regulus-console/session"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// FileName is the credential file created inside the data folder
	FileName = "credentials.json"

	nonceSize = 24
	keySize   = 32
)

var _ session.Repo = (*FileRepo)(nil)

// FileRepo persists credential entries as one JSON document. When a key is
// configured the document is sealed with NaCl secretbox.
type FileRepo struct {
	path string
	key  *[keySize]byte
	mu   sync.Mutex
}

type Option func(*FileRepo) error

// WithHexKey seals the file with a 32-byte key given as 64 hex characters.
// An empty string leaves the file unsealed.
func WithHexKey(hexKey string) Option {
	return func(r *FileRepo) error {
		if hexKey == "" {
			return nil
		}
		raw, err := hex.DecodeString(hexKey)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidStoredKey, "store key must be hex encoded: %v", err)
		}
		if len(raw) != keySize {
			return errors.Wrapf(errors.ErrInvalidStoredKey, "store key must be %d bytes, got %d", keySize, len(raw))
		}
		var key [keySize]byte
		copy(key[:], raw)
		r.key = &key
		return nil
	}
}

// New returns a repo storing its file inside folder, creating folder if needed.
func New(folder string, options ...Option) (*FileRepo, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data folder: %w", err)
	}
	r := &FileRepo{path: filepath.Join(folder, FileName)}
	for _, opt := range options {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Path returns the location of the credential file.
func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Load() (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *FileRepo) Save(entries map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read()
	if err != nil {
		return err
	}
	for k, v := range entries {
		current[k] = v
	}
	return r.write(current)
}

func (r *FileRepo) Delete(keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(current, k)
	}
	if len(current) == 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credential file: %w", err)
		}
		return nil
	}
	return r.write(current)
}

// Reset removes the credential file without reading it, for files that can no
// longer be opened.
func (r *FileRepo) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

func (r *FileRepo) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	if r.key != nil {
		if data, err = r.open(data); err != nil {
			return nil, err
		}
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidStoredKey, "decode %s: %v", r.path, err)
	}
	return entries, nil
}

func (r *FileRepo) write(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if r.key != nil {
		if data, err = r.seal(data); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

func (r *FileRepo) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, r.key), nil
}

func (r *FileRepo) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, errors.Wrapf(errors.ErrInvalidStoredKey, "sealed credential file too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, r.key)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidStoredKey, "credential file cannot be opened with the configured key")
	}
	return plain, nil
}
