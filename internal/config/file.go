package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	configPathVar  = "REGULUS_CONFIG"
	configDirName  = ".regulus"
	configFileName = "config.toml"
)

// File is the on-disk configuration. Empty fields fall through to defaults;
// environment variables override every field.
type File struct {
	AppName         string  `toml:"app_name,omitempty"`
	Env             string  `toml:"env,omitempty"`
	LogLevel        string  `toml:"log_level,omitempty"`
	DataFolder      string  `toml:"data_folder,omitempty"`
	APIBaseURL      string  `toml:"api_base_url,omitempty"`
	DeviceID        string  `toml:"device_id,omitempty"`
	ForwardedFor    string  `toml:"forwarded_for,omitempty"`
	RateLimit       float64 `toml:"rate_limit,omitempty"`
	RefreshInterval string  `toml:"refresh_interval,omitempty"`
	PageSize        int     `toml:"page_size,omitempty"`
	StoreKey        string  `toml:"store_key,omitempty"`
}

// HomeDir returns ~/.regulus.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrapf(err, "could not determine home directory")
	}
	return filepath.Join(home, configDirName), nil
}

// DefaultPath returns $REGULUS_CONFIG, or ~/.regulus/config.toml.
func DefaultPath() (string, error) {
	if path := os.Getenv(configPathVar); path != "" {
		return path, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// ReadFile decodes the TOML file at path. A missing file yields an empty File.
func ReadFile(path string) (*File, error) {
	f := &File{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f, nil
	}

	md, err := toml.DecodeFile(path, f)
	if err != nil {
		return nil, errors.Wrapf(err, "config.ReadFile %s", path)
	}
	for _, key := range md.Undecoded() {
		log.Warn().Str("key", key.String()).Str("path", path).Msg("Ignoring unknown config key")
	}
	return f, nil
}

// WriteFile encodes f to path with owner-only permissions.
func WriteFile(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrapf(err, "config.WriteFile mkdir")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrapf(err, "config.WriteFile open")
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(f); err != nil {
		return errors.Wrapf(err, "config.WriteFile encode")
	}
	return nil
}
