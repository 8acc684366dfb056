package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	ConsoleConfig
	SecurityConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetDeviceID() string
	GetForwardedFor() string
	GetRateLimit() float64
}

type ConsoleConfig interface {
	GetRefreshInterval() time.Duration
	GetPageSize() int
}

type mainConfig struct {
	EnvVars
	API
	Console
	Security
}

// New resolves configuration from the environment and built-in defaults only.
func New() Config {
	return FromFile(&File{})
}

// FromFile layers the environment over f, then the built-in defaults.
func FromFile(f *File) Config {
	if f == nil {
		f = &File{}
	}
	return mainConfig{
		EnvVars:  EnvVars{file: f},
		API:      API{file: f},
		Console:  Console{file: f},
		Security: Security{file: f},
	}
}

// Load reads the TOML file at path, or DefaultPath when path is empty.
// A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return New(), nil
		}
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromFile(f), nil
}
