package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	logLevelVar   = "REGULUS_LOG_LEVEL"
	dataFolderVar = "REGULUS_DATA_FOLDER"
)

type EnvVars struct {
	file *File
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, orDefault(e.file.AppName, "Regulus"))
}

func (e EnvVars) GetEnv() string {
	return GetEnv(envVar, orDefault(e.file.Env, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, orDefault(e.file.LogLevel, "info"))
}

// GetDataFolder is where the credential file lives. A leading ~ is expanded.
func (e EnvVars) GetDataFolder() string {
	folder := GetEnv(dataFolderVar, e.file.DataFolder)
	if folder == "" {
		if dir, err := HomeDir(); err == nil {
			return dir
		}
		return "./data"
	}
	return expandHome(folder)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
