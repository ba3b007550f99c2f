package config

import (
	"os"
	"path/filepath"
)

const (
	apiURLEnvVar  = "FITDESK_API_URL"
	appNameVar    = "FITDESK_APP_NAME"
	folderEnvVar  = "FITDESK_DATA_DIR"
	environEnvVar = "FITDESK_ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "FitDesk")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiURLEnvVar, "https://api.fitdesk.app/api")
}

// GetDataFolder returns the directory holding persisted session state.
// Defaults to ~/.fitdesk, falling back to the working directory when the
// home directory cannot be resolved.
func (EnvVars) GetDataFolder() string {
	if folder := os.Getenv(folderEnvVar); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fitdesk"
	}
	return filepath.Join(home, ".fitdesk")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(environEnvVar)
	if env == "" {
		return "PROD"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
