package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const DefaultEnvFilename = ".env"

// InitEnvironmentVariables loads envFile into the process environment.
// Variables that are already set win. An empty envFile loads .env from the
// working directory when it exists.
func InitEnvironmentVariables(envFile string) error {
	if os.Getenv("ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	if envFile == "" {
		if _, err := os.Stat(DefaultEnvFilename); errors.Is(err, os.ErrNotExist) {
			log.Debugf("no %s file found, using process environment", DefaultEnvFilename)
			return nil
		}

		envFile = DefaultEnvFilename
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("InitEnvironmentVariables: failed to load %s file: %w", envFile, err)
	}

	return nil
}

// GetEnv returns the value of name, or an error when it is unset or blank.
func GetEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("GetEnv: %s not set", name)
	}

	return value, nil
}

// GetEnvOrDefault returns the value of name, or def when it is unset.
func GetEnvOrDefault(name, def string) string {
	if value, err := GetEnv(name); err == nil {
		return value
	}

	return def
}

// GetEnvBool reads name as a boolean. Unset means false.
func GetEnvBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// SetLogLevel applies LOG_LEVEL when it is set.
func SetLogLevel() {
	lvl, err := GetEnv("LOG_LEVEL")
	if err != nil {
		return
	}

	level, err := log.ParseLevel(lvl)
	if err != nil {
		log.Warnf("SetLogLevel: ignoring LOG_LEVEL %q: %v", lvl, err)
		return
	}

	log.SetLevel(level)
}
