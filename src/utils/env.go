package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const DEV_ENV_FILENAME = ".env.development"
const PROD_ENV_FILENAME = ".env.production"

func InitEnvironmentVariables(projectDir string) error {
	// Hosted environments inject config directly and carry no .env files
	if os.Getenv("ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	if projectDir == "" {
		projectDir = os.Getenv("PROJECT_DIR")
	}

	if projectDir == "" {
		return fmt.Errorf("InitEnvironmentVariables: PROJECT_DIR environment variable not set")
	}

	// Default to the development environment
	envFile := filepath.Join(projectDir, DEV_ENV_FILENAME)
	if os.Getenv("GO_ENV") == "production" {
		envFile = filepath.Join(projectDir, PROD_ENV_FILENAME)
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("InitEnvironmentVariables: failed to load %s file: %v", envFile, err)
	}

	return nil
}

func GetEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("GetEnv: %s environment variable not set", name)
	}

	return value, nil
}

// GetEnvOrDefault returns the named variable, or fallback when unset.
func GetEnvOrDefault(name, fallback string) string {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	return value
}
