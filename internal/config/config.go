// Package config loads goalpath settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Config holds process-wide settings. LLM settings live in llm.Config.
type Config struct {
	Store                string // sqlite or firestore
	DBPath               string // empty means the default XDG path
	FirestoreProject     string
	FirestoreCredentials string
	UserID               string
	Location             *time.Location
	LogFile              string // empty logs to stderr
	LogLevel             string
}

// Load reads .env files (when present) into the environment, then builds a
// Config from GOALPATH_* variables. Variables already set in the
// environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		Store:                strings.ToLower(getEnv("GOALPATH_STORE", StoreSQLite)),
		DBPath:               getEnv("GOALPATH_DB", ""),
		FirestoreProject:     getEnv("GOALPATH_FIRESTORE_PROJECT", ""),
		FirestoreCredentials: getEnv("GOALPATH_FIRESTORE_CREDENTIALS", ""),
		UserID:               getEnv("GOALPATH_USER", defaultUser()),
		LogFile:              getEnv("GOALPATH_LOG_FILE", ""),
		LogLevel:             getEnv("GOALPATH_LOG_LEVEL", "warn"),
		Location:             time.Local,
	}

	if tz := getEnv("GOALPATH_TZ", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("GOALPATH_TZ: %w", err)
		}
		cfg.Location = loc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend is usable.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
	case StoreFirestore:
		if c.FirestoreProject == "" {
			return errors.New("GOALPATH_FIRESTORE_PROJECT is required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreFirestore)
	}
	if c.UserID == "" {
		return errors.New("GOALPATH_USER must not be empty")
	}
	return nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", f, err)
	}
	return nil
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
