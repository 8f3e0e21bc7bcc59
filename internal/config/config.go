// Package config loads application configuration from environment variables.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	APIBaseURL   string
	ListenAddr   string
	DBPath       string
}

// DefaultAPIBaseURL is the public GitHub REST API endpoint.
const DefaultAPIBaseURL = "https://api.github.com"

// HasOAuthConfig returns true when both halves of the OAuth client pair are
// set. Without them the app still serves anonymous browsing; login attempts
// fail with a configuration error.
func (c *Config) HasOAuthConfig() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Load reads configuration from a .env file (if present) and environment
// variables, with the environment taking precedence. The OAuth client pair
// (GHEXPLORER_CLIENT_ID, GHEXPLORER_CLIENT_SECRET) is optional; without it
// the app runs anonymously. Optional variables with defaults:
// GHEXPLORER_CALLBACK_URL (http://localhost:8080/auth/callback),
// GHEXPLORER_API_BASE_URL (https://api.github.com),
// GHEXPLORER_LISTEN_ADDR (127.0.0.1:8080), GHEXPLORER_DB_PATH (ghexplorer.db).
func Load() (*Config, error) {
	// godotenv does not overwrite variables already set in the environment.
	_ = godotenv.Load()

	callbackURL := "http://localhost:8080/auth/callback"
	if v, ok := os.LookupEnv("GHEXPLORER_CALLBACK_URL"); ok {
		callbackURL = v
	}

	apiBaseURL := DefaultAPIBaseURL
	if v, ok := os.LookupEnv("GHEXPLORER_API_BASE_URL"); ok {
		apiBaseURL = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("GHEXPLORER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "ghexplorer.db"
	if v, ok := os.LookupEnv("GHEXPLORER_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		ClientID:     os.Getenv("GHEXPLORER_CLIENT_ID"),
		ClientSecret: os.Getenv("GHEXPLORER_CLIENT_SECRET"),
		CallbackURL:  callbackURL,
		APIBaseURL:   apiBaseURL,
		ListenAddr:   listenAddr,
		DBPath:       dbPath,
	}, nil
}
