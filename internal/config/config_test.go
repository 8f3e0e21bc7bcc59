package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every GHEXPLORER_ env var that Load() reads.
var allConfigKeys = []string{
	"GHEXPLORER_CLIENT_ID",
	"GHEXPLORER_CLIENT_SECRET",
	"GHEXPLORER_CALLBACK_URL",
	"GHEXPLORER_API_BASE_URL",
	"GHEXPLORER_LISTEN_ADDR",
	"GHEXPLORER_DB_PATH",
}

// isolateConfigEnv saves and unsets all GHEXPLORER_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GHEXPLORER_CLIENT_ID", "Iv1.test123")
	t.Setenv("GHEXPLORER_CLIENT_SECRET", "secret456")
	t.Setenv("GHEXPLORER_CALLBACK_URL", "https://example.com/auth/callback")
	t.Setenv("GHEXPLORER_API_BASE_URL", "https://github.example.com/api/v3")
	t.Setenv("GHEXPLORER_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("GHEXPLORER_DB_PATH", "/tmp/test.db")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "Iv1.test123", cfg.ClientID)
	assert.Equal(t, "secret456", cfg.ClientSecret)
	assert.Equal(t, "https://example.com/auth/callback", cfg.CallbackURL)
	assert.Equal(t, "https://github.example.com/api/v3", cfg.APIBaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/auth/callback", cfg.CallbackURL)
	assert.Equal(t, "https://api.github.com", cfg.APIBaseURL)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "ghexplorer.db", cfg.DBPath)
}

// TestLoad_MissingOAuthPair verifies that absent OAuth credentials do not
// cause an error — the app runs anonymously until they are configured.
func TestLoad_MissingOAuthPair(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.ClientID)
	assert.Equal(t, "", cfg.ClientSecret)
	assert.False(t, cfg.HasOAuthConfig())
}

func TestHasOAuthConfig(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
		want   bool
	}{
		{"both set", "Iv1.abc", "shh", true},
		{"id only", "Iv1.abc", "", false},
		{"secret only", "", "shh", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ClientID: tt.id, ClientSecret: tt.secret}
			assert.Equal(t, tt.want, cfg.HasOAuthConfig())
		})
	}
}
