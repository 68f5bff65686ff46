package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
server:
  port: 8080
  verbose: false

standalone_mode: false

admin:
  email: "admin@example.com"
  password_hash: "$2a$10$somehash"

sheet:
  webhook_url: "http://localhost:9090/"
  timeout: "10s"

auth:
  db_path: "portal.db"
  admin_session_timeout: "30m"
  recipient_session_timeout: "24h"
  max_login_attempts: 5
  lockout_duration: "15m"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.SheetTimeout)
	assert.Equal(t, 30*time.Minute, cfg.AdminTimeout)
	assert.Equal(t, 24*time.Hour, cfg.RecipientTimeout)
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidationRejections(t *testing.T) {
	cases := []struct {
		name    string
		rewrite func(s string) string
	}{
		{"bad port", replacer("port: 8080", "port: 0")},
		{"bad admin email", replacer(`email: "admin@example.com"`, `email: "not-an-email"`)},
		{"missing password hash", replacer(`password_hash: "$2a$10$somehash"`, `password_hash: ""`)},
		{"missing webhook url", replacer(`webhook_url: "http://localhost:9090/"`, `webhook_url: ""`)},
		{"admin timeout not shorter", replacer(`admin_session_timeout: "30m"`, `admin_session_timeout: "24h"`)},
		{"zero max attempts", replacer("max_login_attempts: 5", "max_login_attempts: 0")},
		{"bad lockout duration", replacer(`lockout_duration: "15m"`, `lockout_duration: "soon"`)},
		{"missing db path", replacer(`db_path: "portal.db"`, `db_path: ""`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.rewrite(validConfig)))
			assert.Error(t, err)
		})
	}
}

func TestStandaloneModeSkipsWebhookRequirement(t *testing.T) {
	content := replacer("standalone_mode: false", "standalone_mode: true")(
		replacer(`webhook_url: "http://localhost:9090/"`, `webhook_url: ""`)(validConfig))

	cfg, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)
	assert.True(t, cfg.StandaloneMode)
}

func replacer(old, new string) func(string) string {
	return func(s string) string {
		return strings.ReplaceAll(s, old, new)
	}
}
