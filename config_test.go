package moreremesas

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MOREREMESAS_TEST_PASSWORD", "from-env")

	path := filepath.Join(t.TempDir(), "moreremesas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: https://www.moresistemas.com:7002
username: agent
password: ${MOREREMESAS_TEST_PASSWORD}
basePath: /Chile16
timeout: 20s
debug: true
retry:
  maxAttempts: 5
  backoff: 250ms
  maxBackoff: 4s
token:
  safetyMargin: 2m
  rejectedCodes: ["1010", "1011"]
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://www.moresistemas.com:7002", cfg.Host)
	assert.Equal(t, "from-env", cfg.Password)

	opts := cfg.Options()
	assert.Equal(t, Options{
		Username:           "agent",
		Password:           "from-env",
		BasePath:           "/Chile16",
		Timeout:            20 * time.Second,
		MaxAttempts:        5,
		Backoff:            250 * time.Millisecond,
		MaxBackoff:         4 * time.Second,
		TokenSafetyMargin:  2 * time.Minute,
		TokenRejectedCodes: []string{"1010", "1011"},
		Debug:              true,
	}, opts)
}

func TestParseConfigMinimal(t *testing.T) {
	cfg, err := ParseConfig([]byte("host: https://h\nusername: u\npassword: p\n"))
	require.NoError(t, err)

	c, err := New(cfg.Host, cfg.Options())
	require.NoError(t, err)
	assert.Equal(t, 4, c.opts.MaxAttempts)
	assert.Equal(t, 60*time.Second, c.opts.TokenSafetyMargin)
	assert.Equal(t, "https://h/HmgChile16", c.url)
}

func TestParseConfigMissingKeys(t *testing.T) {
	_, err := ParseConfig([]byte("host: https://h\nretry:\n  maxAttempts: -1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"username", "password", "retry.maxAttempts"}, e.Fields)
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("host: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
