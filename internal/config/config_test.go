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

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5380", c.GetHTTPAddr())
	assert.Equal(t, "gzip", c.Crypto.Compression)
	assert.True(t, c.Crypto.VerifyFiles)
	assert.True(t, c.Cache.Enable)
	assert.Equal(t, 10*time.Minute, c.CacheTTL())
	assert.Equal(t, 24*time.Hour, c.JWTExpiration())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"address": "127.0.0.1", "http_port": 9000, "enable_h2c": true},
		"log": {"level": "debug", "format": "json"},
		"crypto": {"compression": "zstd", "verify_files": false},
		"jwt_expire": 0
	}`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.GetHTTPAddr())
	assert.True(t, c.IsH2CEnabled())
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "zstd", c.Crypto.Compression)
	assert.False(t, c.Crypto.VerifyFiles)
	assert.Equal(t, 48*time.Hour, c.JWTExpiration())
	// untouched sections keep defaults
	assert.Equal(t, 1024, c.Cache.MaxSize)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `{"server": {"http_port": 9000}}`)
	t.Setenv("TOKENCRYPT_SERVER_HTTP_PORT", "9100")
	t.Setenv("TOKENCRYPT_CRYPTO_COMPRESSION", "lzma")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, c.Server.HTTPPort)
	assert.Equal(t, "lzma", c.Crypto.Compression)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"server":`, "failed to read config"},
		{"bad port", `{"server": {"http_port": 70000}}`, "http_port"},
		{"bad log format", `{"log": {"format": "xml"}}`, "log.format"},
		{"bad cache size", `{"cache": {"enable": true, "max_size": 0}}`, "cache.max_size"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.True(t, strings.HasPrefix(info.String(), "tokencrypt "+Version))
}
