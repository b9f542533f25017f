package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokencrypt-go/internal/config"
	"github.com/tokencrypt-go/internal/errors"
)

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"tokencrypt"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestTextRoundTrip(t *testing.T) {
	code, out, errOut := runCLI("encrypt", "-t", "Hello World", "-p", "mypassword")
	require.Equal(t, 0, code, errOut)
	token := strings.TrimSpace(out)
	assert.Regexp(t, `^[0-9A-Za-z]+$`, token)

	code, out, errOut = runCLI("decrypt", "-t", token, "-p", "mypassword")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "Hello World\n", out)
}

func TestDecryptExternalToken(t *testing.T) {
	code, out, _ := runCLI("decrypt", "--text", "8kthlYl50McIO6O1JRfffJk5dyfMXoFy4zsg7Ex2BpE", "--password", "mypassword")
	require.Equal(t, 0, code)
	assert.Equal(t, "Hello World\n", out)
}

func TestEmptyText(t *testing.T) {
	code, out, errOut := runCLI("encrypt", "-t", "", "-p", "pw")
	require.Equal(t, 0, code, errOut)

	code, out, _ = runCLI("decrypt", "-t", strings.TrimSpace(out), "-p", "pw")
	require.Equal(t, 0, code)
	assert.Equal(t, "\n", out)
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"missing password", []string{"encrypt", "-t", "x"}, 2},
		{"no input", []string{"encrypt", "-p", "pw"}, 2},
		{"both inputs", []string{"encrypt", "-t", "x", "-f", "y", "-p", "pw"}, 2},
		{"unknown suite", []string{"encrypt", "-t", "x", "-p", "pw", "-c", "brotli"}, 2},
		{"invalid character", []string{"decrypt", "-t", "!!!invalid!!!", "-p", "pw"}, 3},
		{"wrong padding", []string{"decrypt", "-t", "0", "-p", "mypassword"}, 4},
		{"corrupt data", []string{"decrypt", "-t", "4EAWDEb5g8zLWgF1WK7Dw3", "-p", "mypassword"}, 5},
		{"empty result", []string{"decrypt", "-t", "7j5XLHlyttoaEpSlcvieU6", "-p", "mypassword"}, 6},
		{"not utf8", []string{"decrypt", "-t", "PlrwV1d8uhD2rZgmIpxWbs7El5qsbYOp7ZLfrar78Ef", "-p", "mypassword"}, 7},
		{"missing file", []string{"encrypt", "-f", filepath.Join(os.TempDir(), "tokencrypt-missing-file"), "-p", "pw"}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(tt.args...)
			assert.Equal(t, tt.want, code, errOut)
			if code > 2 {
				assert.True(t, strings.HasPrefix(errOut, "error: "), errOut)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.bin")
	payload := []byte{0, 1, 2, 'x', 0xff, '\n'}
	require.NoError(t, os.WriteFile(src, payload, 0644))

	code, _, errOut := runCLI("encrypt", "-f", src, "-p", "pw")
	require.Equal(t, 0, code, errOut)
	require.FileExists(t, src+TokenExt)

	require.NoError(t, os.Remove(src))
	code, _, errOut = runCLI("decrypt", "-f", src+TokenExt, "-p", "pw")
	require.Equal(t, 0, code, errOut)

	got, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFileExplicitOutputAndSuite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(src, []byte(strings.Repeat("lzma ", 100)), 0644))

	tok := filepath.Join(dir, "out", "token")
	code, _, errOut := runCLI("encrypt", "-f", src, "-o", tok, "-p", "pw", "-c", "lzma", "--no-verify")
	require.Equal(t, 0, code, errOut)

	code, _, _ = runCLI("decrypt", "-f", tok, "-p", "pw")
	assert.NotEqual(t, 0, code, "gzip pipeline must not read lzma tokens")

	code, _, errOut = runCLI("decrypt", "-f", tok, "-p", "pw", "-c", "lzma")
	require.Equal(t, 0, code, errOut)
	got, err := os.ReadFile(tok + ".out")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("lzma ", 100), string(got))
}

func TestTextToFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "t.tkn")

	code, stdout, _ := runCLI("encrypt", "-t", "to file", "-p", "pw", "-o", out)
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)

	raw := filepath.Join(dir, "raw")
	token, err := os.ReadFile(out)
	require.NoError(t, err)
	code, _, _ = runCLI("decrypt", "-t", string(token), "-p", "pw", "-o", raw)
	require.Equal(t, 0, code)

	got, err := os.ReadFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "to file", string(got))
}

func TestFileVerifySetting(t *testing.T) {
	dir := t.TempDir()
	off := filepath.Join(dir, "off.json")
	require.NoError(t, os.WriteFile(off, []byte(`{"crypto": {"verify_files": false}}`), 0644))
	defaults := filepath.Join(dir, "defaults.json")
	require.NoError(t, os.WriteFile(defaults, []byte(`{}`), 0644))

	verify, err := fileVerify(defaults, false)
	require.NoError(t, err)
	assert.True(t, verify)

	verify, err = fileVerify(off, false)
	require.NoError(t, err)
	assert.False(t, verify)

	verify, err = fileVerify(defaults, true)
	require.NoError(t, err)
	assert.False(t, verify)

	_, err = fileVerify(filepath.Join(dir, "missing.json"), false)
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(err))

	src := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(src, []byte("configured"), 0644))
	code, _, errOut := runCLI("encrypt", "-f", src, "-p", "pw", "--config", off)
	require.Equal(t, 0, code, errOut)
	assert.FileExists(t, src+TokenExt)

	code, _, _ = runCLI("encrypt", "-f", src, "-p", "pw", "--config", filepath.Join(dir, "missing.json"))
	assert.Equal(t, 2, code)
}

func TestDefaultDecryptOutput(t *testing.T) {
	assert.Equal(t, "a.txt", defaultDecryptOutput("a.txt.tkn"))
	assert.Equal(t, "a.txt.out", defaultDecryptOutput("a.txt"))
	assert.Equal(t, ".tkn.out", defaultDecryptOutput(".tkn"))
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI("version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "tokencrypt "+config.Version)
}
