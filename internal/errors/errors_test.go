package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorIsMatchesByCode(t *testing.T) {
	err := NewInvalidCharacter('!', 0)
	assert.True(t, stderrors.Is(err, ErrInvalidCharacter))
	assert.False(t, stderrors.Is(err, ErrDecryptionFailed))

	wrapped := fmt.Errorf("decode token: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrInvalidCharacter))
	assert.Equal(t, ErrCodeInvalidCharacter, CodeOf(wrapped))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/missing", Err: fs.ErrNotExist}
	err := NewIOError("read", "/missing", cause)

	assert.True(t, stderrors.Is(err, ErrIO))
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))

	var pathErr *fs.PathError
	require.True(t, stderrors.As(err, &pathErr))
	assert.Equal(t, "/missing", pathErr.Path)
	assert.Contains(t, err.Error(), "read /missing")
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", NewBadRequest("bad"), http.StatusBadRequest},
		{"invalid character", NewInvalidCharacter('$', 3), http.StatusBadRequest},
		{"decryption failed", NewDecryptionFailed("padding"), http.StatusUnprocessableEntity},
		{"corrupt", NewCorruptData("gzip", nil), http.StatusUnprocessableEntity},
		{"sentinel", ErrEmptyResult, http.StatusUnprocessableEntity},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 3, ExitCode(NewInvalidCharacter('!', 0)))
	assert.Equal(t, 4, ExitCode(NewDecryptionFailed("x")))
	assert.Equal(t, 5, ExitCode(NewCorruptData("x", nil)))
	assert.Equal(t, 6, ExitCode(NewEmptyResult("x")))
	assert.Equal(t, 7, ExitCode(NewDecodingFailed("x")))
	assert.Equal(t, 8, ExitCode(NewIOError("write", "/x", nil)))
	assert.Equal(t, 1, ExitCode(stderrors.New("other")))
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "CorruptData", ErrCodeCorruptData.String())
	assert.Equal(t, "ErrorCode(999)", ErrorCode(999).String())
}

func TestToJSON(t *testing.T) {
	data := ToJSON(NewDecryptionFailed("invalid padding"))
	assert.JSONEq(t, `{"code":521,"msg":"invalid padding"}`, string(data))

	data = ToJSON(stderrors.New("boom"))
	assert.JSONEq(t, `{"code":500,"msg":"boom"}`, string(data))
}
