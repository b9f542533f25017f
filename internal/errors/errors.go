package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes
type ErrorCode int

const (
	// Client errors (4xx)
	ErrCodeBadRequest   ErrorCode = 400
	ErrCodeUnauthorized ErrorCode = 401
	ErrCodeNotFound     ErrorCode = 404

	// Server errors (5xx)
	ErrCodeInternal   ErrorCode = 500
	ErrCodeEncryption ErrorCode = 510

	// Token pipeline errors
	ErrCodeInvalidCharacter ErrorCode = 520
	ErrCodeDecryptionFailed ErrorCode = 521
	ErrCodeCorruptData      ErrorCode = 522
	ErrCodeEmptyResult      ErrorCode = 523
	ErrCodeDecodingFailed   ErrorCode = 524
	ErrCodeIO               ErrorCode = 530
)

var codeNames = map[ErrorCode]string{
	ErrCodeBadRequest:       "BadRequest",
	ErrCodeUnauthorized:     "Unauthorized",
	ErrCodeNotFound:         "NotFound",
	ErrCodeInternal:         "Internal",
	ErrCodeEncryption:       "Encryption",
	ErrCodeInvalidCharacter: "InvalidCharacter",
	ErrCodeDecryptionFailed: "DecryptionFailed",
	ErrCodeCorruptData:      "CorruptData",
	ErrCodeEmptyResult:      "EmptyResult",
	ErrCodeDecodingFailed:   "DecodingFailed",
	ErrCodeIO:               "IO",
}

// String returns the kind name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

var httpStatus = map[ErrorCode]int{
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeEncryption:       http.StatusInternalServerError,
	ErrCodeInvalidCharacter: http.StatusBadRequest,
	ErrCodeDecryptionFailed: http.StatusUnprocessableEntity,
	ErrCodeCorruptData:      http.StatusUnprocessableEntity,
	ErrCodeEmptyResult:      http.StatusUnprocessableEntity,
	ErrCodeDecodingFailed:   http.StatusUnprocessableEntity,
	ErrCodeIO:               http.StatusInternalServerError,
}

var exitCodes = map[ErrorCode]int{
	ErrCodeBadRequest:       2,
	ErrCodeInvalidCharacter: 3,
	ErrCodeDecryptionFailed: 4,
	ErrCodeCorruptData:      5,
	ErrCodeEmptyResult:      6,
	ErrCodeDecodingFailed:   7,
	ErrCodeIO:               8,
}

// Sentinels for errors.Is; they match any AppError carrying the same code.
var (
	ErrInvalidCharacter = &AppError{Code: ErrCodeInvalidCharacter, Message: "invalid character in token"}
	ErrDecryptionFailed = &AppError{Code: ErrCodeDecryptionFailed, Message: "decryption failed"}
	ErrCorruptData      = &AppError{Code: ErrCodeCorruptData, Message: "corrupt data"}
	ErrEmptyResult      = &AppError{Code: ErrCodeEmptyResult, Message: "empty result"}
	ErrDecodingFailed   = &AppError{Code: ErrCodeDecodingFailed, Message: "decoding failed"}
	ErrIO               = &AppError{Code: ErrCodeIO, Message: "i/o error"}
	ErrBadRequest       = &AppError{Code: ErrCodeBadRequest, Message: "bad request"}
	ErrUnauthorized     = &AppError{Code: ErrCodeUnauthorized, Message: "unauthorized"}
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an error of the given kind
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: statusFor(code),
	}
}

// Wrap creates an error of the given kind with an underlying cause
func Wrap(code ErrorCode, message string, cause error) *AppError {
	e := New(code, message)
	e.Cause = cause
	return e
}

func statusFor(code ErrorCode) int {
	if s, ok := httpStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// NewBadRequest creates a bad request error
func NewBadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message)
}

// NewBadRequestWithCause creates a bad request error with cause
func NewBadRequestWithCause(message string, cause error) *AppError {
	return Wrap(ErrCodeBadRequest, message, cause)
}

// NewUnauthorized creates an unauthorized error
func NewUnauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// NewNotFound creates a not found error
func NewNotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// NewInternal creates an internal server error
func NewInternal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// NewInternalWithCause creates an internal server error with cause
func NewInternalWithCause(message string, cause error) *AppError {
	return Wrap(ErrCodeInternal, message, cause)
}

// NewEncryptionErrorWithCause creates an encryption error with cause
func NewEncryptionErrorWithCause(message string, cause error) *AppError {
	return Wrap(ErrCodeEncryption, message, cause)
}

// NewInvalidCharacter reports a token character outside the alphabet
func NewInvalidCharacter(ch rune, pos int) *AppError {
	return New(ErrCodeInvalidCharacter, fmt.Sprintf("invalid character %q at position %d", ch, pos))
}

// NewDecryptionFailed creates a decryption error
func NewDecryptionFailed(message string) *AppError {
	return New(ErrCodeDecryptionFailed, message)
}

// NewDecryptionFailedWithCause creates a decryption error with cause
func NewDecryptionFailedWithCause(message string, cause error) *AppError {
	return Wrap(ErrCodeDecryptionFailed, message, cause)
}

// NewCorruptData creates a decompression integrity error
func NewCorruptData(message string, cause error) *AppError {
	return Wrap(ErrCodeCorruptData, message, cause)
}

// NewEmptyResult creates an empty result error
func NewEmptyResult(message string) *AppError {
	return New(ErrCodeEmptyResult, message)
}

// NewDecodingFailed creates a text decoding error
func NewDecodingFailed(message string) *AppError {
	return New(ErrCodeDecodingFailed, message)
}

// NewIOError wraps a file system error
func NewIOError(op, path string, cause error) *AppError {
	return Wrap(ErrCodeIO, fmt.Sprintf("%s %s", op, path), cause)
}

// CodeOf returns the code of the first AppError in err's chain, or ErrCodeInternal
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// ExitCode maps an error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if c, ok := exitCodes[CodeOf(err)]; ok {
		return c
	}
	return 1
}

// ToHTTPStatus converts an error to HTTP status code
func ToHTTPStatus(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.HTTPStatus != 0 {
			return appErr.HTTPStatus
		}
		return statusFor(appErr.Code)
	}
	return http.StatusInternalServerError
}

// ToJSON converts an error to JSON bytes
func ToJSON(err error) []byte {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		data, _ := json.Marshal(map[string]interface{}{
			"code": appErr.Code,
			"msg":  appErr.Error(),
		})
		return data
	}
	data, _ := json.Marshal(map[string]interface{}{
		"code": ErrCodeInternal,
		"msg":  err.Error(),
	})
	return data
}
