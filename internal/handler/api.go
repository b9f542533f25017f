package handler

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tokencrypt-go/internal/auth"
	"github.com/tokencrypt-go/internal/cache"
	"github.com/tokencrypt-go/internal/dao"
	"github.com/tokencrypt-go/internal/encryption"
	"github.com/tokencrypt-go/internal/errors"
	"github.com/tokencrypt-go/internal/trace"
)

// ContextUserKey is the gin context key holding the authenticated username
const ContextUserKey = "username"

const minPasswordLength = 8

// APIHandler handles /api/* routes
type APIHandler struct {
	jwtAuth    *auth.JWTAuth
	pipeline   *encryption.Pipeline
	userDAO    *dao.UserDAO
	historyDAO *dao.HistoryDAO
	cache      *cache.Cache
}

// NewAPIHandler creates a new API handler. c may be nil to disable result caching.
func NewAPIHandler(jwtAuth *auth.JWTAuth, pipeline *encryption.Pipeline, userDAO *dao.UserDAO, historyDAO *dao.HistoryDAO, c *cache.Cache) *APIHandler {
	if pipeline == nil {
		pipeline = encryption.DefaultPipeline()
	}
	return &APIHandler{
		jwtAuth:    jwtAuth,
		pipeline:   pipeline,
		userDAO:    userDAO,
		historyDAO: historyDAO,
		cache:      c,
	}
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// EncryptRequest is the body of POST /api/encrypt
type EncryptRequest struct {
	Text     string `json:"text"`
	Password string `json:"password"`
}

// EncryptResponse carries a generated token
type EncryptResponse struct {
	Token  string `json:"token"`
	Length int    `json:"length"`
}

// DecryptRequest is the body of POST /api/decrypt
type DecryptRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// DecryptResponse carries recovered plaintext
type DecryptResponse struct {
	Text string `json:"text"`
}

// PasswordRequest is the body of POST /api/password
type PasswordRequest struct {
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Login handles user authentication
func (h *APIHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errors.NewBadRequestWithCause("invalid request", err))
		return
	}

	if err := h.userDAO.Validate(req.Username, req.Password); err != nil {
		if stderrors.Is(err, dao.ErrUserNotFound) || stderrors.Is(err, dao.ErrInvalidPassword) {
			RespondError(c, errors.NewUnauthorized("invalid username or password"))
			return
		}
		RespondError(c, errors.NewInternalWithCause("failed to validate user", err))
		return
	}

	token, err := h.jwtAuth.GenerateToken(req.Username)
	if err != nil {
		RespondError(c, errors.NewInternalWithCause("failed to issue token", err))
		return
	}

	log.Info().Str("user", req.Username).Msg(trace.LogPrefix(c.Request.Context(), "login") + " user logged in")
	RespondSuccess(c, gin.H{"token": token})
}

// UpdatePassword changes the authenticated user's password
func (h *APIHandler) UpdatePassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errors.NewBadRequestWithCause("invalid request", err))
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		RespondError(c, errors.NewBadRequest("password too short, at least 8 characters"))
		return
	}

	username := c.GetString(ContextUserKey)
	if err := h.userDAO.Validate(username, req.Password); err != nil {
		RespondError(c, errors.NewUnauthorized("password error"))
		return
	}
	if err := h.userDAO.UpdatePassword(username, req.NewPassword); err != nil {
		RespondError(c, errors.NewInternalWithCause("failed to update password", err))
		return
	}

	RespondSuccessMsg(c, "update success")
}

// Encrypt turns text into a token
func (h *APIHandler) Encrypt(c *gin.Context) {
	var req EncryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errors.NewBadRequestWithCause("invalid request", err))
		return
	}
	ctx := c.Request.Context()
	token, cached, err := h.encrypt(req.Text, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.record(ctx, dao.HistoryRecord{
		Op:          dao.OpEncrypt,
		PlainSize:   len(req.Text),
		TokenLength: len(token),
		Compression: h.pipeline.Compression(),
	})
	log.Debug().Bool("cached", cached).Int("token_length", len(token)).
		Msg(trace.LogPrefix(ctx, "encrypt") + " token generated")

	RespondSuccess(c, EncryptResponse{Token: token, Length: len(token)})
}

func (h *APIHandler) encrypt(text, password string) (string, bool, error) {
	if h.cache == nil {
		token, err := h.pipeline.EncryptText(text, password)
		return token, false, err
	}

	key := cache.Key(h.pipeline.Compression(), password, text)
	v, cached, err := h.cache.GetOrLoad(key, func() (interface{}, error) {
		return h.pipeline.EncryptText(text, password)
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), cached, nil
}

// Decrypt turns a token back into text
func (h *APIHandler) Decrypt(c *gin.Context) {
	var req DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errors.NewBadRequestWithCause("invalid request", err))
		return
	}

	ctx := c.Request.Context()
	token := strings.TrimSpace(req.Token)
	text, err := h.pipeline.DecryptText(token, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.record(ctx, dao.HistoryRecord{
		Op:          dao.OpDecrypt,
		PlainSize:   len(text),
		TokenLength: len(token),
		Compression: h.pipeline.Compression(),
	})

	RespondSuccess(c, DecryptResponse{Text: text})
}

// History lists recent operations, newest first
func (h *APIHandler) History(c *gin.Context) {
	limit := dao.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(c, errors.NewBadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.historyDAO.Recent(limit)
	if err != nil {
		RespondError(c, errors.NewInternalWithCause("failed to read history", err))
		return
	}
	RespondSuccess(c, records)
}

// record appends to history; failures are logged and never fail the request
func (h *APIHandler) record(ctx context.Context, rec dao.HistoryRecord) {
	if h.historyDAO == nil {
		return
	}
	if _, err := h.historyDAO.Add(ctx, rec); err != nil {
		log.Warn().Err(err).Msg(trace.LogPrefix(ctx, "history") + " failed to record operation")
	}
}
