package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"uniride/internal/auth"
	redisstore "uniride/internal/redis"
	"uniride/internal/service"
)

// AuthHandler handles login and token endpoints.
type AuthHandler struct {
	accountService *service.AccountService
	tokens         *auth.TokenManager
	cacheStore     *redisstore.CacheStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService *service.AccountService, tokens *auth.TokenManager, cacheStore *redisstore.CacheStore) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		tokens:         tokens,
		cacheStore:     cacheStore,
	}
}

// LoginRequest is the HTTP request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "invalid_request"})
		return
	}

	session, err := h.accountService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SessionResponse{
		User:      toUserPayload(session.User),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// RefreshRequest is the HTTP request body for refreshing a token.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// RefreshResponse is the HTTP response for refreshing a token.
type RefreshResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Refresh handles POST /api/token/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "invalid_request"})
		return
	}

	token, expiresAt, err := h.tokens.Refresh(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token", Code: "unauthorized"})
		return
	}

	respondJSON(c, http.StatusOK, RefreshResponse{Token: token, ExpiresAt: expiresAt.Unix()})
}

// VerifyResponse is the HTTP response for verifying a token.
type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	UID    string `json:"uid,omitempty"`
	Email  string `json:"email,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// Verify handles GET /api/token/verify. Recently verified tokens are answered
// from cache without re-parsing the signature.
func (h *AuthHandler) Verify(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		c.JSON(http.StatusUnauthorized, VerifyResponse{Valid: false})
		return
	}

	ctx := c.Request.Context()
	digest := tokenDigest(tokenString)

	if h.cacheStore != nil {
		if uid, err := h.cacheStore.VerifiedSessionUID(ctx, digest); err == nil && uid != "" {
			respondJSON(c, http.StatusOK, VerifyResponse{Valid: true, UID: uid})
			return
		}
	}

	claims, err := h.tokens.Validate(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, VerifyResponse{Valid: false})
		return
	}

	if h.cacheStore != nil {
		_ = h.cacheStore.MarkSessionVerified(ctx, digest, claims.UID)
	}

	respondJSON(c, http.StatusOK, VerifyResponse{
		Valid:  true,
		UID:    claims.UID,
		Email:  claims.Email,
		UserID: claims.UserID,
	})
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
