package handlers

import (
	"crypto/subtle"
	"net/http"

	"clinic-automation/internal/config"
	"clinic-automation/pkg/logger"
	"clinic-automation/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenRequest exchanges the operator API key for a bearer token
type TokenRequest struct {
	Operator string `json:"operator"`
	APIKey   string `json:"apiKey"`
}

// AuthHandler issues operator tokens for the protected routes
type AuthHandler struct {
	config *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

// IssueToken returns a JWT carrying the logs:read scope when the API key matches
func (h *AuthHandler) IssueToken(c *gin.Context) {
	if h.config == nil || h.config.JWT.Secret == "" || h.config.JWT.OperatorKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Token issuance is not enabled"})
		return
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to parse token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	if req.Operator == "" || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "operator and apiKey are required"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.config.JWT.OperatorKey)) != 1 {
		logger.Warn("Rejected operator token request", zap.String("operator", req.Operator), zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(req.Operator, []string{middleware.ScopeLogsRead}, h.config)
	if err != nil {
		logger.Error("Failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	logger.Info("Issued operator token", zap.String("operator", req.Operator))
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     token,
		"expiresIn": int(h.config.JWT.TokenExpiry.Seconds()),
	})
}
