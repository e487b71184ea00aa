package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"clinic-automation/internal/config"
	"clinic-automation/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAuthHandler(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/token", NewAuthHandler(cfg).IssueToken)
	return r
}

func testAuthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.OperatorKey = "ops-key"
	cfg.JWT.TokenExpiry = time.Hour
	return cfg
}

func TestNewAuthHandler(t *testing.T) {
	cfg := testAuthConfig()
	handler := NewAuthHandler(cfg)

	assert.NotNil(t, handler)
	assert.Equal(t, cfg, handler.config)
}

func TestIssueToken(t *testing.T) {
	r := setupTestAuthHandler(testAuthConfig())

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"valid key", `{"operator":"front-desk","apiKey":"ops-key"}`, http.StatusOK},
		{"wrong key", `{"operator":"front-desk","apiKey":"nope"}`, http.StatusUnauthorized},
		{"missing operator", `{"apiKey":"ops-key"}`, http.StatusBadRequest},
		{"missing key", `{"operator":"front-desk"}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/auth/token", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestIssueToken_Claims(t *testing.T) {
	cfg := testAuthConfig()
	r := setupTestAuthHandler(cfg)

	w := postJSON(r, "/api/auth/token", `{"operator":"front-desk","apiKey":"ops-key"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success   bool   `json:"success"`
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims := &middleware.Claims{}
	_, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "front-desk", claims.Operator)
	assert.Equal(t, []string{middleware.ScopeLogsRead}, claims.Scopes)
}

func TestIssueToken_Disabled(t *testing.T) {
	noKey := testAuthConfig()
	noKey.JWT.OperatorKey = ""
	noSecret := testAuthConfig()
	noSecret.JWT.Secret = ""

	for name, cfg := range map[string]*config.Config{"nil": nil, "no key": noKey, "no secret": noSecret} {
		t.Run(name, func(t *testing.T) {
			w := postJSON(setupTestAuthHandler(cfg), "/api/auth/token", `{"operator":"a","apiKey":"ops-key"}`)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}
