package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"clinic-automation/internal/channels"
	"clinic-automation/internal/config"
	"clinic-automation/internal/db"
	"clinic-automation/internal/models"
	"clinic-automation/internal/services"
	"clinic-automation/internal/templates"
	"clinic-automation/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router      *Router
	store       *db.Database
	gatewayHits *int32
	cfg         *config.Config
}

// setupTestEnv wires the real services to an SMS gateway stub and a temp
// SQLite delivery log
func setupTestEnv(t *testing.T, gatewayResponse string, modify func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var hits int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(gatewayResponse))
	}))
	t.Cleanup(gateway.Close)

	cfg := config.DefaultConfig()
	cfg.SMS.Provider = config.ProviderGateway
	cfg.SMS.GatewayURL = gateway.URL
	cfg.SMS.GatewayAPIKey = "key"
	if modify != nil {
		modify(cfg)
	}

	store, err := db.NewDatabase(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sms, err := channels.NewGatewaySender(channels.GatewayConfig{URL: cfg.SMS.GatewayURL, APIKey: cfg.SMS.GatewayAPIKey})
	require.NoError(t, err)

	logger := services.NewDeliveryLogger(store)
	notifications := services.NewNotificationService(
		templates.NewEngine(templates.Options{DefaultClinicName: cfg.Clinic.Name, ContactPhone: "+919963721999"}),
		services.NewDispatchService(map[models.Channel]channels.Sender{models.ChannelSMS: sms}),
		logger,
	)

	return &testEnv{
		router: NewRouter(Dependencies{
			Config:        cfg,
			Notifications: notifications,
			Logs:          logger,
			Version:       "test",
		}),
		store:       store,
		gatewayHits: &hits,
		cfg:         cfg,
	}
}

func (e *testEnv) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) logCount(t *testing.T) int {
	entries, err := e.store.ListDeliveryLogs(context.Background(), 100, 0)
	require.NoError(t, err)
	return len(entries)
}

func TestSMSSendEndToEnd(t *testing.T) {
	env := setupTestEnv(t, `{"ok":true,"result":{"message_id":"X"}}`, nil)

	w := env.do(http.MethodPost, "/api/sms/send", `{"phone":"+919963721999","message":"Your reports are ready"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "X", resp["messageId"])
	assert.Equal(t, "sms", resp["channel"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	entries, err := env.store.ListDeliveryLogs(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "X", entries[0].ExternalMessageID)
	assert.Equal(t, models.StatusSent, entries[0].Status)
	assert.Contains(t, entries[0].Body, "Your reports are ready")
}

func TestSMSSendInvalidPhone(t *testing.T) {
	env := setupTestEnv(t, `{"ok":true,"result":{"message_id":"X"}}`, nil)

	w := env.do(http.MethodPost, "/api/sms/send", `{"phone":"9963721999","message":"hi"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid phone number format")
	assert.Equal(t, int32(0), atomic.LoadInt32(env.gatewayHits))
	assert.Equal(t, 1, env.logCount(t))
}

func TestSMSSendVendorFailure(t *testing.T) {
	env := setupTestEnv(t, `{"ok":false,"error_code":20003,"description":"Authenticate"}`, nil)

	w := env.do(http.MethodPost, "/api/sms/send", `{"phone":"+919963721999","message":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "20003", resp["code"])
	assert.Contains(t, resp["help"], "credentials")
	assert.Equal(t, 1, env.logCount(t))
}

func TestIdenticalRequestsSendTwice(t *testing.T) {
	env := setupTestEnv(t, `{"ok":true,"result":{"message_id":7}}`, nil)

	body := `{"messageType":"appointment","patientName":"Rajesh","phone":"+919963721999"}`
	for i := 0; i < 2; i++ {
		w := env.do(http.MethodPost, "/api/notifications", body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"messageId":"7"`)
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(env.gatewayHits))
	assert.Equal(t, 2, env.logCount(t))
}

func TestLogWriteFailureKeepsSuccess(t *testing.T) {
	env := setupTestEnv(t, `{"ok":true,"result":{"message_id":"X"}}`, nil)
	require.NoError(t, env.store.Close())

	w := env.do(http.MethodPost, "/api/sms/send", `{"phone":"+919963721999","message":"hi"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestChatChannelNotConfigured(t *testing.T) {
	env := setupTestEnv(t, `{"ok":true,"result":{"message_id":"X"}}`, nil)

	w := env.do(http.MethodPost, "/api/telegram-send", `{"chatId":"42","message":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "channel_unavailable")
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t, `{}`, nil)

	w := env.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, "test", response["version"])
	assert.NotEmpty(t, response["time"])
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestMetrics(t *testing.T) {
	env := setupTestEnv(t, `{"ok":true,"result":{"message_id":"X"}}`, nil)
	env.do(http.MethodPost, "/api/sms/send", `{"phone":"+919963721999","message":"hi"}`)

	w := env.do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "clinic_dispatch_total")
}

func TestNotFound(t *testing.T) {
	env := setupTestEnv(t, `{}`, nil)

	w := env.do(http.MethodGet, "/api/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Not found"}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t, `{}`, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/sms/send"},
		{http.MethodDelete, "/api/notifications"},
		{http.MethodPost, "/health"},
		{http.MethodPost, "/api/complete-automation"},
		{http.MethodPost, "/api/logs"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(tt.method, tt.path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Contains(t, w.Body.String(), "Method not allowed")
		})
	}
}

func TestContentDisabled(t *testing.T) {
	env := setupTestEnv(t, `{}`, nil)

	w := env.do(http.MethodPost, "/api/content/generate", `{"kind":"health_tip"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogsRoute(t *testing.T) {
	t.Run("open without secret", func(t *testing.T) {
		env := setupTestEnv(t, `{"ok":true,"result":{"message_id":"X"}}`, nil)
		env.do(http.MethodPost, "/api/sms/send", `{"phone":"+919963721999","message":"hi"}`)

		w := env.do(http.MethodGet, "/api/logs?limit=10", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)
	})

	t.Run("protected with secret", func(t *testing.T) {
		env := setupTestEnv(t, `{}`, func(c *config.Config) {
			c.JWT.Secret = "s3cret"
			c.JWT.TokenExpiry = time.Hour
		})

		w := env.do(http.MethodGet, "/api/logs", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		token, err := middleware.GenerateToken("dashboard", []string{middleware.ScopeLogsRead}, env.cfg)
		require.NoError(t, err)
		w = env.do(http.MethodGet, "/api/logs", "", "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)

		token, err = middleware.GenerateToken("dashboard", nil, env.cfg)
		require.NoError(t, err)
		w = env.do(http.MethodGet, "/api/logs", "", "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("token from operator key", func(t *testing.T) {
		env := setupTestEnv(t, `{}`, func(c *config.Config) {
			c.JWT.Secret = "s3cret"
			c.JWT.OperatorKey = "ops-key"
			c.JWT.TokenExpiry = time.Hour
		})

		w := env.do(http.MethodPost, "/api/auth/token", `{"operator":"dashboard","apiKey":"ops-key"}`)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		w = env.do(http.MethodGet, "/api/logs", "", "Authorization", "Bearer "+resp.Token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestBodySizeLimit(t *testing.T) {
	env := setupTestEnv(t, `{"ok":true,"result":{"message_id":"X"}}`, nil)

	big := `{"phone":"+919963721999","message":"` + strings.Repeat("a", maxRequestBody) + `"}`
	w := env.do(http.MethodPost, "/api/sms/send", big)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(env.gatewayHits))
}

func TestForceHTTPS(t *testing.T) {
	env := setupTestEnv(t, `{}`, func(c *config.Config) { c.Server.ForceHTTPS = true })

	w := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusPermanentRedirect, w.Code)
}

func TestNewRouter(t *testing.T) {
	assert.Panics(t, func() { NewRouter(Dependencies{}) })
	assert.Panics(t, func() { NewRouter(Dependencies{Config: config.DefaultConfig()}) })
}
