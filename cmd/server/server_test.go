package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"clinic-automation/internal/config"
	"clinic-automation/internal/db"
	"clinic-automation/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.Port = 8080
	cfg.Database.DSN = filepath.Join(t.TempDir(), "clinic.db")
	cfg.Chat.Token = "123456:test-token"
	return cfg
}

func TestSetupServer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Test with valid configuration
	cfg := testConfig(t)
	srv, store, err := SetupServer(cfg)
	require.NoError(t, err)
	require.NotNil(t, srv)
	assert.Equal(t, ":8080", srv.Addr)
	srv.Close()
	assert.NoError(t, store.Close())

	// Test with invalid database configuration
	cfg = testConfig(t)
	cfg.Database.DSN = filepath.Join(t.TempDir(), "missing", "clinic.db")
	srv, _, err = SetupServer(cfg)
	assert.Error(t, err)
	assert.Nil(t, srv)

	// Test with empty configuration
	srv, _, err = SetupServer(nil)
	assert.Error(t, err)
	assert.Nil(t, srv)

	// Test with invalid port
	cfg = testConfig(t)
	cfg.Server.Port = -1
	srv, _, err = SetupServer(cfg)
	assert.Error(t, err)
	assert.Nil(t, srv)

	// Test with an unknown time zone
	cfg = testConfig(t)
	cfg.Clinic.Timezone = "Mars/Olympus"
	srv, _, err = SetupServer(cfg)
	assert.Error(t, err)
	assert.Nil(t, srv)

	// Test with partial Twilio credentials
	cfg = testConfig(t)
	cfg.SMS.AccountSID = "AC123"
	srv, _, err = SetupServer(cfg)
	assert.Error(t, err)
	assert.Nil(t, srv)
}

func TestSetupServer_ServesAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv, store, err := SetupServer(testConfig(t))
	require.NoError(t, err)
	defer store.Close()
	defer srv.Close()

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, version, response["version"])

	// no language model key configured
	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/content/generate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func waitForServer(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server did not start")
}

func TestShutdownKeepsInFlightDeliveryLog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	arrived := make(chan struct{})
	release := make(chan struct{})
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":"SM-SHUTDOWN"}}`))
	}))
	t.Cleanup(gateway.Close)

	cfg := testConfig(t)
	cfg.Server.Port = freePort(t)
	cfg.SMS.Provider = config.ProviderGateway
	cfg.SMS.GatewayURL = gateway.URL
	cfg.SMS.GatewayAPIKey = "key"

	srv, store, err := SetupServer(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- StartServerWithContext(ctx, srv)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	waitForServer(t, baseURL)

	status := make(chan int, 1)
	go func() {
		resp, err := http.Post(baseURL+"/api/sms/send", "application/json",
			strings.NewReader(`{"phone":"+919963721999","message":"Your reports are ready"}`))
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	select {
	case <-arrived:
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("request never reached the gateway")
	}

	// begin shutdown while the vendor call is still blocked
	cancel()
	time.Sleep(100 * time.Millisecond)
	close(release)

	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Server didn't shut down within timeout")
	}
	assert.Equal(t, http.StatusOK, <-status)
	require.NoError(t, store.Close())

	reopened, err := db.NewDatabase(cfg.Database.DSN)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.ListDeliveryLogs(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SM-SHUTDOWN", entries[0].ExternalMessageID)
}

func TestBuildSenders(t *testing.T) {
	client := &http.Client{Timeout: time.Second}

	tests := []struct {
		name    string
		modify  func(*config.Config)
		sms     bool
		chat    bool
		wantErr bool
	}{
		{
			name:   "nothing configured",
			modify: func(c *config.Config) {},
		},
		{
			name: "twilio with API key",
			modify: func(c *config.Config) {
				c.SMS.AccountSID = "AC123"
				c.SMS.APIKey = "SK123"
				c.SMS.APISecret = "secret"
				c.SMS.MessagingServiceSID = "MG123"
			},
			sms: true,
		},
		{
			name: "twilio missing sender",
			modify: func(c *config.Config) {
				c.SMS.AccountSID = "AC123"
				c.SMS.AuthToken = "token"
			},
			wantErr: true,
		},
		{
			name: "gateway",
			modify: func(c *config.Config) {
				c.SMS.Provider = config.ProviderGateway
				c.SMS.GatewayURL = "http://gateway.local/send"
			},
			sms: true,
		},
		{
			name: "gateway without URL",
			modify: func(c *config.Config) {
				c.SMS.Provider = config.ProviderGateway
				c.SMS.GatewayAPIKey = "key"
			},
			wantErr: true,
		},
		{
			name:   "chat bot",
			modify: func(c *config.Config) { c.Chat.Token = "123456:test-token" },
			chat:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)

			senders, err := buildSenders(cfg, client)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sms, senders[models.ChannelSMS] != nil)
			assert.Equal(t, tt.chat, senders[models.ChannelChat] != nil)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":{"port":9090},"clinic":{"name":"Sunrise Clinic"}}`), 0600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
	t.Setenv("CLINIC_NAME", "Env Clinic")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Env Clinic", cfg.Clinic.Name)
	assert.Equal(t, "Dr. Sharma", cfg.Clinic.DoctorName)

	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestStartServer(t *testing.T) {
	// Create a test server
	srv := &http.Server{
		Addr:    ":0", // Use port 0 to let the OS assign a random port
		Handler: gin.New(),
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- StartServer(srv)
	}()

	// Wait a bit for the server to start
	time.Sleep(100 * time.Millisecond)

	// Send interrupt signal to trigger shutdown
	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGINT))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Server didn't shut down within timeout")
	}
}

func TestStartServerWithContext(t *testing.T) {
	// Create a test server
	srv := &http.Server{
		Addr:    ":0", // Use port 0 to let the OS assign a random port
		Handler: gin.New(),
	}

	// Create a context with cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		err := StartServerWithContext(ctx, srv)
		errChan <- err
	}()

	// Wait a bit for the server to start
	time.Sleep(100 * time.Millisecond)

	// Cancel the context to trigger shutdown
	cancel()

	// Wait for server to shut down and check error
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Server didn't shut down within timeout")
	}
}
