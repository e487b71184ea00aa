package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-automation/internal/channels"
	"clinic-automation/internal/config"
	"clinic-automation/internal/content"
	"clinic-automation/internal/db"
	"clinic-automation/internal/models"
	"clinic-automation/internal/services"
	"clinic-automation/internal/templates"
	"clinic-automation/pkg/logger"
	"clinic-automation/pkg/utils"
	"clinic-automation/router"

	"go.uber.org/zap"
)

// outboundTimeout bounds every vendor call so a hung provider cannot hold a
// request forever
const outboundTimeout = 20 * time.Second

// shutdownTimeout lets a request that is inside a vendor call finish and log
// its attempt before the server gives up on it
const shutdownTimeout = outboundTimeout + 5*time.Second

// SetupServer initializes and returns a configured HTTP server and the
// delivery log store behind it. The caller closes the store once the server
// has shut down so that in-flight requests can still write their log entry.
func SetupServer(cfg *config.Config) (*http.Server, io.Closer, error) {
	if cfg == nil {
		return nil, nil, errors.New("configuration is required")
	}

	if cfg.Server.Port <= 0 {
		return nil, nil, errors.New("invalid server port")
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid clinic timezone: %w", err)
	}

	client := &http.Client{Timeout: outboundTimeout}
	senders, err := buildSenders(cfg, client)
	if err != nil {
		return nil, nil, err
	}

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := db.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	deliveryLogger := services.NewDeliveryLogger(store)
	notifications := services.NewNotificationService(
		templates.NewEngine(templates.Options{
			DefaultClinicName: cfg.Clinic.Name,
			DefaultDoctorName: cfg.Clinic.DoctorName,
			ContactPhone:      cfg.Clinic.ContactPhone,
			Location:          location,
		}),
		services.NewDispatchService(senders),
		deliveryLogger,
	)

	deps := router.Dependencies{
		Config:        cfg,
		Notifications: notifications,
		Logs:          deliveryLogger,
		Version:       version,
	}
	generator, err := content.NewGenerator(content.Config{
		APIKey:     cfg.Content.APIKey,
		Model:      cfg.Content.Model,
		BaseURL:    cfg.Content.BaseURL,
		ClinicName: cfg.Clinic.Name,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	})
	switch {
	case err == nil:
		deps.Content = generator
	case errors.Is(err, content.ErrDisabled):
		logger.Info("Content generation disabled", zap.String("openai_api_key", utils.ConfiguredStatus(cfg.Content.APIKey)))
	default:
		store.Close()
		return nil, nil, fmt.Errorf("failed to initialize content generator: %w", err)
	}

	logger.Info("Delivery channels configured",
		zap.Bool("sms", senders[models.ChannelSMS] != nil),
		zap.Bool("chat", senders[models.ChannelChat] != nil),
		zap.String("sms_provider", cfg.SMS.Provider),
	)

	// Create server with security timeouts. The write timeout leaves room for
	// a slow vendor call inside the request.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router.NewRouter(deps),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, store, nil
}

// buildSenders creates a sender for every channel that has credentials
func buildSenders(cfg *config.Config, client *http.Client) (map[models.Channel]channels.Sender, error) {
	senders := make(map[models.Channel]channels.Sender)

	if cfg.SMSEnabled() {
		switch cfg.SMS.Provider {
		case config.ProviderGateway:
			sender, err := channels.NewGatewaySender(channels.GatewayConfig{
				URL:        cfg.SMS.GatewayURL,
				APIKey:     cfg.SMS.GatewayAPIKey,
				SenderID:   cfg.SMS.GatewaySenderID,
				HTTPClient: client,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to configure SMS gateway: %w", err)
			}
			senders[models.ChannelSMS] = sender
		default:
			sender, err := channels.NewTwilioSender(channels.TwilioConfig{
				BaseURL:             cfg.SMS.BaseURL,
				AccountSID:          cfg.SMS.AccountSID,
				APIKey:              cfg.SMS.APIKey,
				APISecret:           cfg.SMS.APISecret,
				AuthToken:           cfg.SMS.AuthToken,
				MessagingServiceSID: cfg.SMS.MessagingServiceSID,
				FromNumber:          cfg.SMS.FromNumber,
				HTTPClient:          client,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to configure Twilio: %w", err)
			}
			logger.Info("Twilio configured",
				zap.String("auth", sender.AuthMethod()),
				zap.String("account_sid", utils.MaskRecipient(cfg.SMS.AccountSID)),
			)
			senders[models.ChannelSMS] = sender
		}
	}

	if cfg.ChatEnabled() {
		sender, err := channels.NewTelegramSender(channels.TelegramConfig{
			Token:      cfg.Chat.Token,
			APIURL:     cfg.Chat.APIURL,
			HTTPClient: client,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure chat bot: %w", err)
		}
		senders[models.ChannelChat] = sender
	}

	return senders, nil
}

// StartServer starts the HTTP server and handles graceful shutdown
func StartServer(srv *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return StartServerWithContext(ctx, srv)
}

// StartServerWithContext starts the HTTP server with a context for shutdown control
func StartServerWithContext(ctx context.Context, srv *http.Server) error {
	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	logger.Info("Shutting down server...")

	// Create a timeout context for shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
