package channels

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"clinic-automation/internal/classifier"
)

// TelegramConfig configures the chat bot sender
type TelegramConfig struct {
	Token      string
	APIURL     string
	ParseMode  string
	HTTPClient *http.Client
}

// TelegramSender delivers chat messages through the Telegram Bot API
type TelegramSender struct {
	bot       *tele.Bot
	parseMode tele.ParseMode
}

// chatRecipient addresses a chat by its raw id or @username
type chatRecipient string

func (c chatRecipient) Recipient() string { return string(c) }

// NewTelegramSender builds a bot client without contacting the API
func NewTelegramSender(cfg TelegramConfig) (*TelegramSender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     strings.TrimRight(cfg.APIURL, "/"),
		Client:  defaultClient(cfg.HTTPClient),
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	mode := tele.ModeHTML
	if cfg.ParseMode != "" {
		mode = tele.ParseMode(cfg.ParseMode)
	}
	return &TelegramSender{bot: b, parseMode: mode}, nil
}

// Send posts one message with sendMessage and returns the Telegram message id.
// telebot does not take a context; the HTTP client timeout bounds the call.
func (s *TelegramSender) Send(_ context.Context, recipient, body string) (string, error) {
	msg, err := s.bot.Send(chatRecipient(recipient), body, &tele.SendOptions{ParseMode: s.parseMode})
	if err != nil {
		return "", telegramVendorError(err)
	}
	return strconv.Itoa(msg.ID), nil
}

var telegramCodeSuffix = regexp.MustCompile(`\((\d{3})\)\s*$`)

func telegramVendorError(err error) error {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return &VendorError{
			Vendor:     "telegram",
			Code:       telegramCode(apiErr.Code, apiErr.Description),
			Message:    apiErr.Description,
			HTTPStatus: apiErr.Code,
		}
	}

	// unlisted API errors come back as "telegram: <description> (<code>)"
	msg := err.Error()
	if m := telegramCodeSuffix.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		desc := strings.TrimSpace(strings.TrimPrefix(telegramCodeSuffix.ReplaceAllString(msg, ""), "telegram:"))
		return &VendorError{Vendor: "telegram", Code: telegramCode(code, desc), Message: desc, HTTPStatus: code}
	}
	return err
}

func telegramCode(status int, description string) string {
	desc := strings.ToLower(description)
	switch {
	case status == http.StatusUnauthorized:
		return classifier.CodeChatUnauthorized
	case status == http.StatusForbidden:
		return classifier.CodeChatForbidden
	case strings.Contains(desc, "chat not found"):
		return classifier.CodeChatNotFound
	case status == 0:
		return ""
	default:
		return "telegram_" + strconv.Itoa(status)
	}
}
