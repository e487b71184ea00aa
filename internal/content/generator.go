// Package content generates clinic marketing and patient copy with a hosted
// language model.
package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clinic-automation/internal/metrics"
	"clinic-automation/pkg/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

var (
	ErrDisabled       = errors.New("content generation is not configured")
	ErrInvalidRequest = errors.New("invalid content request")
	ErrEmptyResponse  = errors.New("language model returned no content")
)

const DefaultModel = "gpt-4o-mini"

// Config configures the language model client
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	ClinicName string
	HTTPClient *http.Client
}

// Result is one generated piece of copy
type Result struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Generator produces copy through the chat completions API
type Generator struct {
	client openai.Client
	model  string
	clinic string
}

// NewGenerator creates a generator. It returns ErrDisabled without an API key.
func NewGenerator(cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// one attempt per request, like every other outbound call
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	clinic := cfg.ClinicName
	if clinic == "" {
		clinic = "our clinic"
	}

	return &Generator{
		client: openai.NewClient(opts...),
		model:  model,
		clinic: clinic,
	}, nil
}

// Generate builds the prompt for req.Kind and returns the model's reply
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	p, err := build(g.clinic, req)
	if err != nil {
		metrics.ContentGenerations.WithLabelValues(string(req.Kind), "invalid").Inc()
		return nil, err
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.system),
			openai.UserMessage(p.user),
		},
		MaxTokens:   openai.Int(p.maxTokens),
		Temperature: openai.Float(p.temperature),
	})
	if err != nil {
		metrics.ContentGenerations.WithLabelValues(string(req.Kind), "failed").Inc()
		logger.Error("Content generation failed",
			zap.String("kind", string(req.Kind)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("generate %s: %w", req.Kind, err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		metrics.ContentGenerations.WithLabelValues(string(req.Kind), "failed").Inc()
		return nil, ErrEmptyResponse
	}

	metrics.ContentGenerations.WithLabelValues(string(req.Kind), "ok").Inc()
	logger.Info("Content generated",
		zap.String("kind", string(req.Kind)),
		zap.String("model", g.model),
		zap.Int64("total_tokens", completion.Usage.TotalTokens),
	)

	return &Result{
		Kind:    req.Kind,
		Content: completion.Choices[0].Message.Content,
		Model:   g.model,
	}, nil
}
