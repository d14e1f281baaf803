package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// OpenAI calls an OpenAI-compatible chat completions endpoint with vision
// support (OpenAI, local gateways, Ollama).
type OpenAI struct {
	llm   llms.Model
	model string
}

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewOpenAI creates an OpenAI-compatible provider.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model is required")
	}

	// langchaingo refuses an empty token, keyless local gateways ignore it.
	token := cfg.APIKey
	if token == "" {
		token = "unused"
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(token),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return &OpenAI{llm: llm, model: cfg.Model}, nil
}

// Name returns the model identifier.
func (o *OpenAI) Name() string {
	return o.model
}

// Generate sends a single human message holding the prompt and, when
// present, the image as an image_url part carrying a data URL.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	parts := []llms.ContentPart{llms.TextContent{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, llms.ImageURLContent{URL: dataURL(req.Image)})
	}
	msgs := []llms.MessageContent{{Role: schema.ChatMessageTypeHuman, Parts: parts}}

	var callOpts []llms.CallOption
	if req.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(float64(req.Temperature)))
	}
	if req.TopP > 0 {
		callOpts = append(callOpts, llms.WithTopP(float64(req.TopP)))
	}
	if req.MaxOutputTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxOutputTokens))
	}

	resp, err := o.llm.GenerateContent(ctx, msgs, callOpts...)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

func dataURL(img *Image) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
