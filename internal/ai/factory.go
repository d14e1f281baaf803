package ai

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/pestid/internal/config"
	"go.uber.org/zap"
)

// New builds the configured provider wrapped in a Limited.
func New(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		m     Model
		model string
	)

	switch cfg.Provider {
	case config.ProviderGemini, "":
		g, err := NewGemini(ctx, GeminiConfig{
			APIKey:  cfg.APIKey.Value(),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout.Duration(),
		})
		if err != nil {
			return nil, err
		}
		m, model = g, g.Name()
	case config.ProviderOpenAI:
		o, err := NewOpenAI(OpenAIConfig{
			APIKey:  cfg.APIKey.Value(),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout.Duration(),
		})
		if err != nil {
			return nil, err
		}
		m, model = o, o.Name()
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}

	logger.Info("generative model configured",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
		zap.Float64("rate_limit", cfg.RateLimit),
		zap.Int("burst", cfg.Burst),
	)

	return NewLimited(m, cfg.Provider, model, cfg.RateLimit, cfg.Burst), nil
}
