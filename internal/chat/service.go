package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fyrsmithlabs/pestid/internal/ai"
	"github.com/fyrsmithlabs/pestid/internal/secrets"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/pestid/internal/chat"

// Generation parameters for chat replies.
const (
	Temperature     = 0.7
	MaxOutputTokens = 1024
)

// Service answers chat requests with a model.
type Service struct {
	model    ai.Model
	scrubber secrets.Scrubber
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewService creates a chat service.
func NewService(model ai.Model, scrubber secrets.Scrubber, logger *zap.Logger) (*Service, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if scrubber == nil {
		scrubber = secrets.NoopScrubber{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		model:    model,
		scrubber: scrubber,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
	}, nil
}

// Reply answers req. Model failures are logged and turned into the
// fallback reply; only blank input returns an error.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		RepliesTotal.WithLabelValues("empty").Inc()
		return Reply{}, ErrEmptyMessage
	}

	ctx, span := s.tracer.Start(ctx, "chat.reply")
	defer span.End()

	message = s.scrub(message)
	history := make([]Message, len(req.History))
	for i, m := range req.History {
		history[i] = m
		if m.IsUser {
			history[i].Text = s.scrub(m.Text)
		}
	}

	span.SetAttributes(
		attribute.Int("chat.history", len(history)),
		attribute.Int("chat.message_length", len(message)),
	)
	if req.Location != nil {
		span.SetAttributes(attribute.String("location.country", req.Location.Country))
	}

	start := time.Now()
	text, err := s.model.Generate(ctx, ai.Request{
		Prompt:          BuildPrompt(message, history, req.Location),
		Temperature:     Temperature,
		MaxOutputTokens: MaxOutputTokens,
	})
	ReplyDuration.Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = ai.ErrEmptyResponse
	}
	if err != nil {
		RepliesTotal.WithLabelValues("fallback").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		s.logger.Error("chat model call failed", zap.Error(err))
		return Reply{Reply: FallbackReply, Fallback: true}, nil
	}

	RepliesTotal.WithLabelValues("success").Inc()
	return Reply{Reply: strings.TrimSpace(text)}, nil
}

func (s *Service) scrub(text string) string {
	res := s.scrubber.Scrub(text)
	if res.HasFindings() {
		s.logger.Warn("redacted secrets from chat message", zap.Strings("rules", res.RuleIDs()))
	}
	return res.Scrubbed
}
