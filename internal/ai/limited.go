package ai

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const instrumentationName = "github.com/fyrsmithlabs/pestid/internal/ai"

// Limited wraps a Model with a token-bucket rate limiter and a trace span
// per call. Failed calls are not retried.
type Limited struct {
	next     Model
	provider string
	model    string
	limiter  *rate.Limiter
	tracer   trace.Tracer
}

// NewLimited wraps next. A perSecond of zero disables limiting.
func NewLimited(next Model, provider, model string, perSecond float64, burst int) *Limited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{
		next:     next,
		provider: provider,
		model:    model,
		limiter:  rate.NewLimiter(limit, burst),
		tracer:   otel.Tracer(instrumentationName),
	}
}

// Generate waits for a limiter token then delegates to the wrapped model.
func (l *Limited) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := l.tracer.Start(ctx, "ai.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", l.provider),
		attribute.String("ai.model", l.model),
		attribute.Bool("ai.has_image", req.Image != nil),
		attribute.Int("ai.prompt_length", len(req.Prompt)),
	)

	if err := l.limiter.Wait(ctx); err != nil {
		RequestsTotal.WithLabelValues(l.provider, "rate_limited").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limited")
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	text, err := l.next.Generate(ctx, req)
	RequestDuration.WithLabelValues(l.provider).Observe(time.Since(start).Seconds())

	if err != nil {
		RequestsTotal.WithLabelValues(l.provider, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	RequestsTotal.WithLabelValues(l.provider, "success").Inc()
	span.SetAttributes(attribute.Int("ai.response_length", len(text)))
	return text, nil
}
