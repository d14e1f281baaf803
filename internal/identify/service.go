package identify

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/pestid/internal/ai"
	"github.com/fyrsmithlabs/pestid/internal/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/pestid/internal/identify"

// Generation parameters for identification requests.
const (
	Temperature     = 0.4
	TopP            = 0.8
	MaxOutputTokens = 1024
)

// Options carries per-request context for an identification.
type Options struct {
	Country string
}

// CompletedEvent is published after a successful identification.
type CompletedEvent struct {
	Type        Kind        `json:"type"`
	Name        string      `json:"name"`
	Confidence  float64     `json:"confidence"`
	ThreatLevel ThreatLevel `json:"threatLevel"`
	Country     string      `json:"country,omitempty"`
	ImageFormat string      `json:"imageFormat"`
}

// Service identifies pests and diseases in images.
type Service struct {
	model     ai.Model
	publisher events.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewService creates an identification service.
func NewService(model ai.Model, publisher events.Publisher, logger *zap.Logger) (*Service, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		model:     model,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
	}, nil
}

// Identify makes exactly one model call for img and parses the reply.
func (s *Service) Identify(ctx context.Context, img Image, opts Options) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "identify.image")
	defer span.End()

	span.SetAttributes(
		attribute.String("image.format", img.Format),
		attribute.Int("image.bytes", len(img.Data)),
		attribute.String("location.country", opts.Country),
	)

	text, err := s.model.Generate(ctx, ai.Request{
		Prompt:          BuildPrompt(PromptOptions{Country: opts.Country}),
		Image:           img.AI(),
		Temperature:     Temperature,
		TopP:            TopP,
		MaxOutputTokens: MaxOutputTokens,
	})
	if errors.Is(err, ai.ErrEmptyResponse) {
		// An empty reply is an unusable answer, not a transport failure.
		text, err = "", nil
	}
	if err != nil {
		IdentificationsTotal.WithLabelValues("model_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		s.logger.Error("identification model call failed", zap.Error(err))
		return nil, fmt.Errorf("generate identification: %w", err)
	}

	result, err := ParseResponse(text)
	switch {
	case errors.Is(err, ErrNoDiseaseFound):
		IdentificationsTotal.WithLabelValues("no_detection").Inc()
		span.SetAttributes(attribute.Bool("identify.found", false))
		s.logger.Info("no pest or disease detected", zap.String("image.format", img.Format))
		return nil, err
	case err != nil:
		IdentificationsTotal.WithLabelValues("parse_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable response")
		s.logger.Warn("identification response could not be parsed",
			zap.Error(err),
			zap.Int("response_length", len(text)),
		)
		s.logger.Debug("raw identification response", zap.String("response", text))
		return nil, err
	}

	IdentificationsTotal.WithLabelValues("success").Inc()
	DetectionsTotal.WithLabelValues(detectionLabels(result)...).Inc()
	Confidence.Observe(result.Confidence)

	span.SetAttributes(
		attribute.Bool("identify.found", true),
		attribute.String("identify.name", result.Name),
		attribute.Float64("identify.confidence", result.Confidence),
	)

	s.logger.Info("identification completed",
		zap.String("type", string(result.Type)),
		zap.String("name", result.Name),
		zap.Float64("confidence", result.Confidence),
		zap.String("threat_level", string(result.ThreatLevel)),
	)

	if err := s.publisher.Publish(ctx, events.TypeIdentificationCompleted, CompletedEvent{
		Type:        result.Type,
		Name:        result.Name,
		Confidence:  result.Confidence,
		ThreatLevel: result.ThreatLevel,
		Country:     opts.Country,
		ImageFormat: img.Format,
	}); err != nil {
		s.logger.Warn("failed to publish identification event", zap.Error(err))
	}

	return result, nil
}

// detectionLabels bounds the metric label set: model-reported values
// outside the known kinds and levels are counted as "other".
func detectionLabels(r *Result) []string {
	kind, level := string(r.Type), string(r.ThreatLevel)
	if r.Type != KindPest && r.Type != KindDisease {
		kind = "other"
	}
	if !r.ThreatLevel.Valid() {
		level = "other"
	}
	return []string{kind, level}
}
