package tracking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fyrsmithlabs/pestid/internal/events"
	"github.com/fyrsmithlabs/pestid/internal/secrets"
	"go.uber.org/zap"
)

// ServiceConfig configures the tracking service.
type ServiceConfig struct {
	// FallbackToSamples serves Samples() on List/Search and a mock ID on
	// Create when the store fails.
	FallbackToSamples bool
}

// CreatedEvent is published after an entry is stored.
type CreatedEvent struct {
	ID       string    `json:"id"`
	PestName string    `json:"pestName"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}

// Service validates entries and fronts a Store.
type Service struct {
	store     Store
	scrubber  secrets.Scrubber
	publisher events.Publisher
	logger    *zap.Logger
	cfg       ServiceConfig
	now       func() time.Time
}

// NewService creates a tracking service.
func NewService(store Store, scrubber secrets.Scrubber, publisher events.Publisher, logger *zap.Logger, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if scrubber == nil {
		scrubber = secrets.NoopScrubber{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		scrubber:  scrubber,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Create validates e, scrubs its free-text fields and stores it.
func (s *Service) Create(ctx context.Context, e Entry) (string, error) {
	e.PestName = strings.TrimSpace(e.PestName)
	e.Location = strings.TrimSpace(e.Location)
	e.AffectedPlants = strings.TrimSpace(e.AffectedPlants)
	e.TreatmentPlan = strings.TrimSpace(e.TreatmentPlan)
	e.Notes = strings.TrimSpace(e.Notes)

	if e.PestName == "" {
		OperationsTotal.WithLabelValues("create", "invalid").Inc()
		return "", fmt.Errorf("%w: pestName is required", ErrInvalidEntry)
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}

	e.TreatmentPlan = s.scrub(e.TreatmentPlan, "treatmentPlan")
	e.Notes = s.scrub(e.Notes, "notes")

	id, err := s.store.Add(ctx, e)
	if err != nil {
		if s.cfg.FallbackToSamples {
			OperationsTotal.WithLabelValues("create", "fallback").Inc()
			mock := "mock-" + strconv.FormatInt(s.now().UnixMilli(), 10)
			s.logger.Warn("tracking store unavailable, returning mock id", zap.Error(err), zap.String("id", mock))
			return mock, nil
		}
		OperationsTotal.WithLabelValues("create", "error").Inc()
		return "", fmt.Errorf("add tracking entry: %w", err)
	}

	OperationsTotal.WithLabelValues("create", "success").Inc()
	s.logger.Info("tracking entry created", zap.String("id", id), zap.String("pest", e.PestName))

	if err := s.publisher.Publish(ctx, events.TypeTrackingCreated, CreatedEvent{
		ID:       id,
		PestName: e.PestName,
		Location: e.Location,
		Date:     e.Date.UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish tracking event", zap.String("id", id), zap.Error(err))
	}

	return id, nil
}

// List returns all entries, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		if s.cfg.FallbackToSamples {
			OperationsTotal.WithLabelValues("list", "fallback").Inc()
			s.logger.Warn("tracking store unavailable, serving samples", zap.Error(err))
			return Samples(), nil
		}
		OperationsTotal.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("list tracking entries: %w", err)
	}
	OperationsTotal.WithLabelValues("list", "success").Inc()
	return entries, nil
}

// Search returns entries whose pest name starts with term.
func (s *Service) Search(ctx context.Context, term string) ([]Entry, error) {
	if term == "" {
		return s.List(ctx)
	}

	entries, err := s.store.Search(ctx, term)
	if err != nil {
		if s.cfg.FallbackToSamples {
			OperationsTotal.WithLabelValues("search", "fallback").Inc()
			s.logger.Warn("tracking store unavailable, filtering samples", zap.Error(err), zap.String("term", term))
			return filterSamples(term), nil
		}
		OperationsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("search tracking entries: %w", err)
	}

	OperationsTotal.WithLabelValues("search", "success").Inc()
	SearchResults.Observe(float64(len(entries)))
	return entries, nil
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	e, err := s.store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		OperationsTotal.WithLabelValues("get", "not_found").Inc()
		return Entry{}, err
	case err != nil:
		OperationsTotal.WithLabelValues("get", "error").Inc()
		return Entry{}, fmt.Errorf("get tracking entry: %w", err)
	}
	OperationsTotal.WithLabelValues("get", "success").Inc()
	return e, nil
}

func (s *Service) scrub(text, field string) string {
	if text == "" {
		return text
	}
	res := s.scrubber.Scrub(text)
	if res.HasFindings() {
		s.logger.Warn("redacted secrets from tracking entry",
			zap.String("field", field),
			zap.Strings("rules", res.RuleIDs()),
		)
	}
	return res.Scrubbed
}
