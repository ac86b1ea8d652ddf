package ingest

import (
	"context"
	"fmt"
	"time"

	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"
)

// PlaceSource lists every catalog place.
type PlaceSource interface {
	FindAll(ctx context.Context) ([]models.PlaceRecord, error)
}

// DocumentSink accepts documents for indexing.
type DocumentSink interface {
	Insert(ctx context.Context, doc models.Document) error
	Count(ctx context.Context) (int, error)
}

type SeedReport struct {
	Places   int
	Inserted int
	Failed   int
	// Existing is the chunk count found before seeding; non-zero means skipped.
	Existing int
}

// Seeder loads the place catalog into the vector store at startup.
type Seeder struct {
	config *Config
	places PlaceSource
	sink   DocumentSink
	logger logger.Logger
}

func NewSeeder(cfg *Config, places PlaceSource, sink DocumentSink, log logger.Logger) *Seeder {
	return &Seeder{
		config: cfg,
		places: places,
		sink:   sink,
		logger: log.With(map[string]interface{}{"component": "seeder"}),
	}
}

// Seed waits for the catalog to become non-empty, then inserts one document
// per place. A failing document is logged and counted; it never stops the run.
// A store that already holds chunks, e.g. a persistent index after a restart,
// is left alone since inserts are additive.
func (s *Seeder) Seed(ctx context.Context) (SeedReport, error) {
	existing, err := s.sink.Count(ctx)
	if err != nil {
		s.logger.Warn("could not count indexed chunks, seeding anyway", map[string]interface{}{
			"error": err.Error(),
		})
	} else if existing > 0 {
		s.logger.Info("vector store already populated, skipping seed", map[string]interface{}{
			"chunks": existing,
		})
		return SeedReport{Existing: existing}, nil
	}

	places, err := s.awaitPlaces(ctx)
	if err != nil {
		return SeedReport{}, err
	}

	report := SeedReport{Places: len(places)}
	for _, place := range places {
		if err := s.sink.Insert(ctx, PlaceDocument(place)); err != nil {
			report.Failed++
			s.logger.Warn("place document not indexed", map[string]interface{}{
				"placeId": place.ID,
				"error":   err.Error(),
			})
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			continue
		}
		report.Inserted++
	}

	s.logger.Info("catalog seeded", map[string]interface{}{
		"places":   report.Places,
		"inserted": report.Inserted,
		"failed":   report.Failed,
	})
	return report, nil
}

func (s *Seeder) awaitPlaces(ctx context.Context) ([]models.PlaceRecord, error) {
	attempts := s.config.SeedAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(s.config.SeedInterval):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		places, err := s.places.FindAll(ctx)
		if err == nil && len(places) > 0 {
			return places, nil
		}
		lastErr = err
		s.logger.Info("catalog not ready", map[string]interface{}{
			"attempt": attempt,
			"error":   fmt.Sprint(err),
		})
	}

	if lastErr != nil {
		return nil, fmt.Errorf("load places after %d attempts: %w", attempts, lastErr)
	}
	return nil, fmt.Errorf("place catalog still empty after %d attempts", attempts)
}
