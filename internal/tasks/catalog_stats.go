package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/catalog/internal/database"
)

// CatalogCounter reports how many records of each kind the catalog holds.
type CatalogCounter interface {
	Counts(ctx context.Context) (database.Counts, error)
}

// EntityGauge receives the counts, e.g. the Prometheus entities gauge.
type EntityGauge interface {
	SetEntityCount(kind string, count int64)
}

// RefreshCatalogStatsTask recounts the catalog so the entity gauges stay
// current even when nobody opens the home page.
type RefreshCatalogStatsTask struct{}

func (t RefreshCatalogStatsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_catalog_stats",
		MaxAttempts: 1,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

func RefreshCatalogStatsProcessor(counter CatalogCounter, gauge EntityGauge) backlite.QueueProcessor[RefreshCatalogStatsTask] {
	return func(ctx context.Context, _ RefreshCatalogStatsTask) error {
		if counter == nil || gauge == nil {
			return errors.New("catalog stats refresh not configured")
		}

		counts, err := counter.Counts(ctx)
		if err != nil {
			return fmt.Errorf("refresh catalog stats: %w", err)
		}

		gauge.SetEntityCount("genres", counts.Genres)
		gauge.SetEntityCount("authors", counts.Authors)
		gauge.SetEntityCount("books", counts.Books)
		gauge.SetEntityCount("book_instances", counts.BookInstances)

		log.Debug().
			Int64("books", counts.Books).
			Int64("book_instances", counts.BookInstances).
			Msg("Catalog stats refreshed")
		return nil
	}
}

func NewRefreshCatalogStatsQueue(counter CatalogCounter, gauge EntityGauge) backlite.Queue {
	return backlite.NewQueue(RefreshCatalogStatsProcessor(counter, gauge))
}
