package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/seriesdesk/seriesdesk/internal/favorites"
	jobmetrics "github.com/seriesdesk/seriesdesk/internal/jobs"
	"github.com/seriesdesk/seriesdesk/internal/schema"
)

// SchemaSource lists series with their field schemas.
type SchemaSource interface {
	ListSeries(ctx context.Context, showFields bool) ([]schema.Series, error)
}

// SchemaRefreshJob reloads series schemas from upstream and prunes
// favorite entries whose fields were deleted, so the quick filter row
// never references a dead field between console visits.
type SchemaRefreshJob struct {
	Source    SchemaSource
	Favorites *favorites.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewSchemaRefreshJob wires dependencies for the refresh handler.
func NewSchemaRefreshJob(source SchemaSource, favs *favorites.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *SchemaRefreshJob {
	return &SchemaRefreshJob{Source: source, Favorites: favs, Logger: logger, Metrics: metrics}
}

// Handle processes schema refresh tasks.
func (j *SchemaRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Source == nil {
		return errors.New("schema refresh: handler not configured")
	}
	tracker := j.Metrics.Track(TaskSchemaRefresh)
	defer func() {
		err = tracker.End(err)
	}()

	var payload SchemaRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	series, err := j.Source.ListSeries(ctx, true)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, s := range series {
		if payload.SeriesID != 0 && s.ID != payload.SeriesID {
			continue
		}
		g.Go(func() error {
			removed, err := j.Favorites.PruneInvalid(ctx, s.ID, schema.FieldIDs(s.Fields))
			if err != nil {
				return err
			}
			j.Metrics.AddPrunedFavorites(s.ID, removed)
			if j.Logger != nil {
				j.Logger.Debug("schema refreshed",
					slog.Int64("series", s.ID),
					slog.Int("fields", len(s.Fields)),
					slog.Int("favorites_pruned", removed))
			}
			return nil
		})
	}
	return g.Wait()
}
