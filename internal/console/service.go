// Package console orchestrates the admin console screens: series schema
// editing with diff-based submits, dynamic product forms with per-product
// edit overlays, filtered search with favorite-field promotion, and
// autocomplete lookups.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/seriesdesk/seriesdesk/internal/favorites"
	"github.com/seriesdesk/seriesdesk/internal/filter"
	"github.com/seriesdesk/seriesdesk/internal/form"
	"github.com/seriesdesk/seriesdesk/internal/product"
	"github.com/seriesdesk/seriesdesk/internal/schema"
	"github.com/seriesdesk/seriesdesk/internal/shared"
	"github.com/seriesdesk/seriesdesk/internal/upstream"
)

// API is the slice of the upstream client the console consumes.
type API interface {
	ListSeries(ctx context.Context, showFields bool) ([]schema.Series, error)
	GetSeries(ctx context.Context, id int64) (schema.Series, error)
	CreateSeries(ctx context.Context, input upstream.CreateSeriesInput) error
	PatchSeries(ctx context.Context, id int64, input upstream.PatchSeriesInput) error
	GetProduct(ctx context.Context, id int64) (product.Product, error)
	CreateProducts(ctx context.Context, inputs []product.SaveInput) error
	EditProducts(ctx context.Context, inputs []product.SaveInput) error
	ArchiveProduct(ctx context.Context, itemID int64) error
	UnarchiveProduct(ctx context.Context, itemID int64) error
	SearchProducts(ctx context.Context, seriesID int64, filters filter.List) ([]upstream.SearchResult, error)
	SuggestFieldValues(ctx context.Context, fieldID int64, term string) ([]string, error)
}

// seriesSnapshot is the last-fetched schema an edit session diffs against.
type seriesSnapshot struct {
	name   string
	fields []schema.SeriesField
}

// productSession is the editable state seeded once per navigation to a
// product. Re-renders and unrelated loads never re-seed it, so pending
// edits survive until saved or discarded. All fields are guarded by
// Service.mu.
type productSession struct {
	seriesID   int64
	fields     []schema.SeriesField
	base       product.AttributeList
	editor     *form.Editor
	isDeleted  bool
	hasArchive bool
}

// RefreshQueue enqueues a background schema refresh for a series so
// worker instances re-prune favorites after a schema change. A zero
// series id refreshes everything.
type RefreshQueue interface {
	EnqueueSchemaRefresh(ctx context.Context, seriesID int64) error
}

// Service holds the console's per-entity editing state and drives the
// engine packages against the upstream API.
type Service struct {
	api       API
	favorites *favorites.Service
	suggester *filter.Suggester
	logger    *slog.Logger
	queue     RefreshQueue

	mu        sync.Mutex
	snapshots map[int64]*seriesSnapshot
	sessions  map[int64]*productSession
	bars      map[int64]*filter.Bar
	overlay   *product.Overlay
}

// NewService constructs the console service.
func NewService(api API, favs *favorites.Service, logger *slog.Logger) *Service {
	s := &Service{
		api:       api,
		favorites: favs,
		logger:    logger,
		snapshots: make(map[int64]*seriesSnapshot),
		sessions:  make(map[int64]*productSession),
		bars:      make(map[int64]*filter.Bar),
		overlay:   product.NewOverlay(),
	}
	s.suggester = filter.NewSuggester(api.SuggestFieldValues)
	return s
}

// SetRefreshQueue attaches a background refresh queue. Enqueue failures
// never fail a schema submit, they only lose the proactive prune.
func (s *Service) SetRefreshQueue(queue RefreshQueue) {
	s.queue = queue
}

// ListSeries proxies the series catalog listing.
func (s *Service) ListSeries(ctx context.Context, showFields bool) ([]schema.Series, error) {
	return s.api.ListSeries(ctx, showFields)
}

// LoadSchema fetches a series schema, seeds the edit snapshot and prunes
// favorites that reference deleted fields. The snapshot is replaced on
// every explicit load; dirty checks always run against the freshest
// server state.
func (s *Service) LoadSchema(ctx context.Context, seriesID int64) (schema.Series, error) {
	series, err := s.api.GetSeries(ctx, seriesID)
	if err != nil {
		return schema.Series{}, err
	}

	s.mu.Lock()
	s.snapshots[seriesID] = &seriesSnapshot{name: series.Name, fields: series.Fields}
	s.mu.Unlock()

	if _, err := s.favorites.PruneInvalid(ctx, seriesID, schema.FieldIDs(series.Fields)); err != nil {
		s.logger.Warn("prune favorites", slog.Int64("series", seriesID), slog.Any("error", err))
	}
	return series, nil
}

// SchemaEdit is the edited series payload submitted by the console.
type SchemaEdit struct {
	Name   string               `json:"name" validate:"required"`
	Fields []schema.SeriesField `json:"fields" validate:"dive"`
}

// SchemaStatus reports the dirty/valid gate plus the diff that a submit
// would send.
type SchemaStatus struct {
	Dirty     bool                     `json:"dirty"`
	Valid     bool                     `json:"valid"`
	CanSubmit bool                     `json:"canSubmit"`
	Issues    []schema.ValidationIssue `json:"issues,omitempty"`
	Diff      schema.DiffResult        `json:"diff"`
}

// PreviewSchema computes the submit gate for an edited schema without
// touching the network.
func (s *Service) PreviewSchema(ctx context.Context, seriesID int64, edit SchemaEdit) (SchemaStatus, error) {
	snap, err := s.snapshot(ctx, seriesID)
	if err != nil {
		return SchemaStatus{}, err
	}
	issues := schema.Validate(edit.Name, edit.Fields)
	dirty := schema.HasModify(snap.name, edit.Name, snap.fields, edit.Fields)
	valid := schema.IsValidPayload(edit.Name, edit.Fields) && !schema.Blocked(issues)
	return SchemaStatus{
		Dirty:     dirty,
		Valid:     valid,
		CanSubmit: dirty && valid,
		Issues:    issues,
		Diff:      schema.Diff(snap.fields, edit.Fields),
	}, nil
}

// SubmitSchema sends the diff payload for an edited series. Clean or
// malformed payloads are rejected locally; success refreshes the snapshot.
func (s *Service) SubmitSchema(ctx context.Context, seriesID int64, edit SchemaEdit) error {
	status, err := s.PreviewSchema(ctx, seriesID, edit)
	if err != nil {
		return err
	}
	if !status.CanSubmit {
		if !status.Valid {
			return fmt.Errorf("%w: schema payload is malformed", shared.ErrValidation)
		}
		return fmt.Errorf("%w: schema is unchanged", shared.ErrValidation)
	}

	input := upstream.PatchSeriesInput{
		Name:   edit.Name,
		Create: status.Diff.Create,
		Fields: status.Diff.Update,
		Delete: status.Diff.Delete,
	}
	if err := s.api.PatchSeries(ctx, seriesID, input); err != nil {
		return err
	}
	if s.queue != nil {
		if err := s.queue.EnqueueSchemaRefresh(ctx, seriesID); err != nil {
			s.logger.Warn("enqueue schema refresh", slog.Int64("series", seriesID), slog.Any("error", err))
		}
	}
	// reload so the next edit session diffs against the saved state
	_, err = s.LoadSchema(ctx, seriesID)
	return err
}

// CreateSeries creates a new series after local validation. Fields keep
// their submitted order; ids are stripped since nothing is persisted yet.
func (s *Service) CreateSeries(ctx context.Context, edit SchemaEdit) error {
	issues := schema.Validate(edit.Name, edit.Fields)
	if schema.Blocked(issues) {
		return fmt.Errorf("%w: schema payload is malformed", shared.ErrValidation)
	}
	fields := make([]schema.SeriesField, len(edit.Fields))
	copy(fields, edit.Fields)
	for i := range fields {
		fields[i].ID = nil
	}
	return s.api.CreateSeries(ctx, upstream.CreateSeriesInput{Name: edit.Name, Fields: fields})
}

func (s *Service) snapshot(ctx context.Context, seriesID int64) (*seriesSnapshot, error) {
	s.mu.Lock()
	snap, ok := s.snapshots[seriesID]
	s.mu.Unlock()
	if ok {
		return snap, nil
	}
	if _, err := s.LoadSchema(ctx, seriesID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[seriesID], nil
}
