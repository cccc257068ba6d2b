package console

import (
	"context"
	"log/slog"

	"github.com/seriesdesk/seriesdesk/internal/favorites"
	"github.com/seriesdesk/seriesdesk/internal/filter"
	"github.com/seriesdesk/seriesdesk/internal/schema"
	"github.com/seriesdesk/seriesdesk/internal/upstream"
)

func (s *Service) bar(seriesID int64) *filter.Bar {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bars[seriesID]
	if !ok {
		b = filter.NewBar()
		s.bars[seriesID] = b
	}
	return b
}

// FilterView is the rendered filter row for a series: top favorites
// promoted into the quick row, the remaining controls behind the
// collapsible section.
type FilterView struct {
	Quick  []filter.Control `json:"quick"`
	Others []filter.Control `json:"others"`
	Active filter.List      `json:"active"`
}

// Filters builds the filter controls for a series schema, splitting off
// the most recently used fields into the quick row.
func (s *Service) Filters(ctx context.Context, seriesID int64) (FilterView, error) {
	snap, err := s.snapshot(ctx, seriesID)
	if err != nil {
		return FilterView{}, err
	}
	bar := s.bar(seriesID)
	controls, err := filter.BuildControls(snap.fields, bar.Filters())
	if err != nil {
		return FilterView{}, err
	}

	top, err := s.favorites.Top(ctx, seriesID, favorites.DefaultTop)
	if err != nil {
		s.logger.Warn("load favorites", slog.Int64("series", seriesID), slog.Any("error", err))
	}
	promoted := make(map[int64]int, len(top))
	for rank, fid := range top {
		promoted[fid] = rank
	}

	view := FilterView{Active: bar.Filters()}
	view.Quick = make([]filter.Control, len(top))
	filled := make([]bool, len(top))
	placed := 0
	for _, c := range controls {
		if rank, ok := promoted[c.FieldID]; ok {
			view.Quick[rank] = c
			filled[rank] = true
			placed++
			continue
		}
		view.Others = append(view.Others, c)
	}
	// favorites may reference fields that stopped being filterable
	if placed < len(view.Quick) {
		compact := make([]filter.Control, 0, placed)
		for i, c := range view.Quick {
			if filled[i] {
				compact = append(compact, c)
			}
		}
		view.Quick = compact
	}
	return view, nil
}

// FilterInput is one filter control change.
type FilterInput struct {
	FieldID   int64            `json:"fieldId" validate:"required"`
	Operation schema.Operation `json:"operation"`
	Value     any              `json:"value"`
	Min       string           `json:"min"`
	Max       string           `json:"max"`
}

// HandleFilterInput applies one change to a series' working filter set.
func (s *Service) HandleFilterInput(seriesID int64, in FilterInput) {
	bar := s.bar(seriesID)
	switch in.Operation {
	case schema.OpRange:
		if in.Min == "" && in.Max == "" && in.Value == nil {
			bar.SwitchOperation(in.FieldID, schema.OpRange)
			return
		}
		bar.SetBound(in.FieldID, in.Min, in.Max)
	case "":
		bar.SetValue(in.FieldID, in.Value, schema.OpEqual)
	default:
		if in.Value == nil {
			bar.SwitchOperation(in.FieldID, in.Operation)
			return
		}
		bar.SetValue(in.FieldID, in.Value, in.Operation)
	}
}

// ClearFilters resets a series' working filter set without searching.
func (s *Service) ClearFilters(seriesID int64) {
	s.bar(seriesID).Reset()
}

// Search runs the current filter set against a series and records the
// used fields as favorites on success.
func (s *Service) Search(ctx context.Context, seriesID int64) ([]upstream.SearchResult, error) {
	bar := s.bar(seriesID)
	results, err := s.api.SearchProducts(ctx, seriesID, bar.Filters())
	if err != nil {
		return nil, err
	}
	if used := bar.Filters().FieldIDs(); len(used) > 0 {
		if err := s.favorites.RecordUsage(ctx, seriesID, used); err != nil {
			s.logger.Warn("record favorites", slog.Int64("series", seriesID), slog.Any("error", err))
		}
	}
	return results, nil
}

// SelectSeries is the series-change entry point: it reloads the schema,
// clears the filter set and issues the unconditional empty-filter search
// so the results table is never stale for the newly selected series.
func (s *Service) SelectSeries(ctx context.Context, seriesID int64) ([]upstream.SearchResult, error) {
	if _, err := s.LoadSchema(ctx, seriesID); err != nil {
		return nil, err
	}
	s.bar(seriesID).Reset()
	return s.Search(ctx, seriesID)
}

// Suggest answers a debounced autocomplete lookup for a string field.
// Stale lookups surface filter.ErrStaleLookup and are dropped silently
// by the handler.
func (s *Service) Suggest(ctx context.Context, fieldID int64, term string) ([]string, error) {
	return s.suggester.Lookup(ctx, fieldID, term)
}
