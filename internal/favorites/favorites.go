// Package favorites ranks filter fields by recency of use per series and
// promotes the most recent into the quick filter row.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/seriesdesk/seriesdesk/internal/state"
)

// DefaultTop is how many fields the quick filter row promotes.
const DefaultTop = 3

// Record is one favorite entry: a field id and when it was last used in
// a search.
type Record struct {
	ID       int64     `json:"id"`
	LastUsed time.Time `json:"lastUsed"`
}

// Service persists per-series favorite lists behind the state port.
type Service struct {
	store state.Store
	now   func() time.Time
}

// NewService constructs a Service. A nil clock uses time.Now.
func NewService(store state.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

func seriesKey(seriesID int64) string {
	return fmt.Sprintf("favorites:%d", seriesID)
}

func (s *Service) load(ctx context.Context, seriesID int64) ([]Record, error) {
	raw, ok, err := s.store.Get(ctx, seriesKey(seriesID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// unreadable state is treated as empty rather than fatal
		return nil, nil
	}
	return records, nil
}

func (s *Service) save(ctx context.Context, seriesID int64, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, seriesKey(seriesID), string(data))
}

// RecordUsage upserts a usage timestamp for each field used in a
// successful search: existing entries get a fresh LastUsed, new ones are
// appended. Call order within one search shares a single timestamp.
func (s *Service) RecordUsage(ctx context.Context, seriesID int64, fieldIDs []int64) error {
	if len(fieldIDs) == 0 {
		return nil
	}
	records, err := s.load(ctx, seriesID)
	if err != nil {
		return err
	}
	now := s.now()
	for _, fid := range fieldIDs {
		found := false
		for i := range records {
			if records[i].ID == fid {
				records[i].LastUsed = now
				found = true
				break
			}
		}
		if !found {
			records = append(records, Record{ID: fid, LastUsed: now})
		}
	}
	return s.save(ctx, seriesID, records)
}

// PruneInvalid drops favorites whose field no longer exists in the live
// schema and reports how many entries were removed. Runs on every schema
// reload so deleted fields never linger in the quick filter row.
func (s *Service) PruneInvalid(ctx context.Context, seriesID int64, liveFieldIDs []int64) (int, error) {
	records, err := s.load(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	live := make(map[int64]struct{}, len(liveFieldIDs))
	for _, fid := range liveFieldIDs {
		live[fid] = struct{}{}
	}
	kept := records[:0]
	for _, r := range records {
		if _, ok := live[r.ID]; ok {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(ctx, seriesID, kept)
}

// Top returns up to max field ids ordered by LastUsed descending. Equal
// timestamps keep insertion order (stable sort).
func (s *Service) Top(ctx context.Context, seriesID int64, max int) ([]int64, error) {
	if max <= 0 {
		max = DefaultTop
	}
	records, err := s.load(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastUsed.After(records[j].LastUsed)
	})
	if len(records) > max {
		records = records[:max]
	}
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids, nil
}
