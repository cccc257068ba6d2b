package console

import (
	"context"
	"fmt"
	"time"

	"github.com/seriesdesk/seriesdesk/internal/form"
	"github.com/seriesdesk/seriesdesk/internal/product"
	"github.com/seriesdesk/seriesdesk/internal/shared"
)

// LoadProduct seeds the edit session for a product exactly once per
// navigation: a session that already exists is returned untouched so
// unrelated loads never discard in-progress edits. Pass refresh to force
// a re-seed, which also drops pending edits.
func (s *Service) LoadProduct(ctx context.Context, productID int64, refresh bool) (product.Product, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[productID]; ok && !refresh {
		p := s.sessionProduct(productID, sess)
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	p, err := s.api.GetProduct(ctx, productID)
	if err != nil {
		return product.Product{}, err
	}
	series, err := s.snapshot(ctx, p.SeriesID)
	if err != nil {
		return product.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay.Discard(productID)
	s.sessions[productID] = &productSession{
		seriesID:   p.SeriesID,
		fields:     series.fields,
		base:       product.AttributeList(p.Attributes),
		editor:     form.NewEditor(series.fields, s.overlay),
		isDeleted:  p.IsDeleted,
		hasArchive: p.HasArchive,
	}
	return p, nil
}

// sessionProduct builds the product view of a session. Callers hold s.mu.
func (s *Service) sessionProduct(productID int64, sess *productSession) product.Product {
	return product.Product{
		ItemID:     productID,
		SeriesID:   sess.seriesID,
		Attributes: sess.base,
		IsDeleted:  sess.isDeleted,
		HasArchive: sess.hasArchive,
	}
}

// sessionLocked looks up the edit session for a product. Callers hold
// s.mu, which guards every session field; reads and writes outside the
// lock would race under concurrent requests.
func (s *Service) sessionLocked(productID int64) (*productSession, error) {
	sess, ok := s.sessions[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %d has no edit session", shared.ErrNotFound, productID)
	}
	return sess, nil
}

// ProductForm renders the control descriptors for a product's form,
// overlay edits applied.
func (s *Service) ProductForm(ctx context.Context, productID int64) ([]form.Control, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(productID)
	if err != nil {
		return nil, false, err
	}
	controls, err := form.Render(sess.fields, s.overlay, productID, sess.base, time.Now)
	if err != nil {
		return nil, false, err
	}
	return controls, sess.editor.CanSubmit(productID, sess.base), nil
}

// HandleProductInput records one control change for a product. Coercion
// failures are validation errors resolved at the point of input; they
// never reach the upstream API.
func (s *Service) HandleProductInput(ctx context.Context, productID, fieldID int64, raw any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(productID)
	if err != nil {
		return err
	}
	if err := sess.editor.HandleInputChange(productID, fieldID, raw); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}

// SaveProduct submits the merged attribute payload for an edited
// product, then drops the overlay so the session reflects saved state.
func (s *Service) SaveProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	sess, err := s.sessionLocked(productID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !sess.editor.CanSubmit(productID, sess.base) {
		s.mu.Unlock()
		return fmt.Errorf("%w: required fields are empty", shared.ErrValidation)
	}
	payload := sess.editor.Payload(productID, sess.base)
	s.mu.Unlock()

	input := product.SaveInput{ItemID: &productID, Attributes: payload}
	if err := s.api.EditProducts(ctx, []product.SaveInput{input}); err != nil {
		return err
	}

	s.mu.Lock()
	if sess, ok := s.sessions[productID]; ok {
		sess.base = payload
	}
	s.overlay.Discard(productID)
	s.mu.Unlock()
	return nil
}

// CreateProduct creates one product in a series from an initial
// attribute list. Required string fields must be non-empty; untouched
// booleans default to false.
func (s *Service) CreateProduct(ctx context.Context, seriesID int64, attrs product.AttributeList) error {
	snap, err := s.snapshot(ctx, seriesID)
	if err != nil {
		return err
	}

	scratch := product.NewOverlay()
	editor := form.NewEditor(snap.fields, scratch)
	for _, a := range attrs {
		if err := editor.HandleInputChange(0, a.FieldID, a.Value); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
	}
	if !editor.CanSubmit(0, nil) {
		return fmt.Errorf("%w: required fields are empty", shared.ErrValidation)
	}

	input := product.SaveInput{SeriesID: &seriesID, Attributes: editor.Payload(0, nil)}
	return s.api.CreateProducts(ctx, []product.SaveInput{input})
}

// SetProductDeleted soft-deletes or restores a product.
func (s *Service) SetProductDeleted(ctx context.Context, productID int64, deleted bool) error {
	s.mu.Lock()
	sess, err := s.sessionLocked(productID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	base := sess.base
	s.mu.Unlock()

	input := product.SaveInput{ItemID: &productID, IsDeleted: &deleted, Attributes: base}
	if err := s.api.EditProducts(ctx, []product.SaveInput{input}); err != nil {
		return err
	}
	s.mu.Lock()
	if sess, ok := s.sessions[productID]; ok {
		sess.isDeleted = deleted
	}
	s.mu.Unlock()
	return nil
}

// ArchiveProduct creates the archive for a product. Archiving is gated
// on the current archive state; the two actions are mutually exclusive.
func (s *Service) ArchiveProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	sess, err := s.sessionLocked(productID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if sess.hasArchive {
		s.mu.Unlock()
		return fmt.Errorf("%w: product is already archived", shared.ErrConflict)
	}
	s.mu.Unlock()

	if err := s.api.ArchiveProduct(ctx, productID); err != nil {
		return err
	}
	s.mu.Lock()
	if sess, ok := s.sessions[productID]; ok {
		sess.hasArchive = true
	}
	s.mu.Unlock()
	return nil
}

// UnarchiveProduct removes the archive for a product.
func (s *Service) UnarchiveProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	sess, err := s.sessionLocked(productID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !sess.hasArchive {
		s.mu.Unlock()
		return fmt.Errorf("%w: product has no archive", shared.ErrConflict)
	}
	s.mu.Unlock()

	if err := s.api.UnarchiveProduct(ctx, productID); err != nil {
		return err
	}
	s.mu.Lock()
	if sess, ok := s.sessions[productID]; ok {
		sess.hasArchive = false
	}
	s.mu.Unlock()
	return nil
}
