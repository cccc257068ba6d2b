package console

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/seriesdesk/seriesdesk/internal/filter"
	"github.com/seriesdesk/seriesdesk/internal/product"
	"github.com/seriesdesk/seriesdesk/internal/shared"
)

// SessionStore persists the bearer token the upstream client sends.
// auth.TokenStore satisfies it.
type SessionStore interface {
	Save(ctx context.Context, token string, expiry time.Time) error
	Clear(ctx context.Context) error
}

// Handler wires the console JSON endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	sessions     SessionStore
	validator    *validator.Validate
	suggestLimit int
}

// NewHandler constructs a Handler instance. suggestLimit caps autocomplete
// requests per client IP per minute; zero picks a sane default.
func NewHandler(logger *slog.Logger, service *Service, sessions SessionStore, suggestLimit int) *Handler {
	if suggestLimit <= 0 {
		suggestLimit = 60
	}
	return &Handler{
		logger:       logger,
		service:      service,
		sessions:     sessions,
		validator:    validator.New(),
		suggestLimit: suggestLimit,
	}
}

// respondError maps a failure onto the JSON error envelope. An expired or
// rejected upstream token also drops the stored one, so the next visit
// starts from a clean login instead of replaying a dead token.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrUnauthorized) && h.sessions != nil {
		if clearErr := h.sessions.Clear(r.Context()); clearErr != nil {
			h.logger.Warn("clear session", slog.Any("error", clearErr))
		}
	}
	shared.RespondError(w, h.logger, err)
}

// MountRoutes registers console routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/session", h.openSession)
	r.Delete("/session", h.closeSession)

	r.Get("/series", h.listSeries)
	r.Post("/series", h.createSeries)
	r.Get("/series/{id}/schema", h.loadSchema)
	r.Post("/series/{id}/schema/preview", h.previewSchema)
	r.Patch("/series/{id}/schema", h.submitSchema)
	r.Post("/series/{id}/select", h.selectSeries)
	r.Get("/series/{id}/filters", h.filters)
	r.Post("/series/{id}/filters", h.filterInput)
	r.Delete("/series/{id}/filters", h.clearFilters)
	r.Post("/series/{id}/search", h.search)
	r.Post("/series/{id}/products", h.createProduct)

	r.Get("/products/{id}", h.loadProduct)
	r.Get("/products/{id}/form", h.productForm)
	r.Post("/products/{id}/input", h.productInput)
	r.Post("/products/{id}/save", h.saveProduct)
	r.Post("/products/{id}/delete", h.deleteProduct)
	r.Post("/products/{id}/restore", h.restoreProduct)
	r.Post("/products/{id}/archive", h.archiveProduct)
	r.Delete("/products/{id}/archive", h.unarchiveProduct)

	// autocomplete is chatty; cap it per client
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.suggestLimit, time.Minute))
		r.Get("/fields/{id}/suggest", h.suggest)
	})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return shared.ErrValidation
	}
	if err := h.validator.Struct(dst); err != nil {
		return shared.ErrValidation
	}
	return nil
}

type sessionRequest struct {
	Token     string    `json:"token" validate:"required"`
	ExpiresAt time.Time `json:"expiresAt" validate:"required"`
}

// openSession stores the bearer token issued by the upstream login,
// replacing whatever was cached before.
func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		h.respondError(w, r, shared.ErrNotFound)
		return
	}
	var req sessionRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.sessions.Save(r.Context(), req.Token, req.ExpiresAt); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

// closeSession is the explicit logout.
func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		h.respondError(w, r, shared.ErrNotFound)
		return
	}
	if err := h.sessions.Clear(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) listSeries(w http.ResponseWriter, r *http.Request) {
	showFields := r.URL.Query().Get("showField") == "1"
	series, err := h.service.ListSeries(r.Context(), showFields)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, series)
}

func (h *Handler) createSeries(w http.ResponseWriter, r *http.Request) {
	var edit SchemaEdit
	if err := h.decode(r, &edit); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.CreateSeries(r.Context(), edit); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, nil)
}

func (h *Handler) loadSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	series, err := h.service.LoadSchema(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, series)
}

func (h *Handler) previewSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	var edit SchemaEdit
	if err := h.decode(r, &edit); err != nil {
		h.respondError(w, r, err)
		return
	}
	status, err := h.service.PreviewSchema(r.Context(), id, edit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, status)
}

func (h *Handler) submitSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	var edit SchemaEdit
	if err := h.decode(r, &edit); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.SubmitSchema(r.Context(), id, edit); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) selectSeries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	results, err := h.service.SelectSeries(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, results)
}

func (h *Handler) filters(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	view, err := h.service.Filters(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) filterInput(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	var in FilterInput
	if err := h.decode(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.service.HandleFilterInput(id, in)
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) clearFilters(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	h.service.ClearFilters(id)
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	results, err := h.service.Search(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, results)
}

type createProductRequest struct {
	Attributes []product.Attribute `json:"attributes"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	var req createProductRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.CreateProduct(r.Context(), id, req.Attributes); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, nil)
}

func (h *Handler) loadProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	refresh := r.URL.Query().Get("refresh") == "1"
	p, err := h.service.LoadProduct(r.Context(), id, refresh)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, p)
}

type productFormResponse struct {
	Controls  any  `json:"controls"`
	CanSubmit bool `json:"canSubmit"`
}

func (h *Handler) productForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	controls, canSubmit, err := h.service.ProductForm(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, productFormResponse{Controls: controls, CanSubmit: canSubmit})
}

type productInputRequest struct {
	FieldID int64 `json:"fieldId" validate:"required"`
	Value   any   `json:"value"`
}

func (h *Handler) productInput(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	var req productInputRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.HandleProductInput(r.Context(), id, req.FieldID, req.Value); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	if err := h.service.SaveProduct(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	h.setDeleted(w, r, true)
}

func (h *Handler) restoreProduct(w http.ResponseWriter, r *http.Request) {
	h.setDeleted(w, r, false)
}

func (h *Handler) setDeleted(w http.ResponseWriter, r *http.Request, deleted bool) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	if err := h.service.SetProductDeleted(r.Context(), id, deleted); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) archiveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	if err := h.service.ArchiveProduct(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) unarchiveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	if err := h.service.UnarchiveProduct(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, nil)
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, shared.ErrValidation)
		return
	}
	term := r.URL.Query().Get("term")
	values, err := h.service.Suggest(r.Context(), id, term)
	if err != nil {
		if errors.Is(err, filter.ErrStaleLookup) {
			// lost the race to a newer keystroke, nothing to show
			shared.RespondJSON(w, http.StatusOK, []string{})
			return
		}
		h.respondError(w, r, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, values)
}
