// Package upstream is the HTTP client for the remote catalog API the
// console fronts. Every call attaches the stored bearer token; 401
// responses surface as shared.ErrUnauthorized so the console can force a
// logout. There are no automatic retries.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/seriesdesk/seriesdesk/internal/filter"
	"github.com/seriesdesk/seriesdesk/internal/product"
	"github.com/seriesdesk/seriesdesk/internal/schema"
	"github.com/seriesdesk/seriesdesk/internal/shared"
)

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// APIError carries the upstream status code and server-supplied message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// UserMessage is the text shown to the operator, per the error policy of
// surfacing the server message together with the status.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client wraps interactions with the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient constructs a new client against the configured base URL.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case resp.StatusCode >= 400:
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Data == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// ListSeries fetches all series, including their field lists when
// showFields is set.
func (c *Client) ListSeries(ctx context.Context, showFields bool) ([]schema.Series, error) {
	query := url.Values{}
	if showFields {
		query.Set("showField", "1")
	}
	var out []schema.Series
	if err := c.do(ctx, http.MethodGet, "/series", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSeries fetches one series with its schema fields.
func (c *Client) GetSeries(ctx context.Context, id int64) (schema.Series, error) {
	var out schema.Series
	err := c.do(ctx, http.MethodGet, "/series/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

// CreateSeriesInput is the POST /series body: new fields carry no ids.
type CreateSeriesInput struct {
	Name   string               `json:"name"`
	Fields []schema.SeriesField `json:"fields"`
}

// CreateSeries creates a series with its initial field set.
func (c *Client) CreateSeries(ctx context.Context, input CreateSeriesInput) error {
	return c.do(ctx, http.MethodPost, "/series", nil, input, nil)
}

// PatchSeriesInput is exactly the schema diff payload plus the series name.
type PatchSeriesInput struct {
	Name   string               `json:"name"`
	Create []schema.SeriesField `json:"create"`
	Fields []schema.SeriesField `json:"fields"`
	Delete []int64              `json:"delete"`
}

// PatchSeries reconciles a series schema against its edited form.
func (c *Client) PatchSeries(ctx context.Context, id int64, input PatchSeriesInput) error {
	return c.do(ctx, http.MethodPatch, "/series/"+strconv.FormatInt(id, 10), nil, input, nil)
}

// GetProduct fetches one product with its attribute values.
func (c *Client) GetProduct(ctx context.Context, id int64) (product.Product, error) {
	var out product.Product
	err := c.do(ctx, http.MethodGet, "/product/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

// CreateProducts posts a batch of new products. The batch succeeds or
// fails as a whole from the console's perspective.
func (c *Client) CreateProducts(ctx context.Context, inputs []product.SaveInput) error {
	return c.do(ctx, http.MethodPost, "/product", nil, inputs, nil)
}

// EditProducts patches a batch of existing products, including
// soft-delete and restore flags.
func (c *Client) EditProducts(ctx context.Context, inputs []product.SaveInput) error {
	return c.do(ctx, http.MethodPatch, "/product/edit", nil, inputs, nil)
}

// ArchiveProduct creates the archive entry for a product.
func (c *Client) ArchiveProduct(ctx context.Context, itemID int64) error {
	body := map[string]int64{"itemId": itemID}
	return c.do(ctx, http.MethodPost, "/product/archive", nil, body, nil)
}

// UnarchiveProduct removes a product's archive entry.
func (c *Client) UnarchiveProduct(ctx context.Context, itemID int64) error {
	return c.do(ctx, http.MethodDelete, "/product/archive/"+strconv.FormatInt(itemID, 10), nil, nil, nil)
}

// SearchResult is one product row with render-ready attributes.
type SearchResult struct {
	ItemID     int64                     `json:"itemId"`
	Name       string                    `json:"name"`
	Attributes []product.SearchAttribute `json:"attributes"`
	IsDeleted  bool                      `json:"isDeleted"`
	HasArchive bool                      `json:"hasArchive"`
}

type searchBody struct {
	SeriesID int64       `json:"seriesId"`
	Filters  filter.List `json:"filters"`
}

// SearchProducts runs a filtered search within one series. An empty
// filter list is valid and returns the unfiltered result set.
func (c *Client) SearchProducts(ctx context.Context, seriesID int64, filters filter.List) ([]SearchResult, error) {
	if filters == nil {
		filters = filter.List{}
	}
	var out []SearchResult
	err := c.do(ctx, http.MethodPost, "/product/search", nil, searchBody{SeriesID: seriesID, Filters: filters}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SuggestFieldValues fetches autocomplete candidates for a string field.
func (c *Client) SuggestFieldValues(ctx context.Context, fieldID int64, term string) ([]string, error) {
	query := url.Values{}
	query.Set("field_id", strconv.FormatInt(fieldID, 10))
	query.Set("search_value", term)

	var raw []any
	if err := c.do(ctx, http.MethodGet, "/field/search", query, nil, &raw); err != nil {
		return nil, err
	}
	// suggestions arrive as strings or numbers
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		}
	}
	return out, nil
}
