package console

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/seriesdesk/seriesdesk/internal/auth"
	"github.com/seriesdesk/seriesdesk/internal/product"
	"github.com/seriesdesk/seriesdesk/internal/shared"
	"github.com/seriesdesk/seriesdesk/internal/state"
)

func newTestServer(t *testing.T, api *fakeAPI) *httptest.Server {
	srv, _ := newTestServerWithSessions(t, api)
	return srv
}

func newTestServerWithSessions(t *testing.T, api *fakeAPI) (*httptest.Server, *auth.TokenStore) {
	t.Helper()
	svc, _ := newTestService(api)
	tokens := auth.NewTokenStore(state.NewMemory(), nil)
	handler := NewHandler(testLogger(), svc, tokens, 0)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, tokens
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestSchemaPreviewEndpoint(t *testing.T) {
	api := newFakeAPI()
	api.series[7] = lensSeries()
	srv := newTestServer(t, api)

	edit := SchemaEdit{Name: "Lenses", Fields: lensSeries().Fields}
	resp := postJSON(t, srv.URL+"/series/7/schema/preview", edit)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Data SchemaStatus `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.False(t, env.Data.Dirty)
	require.True(t, env.Data.Valid)
	require.False(t, env.Data.CanSubmit)
}

func TestSubmitUnchangedSchemaIs422(t *testing.T) {
	api := newFakeAPI()
	api.series[7] = lensSeries()
	srv := newTestServer(t, api)

	edit := SchemaEdit{Name: "Lenses", Fields: lensSeries().Fields}
	payload, _ := json.Marshal(edit)
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/series/7/schema", bytes.NewReader(payload))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestProductInputAndSaveOverHTTP(t *testing.T) {
	api := newFakeAPI()
	api.series[7] = lensSeries()
	api.products[100] = product.Product{ItemID: 100, SeriesID: 7}
	srv := newTestServer(t, api)

	resp, err := http.Get(srv.URL + "/products/100")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// save blocked while the required field is empty
	resp = postJSON(t, srv.URL+"/products/100/save", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/products/100/input", productInputRequest{FieldID: 1, Value: "EF 85mm"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/products/100/save", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, api.edits, 1)
}

func TestUnparsableNumberIs422(t *testing.T) {
	api := newFakeAPI()
	api.series[7] = lensSeries()
	api.products[100] = product.Product{ItemID: 100, SeriesID: 7}
	srv := newTestServer(t, api)

	resp, err := http.Get(srv.URL + "/products/100")
	require.NoError(t, err)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/products/100/input", productInputRequest{FieldID: 2, Value: "12,5"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Empty(t, api.edits, "validation failures never reach the network")
}

func TestUnauthorizedMapsTo401(t *testing.T) {
	api := newFakeAPI()
	srv := newTestServer(t, api)

	api.seriesErr = shared.ErrUnauthorized
	resp, err := http.Get(srv.URL + "/series")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	srv, tokens := newTestServerWithSessions(t, api)

	resp := postJSON(t, srv.URL+"/session", sessionRequest{
		Token:     "tok-123",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, tokens.Valid(ctx))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/session", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)
	require.False(t, tokens.Valid(ctx))
}

func TestUnauthorizedClearsStoredToken(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	srv, tokens := newTestServerWithSessions(t, api)
	require.NoError(t, tokens.Save(ctx, "tok-123", time.Now().Add(time.Hour)))

	// upstream rejects the token; the forced logout drops it locally
	api.seriesErr = shared.ErrUnauthorized
	resp, err := http.Get(srv.URL + "/series")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, tokens.Valid(ctx))
}
