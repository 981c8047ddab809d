package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/deppfellow/itemsvc/internal/config"
	"github.com/deppfellow/itemsvc/internal/handler"
	"github.com/deppfellow/itemsvc/internal/middleware"
	"github.com/deppfellow/itemsvc/internal/model"
	"github.com/deppfellow/itemsvc/internal/repository"
	"github.com/deppfellow/itemsvc/internal/server"
	"github.com/deppfellow/itemsvc/internal/service"
	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	server *server.Server
	router *echo.Echo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "items.db")
	cfg.Server.RateLimit.Enabled = false
	require.NoError(t, cfg.Validate())

	logger := zerolog.Nop()
	s, err := server.New(cfg, &logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	repos, err := repository.NewRepositories(s)
	require.NoError(t, err)
	require.NoError(t, repos.Items.Init(context.Background()))

	services, err := service.NewService(s, repos)
	require.NoError(t, err)

	return &testApp{
		server: s,
		router: NewRouter(s, handler.NewHandlers(s, services)),
	}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

func TestItemLifecycle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/items", `{"title":"  Buy milk  ","description":""}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	if diff := cmp.Diff(model.Item{ID: 1, Title: "Buy milk", Description: ""}, decode[model.Item](t, rec)); diff != "" {
		t.Errorf("created item mismatch (-want +got):\n%s", diff)
	}

	rec = app.do(t, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	if diff := cmp.Diff([]model.Item{{ID: 1, Title: "Buy milk"}}, decode[[]model.Item](t, rec)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	rec = app.do(t, http.MethodPut, "/api/items/1", `{"title":"Buy bread"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	if diff := cmp.Diff(model.Item{ID: 1, Title: "Buy bread"}, decode[model.Item](t, rec)); diff != "" {
		t.Errorf("updated item mismatch (-want +got):\n%s", diff)
	}

	rec = app.do(t, http.MethodDelete, "/api/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateDefaultsDescription(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{`{"title":"a"}`, `{"title":"b","description":null}`} {
		rec := app.do(t, http.MethodPost, "/api/items", body)
		require.Equal(t, http.StatusCreated, rec.Code, body)
		assert.Equal(t, "", decode[model.Item](t, rec).Description, body)
	}

	rec := app.do(t, http.MethodPost, "/api/items", `{"title":"c","description":"  keep spaces "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "  keep spaces ", decode[model.Item](t, rec).Description)
}

func TestBlankTitleRejected(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/items", `{"title":"keep"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, body := range []string{`{}`, `{"title":""}`, `{"title":"   "}`, `{"title":null,"description":"x"}`, `{"title":"\ufeff"}`} {
		rec := app.do(t, http.MethodPost, "/api/items", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "title is required", errorMessage(t, rec), body)

		rec = app.do(t, http.MethodPut, "/api/items/1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "title is required", errorMessage(t, rec), body)
	}

	rec = app.do(t, http.MethodGet, "/api/items", "")
	assert.JSONEq(t, `[{"id":1,"title":"keep","description":""}]`, rec.Body.String())
}

func TestMissingItems(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/items", `{"title":"keep"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, id := range []string{"2", "0", "-1"} {
		rec := app.do(t, http.MethodPut, "/api/items/"+id, `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "Item not found", errorMessage(t, rec))

		rec = app.do(t, http.MethodDelete, "/api/items/"+id, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "Item not found", errorMessage(t, rec))
	}

	rec = app.do(t, http.MethodGet, "/api/items", "")
	assert.JSONEq(t, `[{"id":1,"title":"keep","description":""}]`, rec.Body.String())
}

func TestNonIntegerID(t *testing.T) {
	app := newTestApp(t)

	for _, id := range []string{"abc", "1.5", "1e3", "99999999999999999999"} {
		rec := app.do(t, http.MethodPut, "/api/items/"+id, `{"title":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		assert.Equal(t, "id must be an integer", errorMessage(t, rec), id)

		rec = app.do(t, http.MethodDelete, "/api/items/"+id, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}

	rec := app.do(t, http.MethodPut, "/api/items/abc", `{"title":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id must be an integer; title is required", errorMessage(t, rec))
}

func TestMalformedBody(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/items", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/items", `{"title":42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailureIsGeneric(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.server.DB.SQL.Close())

	cases := []struct {
		method, path, body, message string
	}{
		{http.MethodGet, "/api/items", "", "Failed to list items"},
		{http.MethodPost, "/api/items", `{"title":"a"}`, "Failed to create item"},
		{http.MethodPut, "/api/items/1", `{"title":"a"}`, "Failed to update item"},
		{http.MethodDelete, "/api/items/1", "", "Failed to delete item"},
	}

	for _, tc := range cases {
		rec := app.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, tc.path)
		assert.Equal(t, tc.message, errorMessage(t, rec))
		assert.NotContains(t, rec.Body.String(), "sql:", "driver text leaked")
	}
}

func TestConcurrentCreates(t *testing.T) {
	app := newTestApp(t)

	const n = 25
	var wg sync.WaitGroup
	results := make(chan model.Item, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"title":"title-%d","description":"desc-%d"}`, i, i)
			rec := app.do(t, http.MethodPost, "/api/items", body)
			if rec.Code != http.StatusCreated {
				t.Errorf("create %d: status %d", i, rec.Code)
				return
			}
			var item model.Item
			if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
			results <- item
		}(i)
	}
	wg.Wait()
	close(results)

	ids := map[int64]bool{}
	for item := range results {
		// Each response must echo its own request body.
		suffix := strings.TrimPrefix(item.Title, "title-")
		assert.Equal(t, "desc-"+suffix, item.Description)
		assert.False(t, ids[item.ID], "duplicate id %d", item.ID)
		ids[item.ID] = true
	}
	assert.Len(t, ids, n)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Greater(t, body["time"].(float64), float64(0))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestStatus(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body["checks"], "database")

	require.NoError(t, app.server.DB.SQL.Close())

	rec = app.do(t, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decode[map[string]any](t, rec)["status"])
}

func TestFrontendAndDocs(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/some/client/route"} {
		rec := app.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<title>Items</title>", path)
	}

	rec := app.do(t, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = app.do(t, http.MethodGet, "/static/openapi.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/api/items/{id}"`)

	rec = app.do(t, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", errorMessage(t, rec))
}

func TestFrontendOnlyAnswersReads(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodHead, "/some/client/route", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := app.do(t, method, "/", `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.NotContains(t, rec.Body.String(), "<title>Items</title>", method)
		assert.Equal(t, "Route not found", errorMessage(t, rec), method)
	}
}
