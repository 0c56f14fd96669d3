package action

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/auth"
	"planner/internal/bucket"
	"planner/internal/task"
)

func newTestHandler(t *testing.T) (*Handler, *task.MemoryRepo) {
	t.Helper()
	tasks := task.NewMemoryRepo()
	buckets := bucket.NewMemoryRepo()
	buckets.SetCascade(tasks.ClearBucketRefs)
	return NewHandler(NewDispatcher(tasks, buckets)), tasks
}

func postForm(h http.Handler, target string, form url.Values, asUser string, acceptJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if acceptJSON {
		req.Header.Set("Accept", "application/json")
	}
	if asUser != "" {
		req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: asUser}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestActionEndpointCreatesTask(t *testing.T) {
	h, tasks := newTestHandler(t)

	rec := postForm(h, "/api/actions", url.Values{
		Field:  {string(CreateTask)},
		"id":   {"t1"},
		"name": {"buy milk"},
	}, "u1", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Task)
	assert.Equal(t, "t1", res.Task.ID)
	assert.Equal(t, "buy milk", res.Task.Name)

	backlog, err := tasks.Backlog(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, backlog, 1)
}

func TestActionEndpointRequiresAuth(t *testing.T) {
	h, tasks := newTestHandler(t)

	rec := postForm(h, "/api/actions", url.Values{
		Field: {string(CreateTask)},
		"id":  {"t1"},
	}, "", true)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	backlog, err := tasks.Backlog(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, backlog)
}

func TestActionEndpointRejectsGet(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/actions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestActionEndpointRejectsUnknownAction(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := postForm(h, "/api/actions", url.Values{
		Field: {"NOT_A_THING"},
		"id":  {"t1"},
	}, "u1", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionEndpointMapsNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := postForm(h, "/api/actions", url.Values{
		Field: {string(DeleteTask)},
		"id":  {"ghost"},
	}, "u1", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDayRouteFeedsMoveToDay(t *testing.T) {
	h, _ := newTestHandler(t)
	h.SetDayResolver(func(*http.Request) string { return "2022-03-07" })

	postForm(h, "/api/calendar/2022-03-07/actions", url.Values{
		Field:  {string(CreateTask)},
		"id":   {"t1"},
		"name": {"n"},
	}, "u1", true)

	rec := postForm(h, "/api/calendar/2022-03-07/actions", url.Values{
		Field: {string(MoveTaskToDay)},
		"id":  {"t1"},
	}, "u1", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Task.Date)
	assert.Equal(t, "2022-03-07", *res.Task.Date)
}

func TestRenameRedirectsPlainFormPosts(t *testing.T) {
	h, _ := newTestHandler(t)

	postForm(h, "/api/actions", url.Values{
		Field:  {string(CreateBucket)},
		"id":   {"b1"},
		"name": {"Old Name"},
	}, "u1", true)

	// No Accept: application/json, so the rename answers with a real
	// redirect instead of a JSON body.
	rec := postForm(h, "/api/actions", url.Values{
		Field:  {string(RenameBucket)},
		"id":   {"b1"},
		"name": {"New Name"},
		"slug": {"old-name"},
	}, "u1", false)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/buckets/new-name", rec.Header().Get("Location"))
}
