package app_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/RomanPilyushin/Privatbank/internal/app"
	"github.com/RomanPilyushin/Privatbank/internal/config"
	"github.com/RomanPilyushin/Privatbank/internal/dto"
	"github.com/RomanPilyushin/Privatbank/internal/repo"
	"github.com/RomanPilyushin/Privatbank/internal/storage"
)

const testSchema = `
CREATE TABLE tasks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL
);`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	store := &storage.Store{
		Tasks:   repo.NewSQLiteTaskRepo(db),
		Backend: "sqlite",
	}

	r := gin.New()
	app.Setup(r, config.Config{}, store)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeTask(t *testing.T, rr *httptest.ResponseRecorder) dto.TaskResponse {
	t.Helper()
	var out dto.TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func createTask(t *testing.T, h http.Handler, title, description, status string) dto.TaskResponse {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/tasks", gin.H{
		"title":       title,
		"description": description,
		"status":      status,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeTask(t, rr)
}

func TestCreateTask(t *testing.T) {
	r := newTestRouter(t)

	created := createTask(t, r, "Test Task", "Task Description", "Pending")
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Test Task", created.Title)
	assert.Equal(t, "Task Description", created.Description)
	assert.Equal(t, "Pending", created.Status)
}

func TestCreateTask_ValidationMessages(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"description": "no title or status"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeMap(t, rr)
	assert.Equal(t, "Title is mandatory", errs["title"])
	assert.Equal(t, "Status is mandatory", errs["status"])
}

func TestCreateTask_TitleTooLong(t *testing.T) {
	r := newTestRouter(t)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	rr := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": string(long), "status": "Pending"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeMap(t, rr)
	assert.Equal(t, "Title must be less than 100 characters", errs["title"])
}

func TestCreateTask_WhitespaceOnlyFields(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": "   ", "status": "Pending"})
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Equal(t, "Title is mandatory", decodeMap(t, rr)["title"])

	rr = doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": "real title", "status": "  "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Status is mandatory", decodeMap(t, rr)["status"])

	// Nothing blank may reach the store.
	list := doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, "[]", list.Body.String())
}

func TestCreateTask_DuplicateTitle(t *testing.T) {
	r := newTestRouter(t)
	createTask(t, r, "Taken", "", "Pending")

	rr := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": "Taken", "status": "Pending"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeMap(t, rr)
	assert.Equal(t, "Task with the same title already exists", errs["error"])
}

func TestCreateTask_LimitReached(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 100; i++ {
		createTask(t, r, fmt.Sprintf("task-%03d", i), "", "Pending")
	}

	rr := doJSON(t, r, http.MethodPost, "/api/tasks", gin.H{"title": "one too many", "status": "Pending"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeMap(t, rr)
	assert.Equal(t, "Task limit reached. Cannot create more tasks.", errs["error"])

	list := doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var tasks []dto.TaskResponse
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 100)
}

func TestDeleteTask(t *testing.T) {
	r := newTestRouter(t)
	created := createTask(t, r, "to delete", "", "Pending")

	rr := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Task deleted successfully", decodeMap(t, rr)["message"])

	// Second delete: the row is gone, so the service reports not found.
	rr = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task not found", decodeMap(t, rr)["message"])
}

func TestDeleteTask_InvalidID(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodDelete, "/api/tasks/abc", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid id", decodeMap(t, rr)["error"])

	// Non-positive ids are malformed input; a well-formed numeric miss is a
	// not-found instead.
	rr = doJSON(t, r, http.MethodDelete, "/api/tasks/0", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid id", decodeMap(t, rr)["error"])

	rr = doJSON(t, r, http.MethodDelete, "/api/tasks/42", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task not found", decodeMap(t, rr)["message"])
}

func TestUpdateStatus(t *testing.T) {
	r := newTestRouter(t)
	created := createTask(t, r, "status me", "desc", "Pending")

	rr := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/tasks/%d/status?status=Completed", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeTask(t, rr)
	assert.Equal(t, "Completed", updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPut, "/api/tasks/42/status?status=Completed", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Task not found", decodeMap(t, rr)["error"])
}

func TestUpdateStatus_EmptyStatus(t *testing.T) {
	r := newTestRouter(t)
	created := createTask(t, r, "no status", "", "Pending")

	rr := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", created.ID), nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Status is mandatory", decodeMap(t, rr)["status"])
}

func TestUpdateFields_Partial(t *testing.T) {
	r := newTestRouter(t)
	created := createTask(t, r, "patch me", "old desc", "Pending")

	rr := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID),
		gin.H{"description": "new desc"})
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeTask(t, rr)
	assert.Equal(t, "new desc", updated.Description)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Status, updated.Status)
}

func TestUpdateFields_EmptyBodyIsNoOp(t *testing.T) {
	r := newTestRouter(t)
	created := createTask(t, r, "unchanged", "same", "Pending")

	rr := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID), gin.H{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created, decodeTask(t, rr))
}

func TestUpdateFields_WhitespaceOnlyTitle(t *testing.T) {
	r := newTestRouter(t)
	created := createTask(t, r, "keep title", "desc", "Pending")

	rr := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID),
		gin.H{"title": "   "})
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Equal(t, "Title is mandatory", decodeMap(t, rr)["title"])

	rr = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", created.ID),
		gin.H{"status": " "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Status is mandatory", decodeMap(t, rr)["status"])

	// The task is untouched.
	list := doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var tasks []dto.TaskResponse
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, created, tasks[0])
}

func TestUpdateFields_NotFound(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPatch, "/api/tasks/42", gin.H{"title": "ghost"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Task not found", decodeMap(t, rr)["error"])
}

func TestListTasks_Empty(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestRSSFeed(t *testing.T) {
	r := newTestRouter(t)
	createTask(t, r, "Test Task", "Task Description", "Pending")

	rr := doJSON(t, r, http.MethodGet, "/api/tasks/rss", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, rr.Body.String(), "<title>Test Task</title>")
	assert.Contains(t, rr.Body.String(), "Task Description")
	assert.Contains(t, rr.Body.String(), "Task Manager Feed")
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
