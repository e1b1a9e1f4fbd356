package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RomanPilyushin/Privatbank/internal/dto"
	"github.com/RomanPilyushin/Privatbank/internal/feed"
	"github.com/RomanPilyushin/Privatbank/internal/service"
)

type TaskHandler struct {
	svc  *service.TaskService
	feed *feed.Accumulator
}

func NewTaskHandler(svc *service.TaskService, f *feed.Accumulator) *TaskHandler {
	return &TaskHandler{svc: svc, feed: f}
}

// Create godoc
// @Summary      Create a new task
// @Description  Create a new task with the given details
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationMessages(err))
		return
	}
	if msgs := req.BlankFieldMessages(); msgs != nil {
		c.JSON(http.StatusBadRequest, msgs)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), req.Title, req.Description, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateTitle) || errors.Is(err, service.ErrTaskLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Description  Delete a task by its ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// UpdateStatus godoc
// @Summary      Update task status
// @Description  Update the status of a task
// @Tags         tasks
// @Produce      json
// @Param        id      path      int     true  "Task ID"
// @Param        status  query     string  true  "New status"
// @Success      200     {object}  dto.TaskResponse
// @Failure      400     {object}  map[string]string
// @Router       /tasks/{id}/status [put]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	status := strings.TrimSpace(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "Status is mandatory"})
		return
	}
	t, err := h.svc.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// UpdateFields godoc
// @Summary      Update task fields
// @Description  Update specific fields of a task; absent fields stay as they are
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) UpdateFields(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationMessages(err))
		return
	}
	if msgs := req.BlankFieldMessages(); msgs != nil {
		c.JSON(http.StatusBadRequest, msgs)
		return
	}
	t, err := h.svc.UpdateFields(c.Request.Context(), id, req.Title, req.Description, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// List godoc
// @Summary      Get list of tasks
// @Description  Retrieve a list of all tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   dto.TaskResponse
// @Failure      500  {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.TasksToResponses(list))
}

// RSS godoc
// @Summary      Task feed
// @Description  RSS 2.0 feed of created tasks
// @Tags         tasks
// @Produce      xml
// @Success      200  {string}  string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/rss [get]
func (h *TaskHandler) RSS(c *gin.Context) {
	doc, err := h.feed.Render()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(doc))
}

// parseID treats non-numeric and non-positive ids as malformed input and
// answers 400 "invalid id" before the service is involved. A well-formed id
// that matches no row surfaces as not-found instead (404 on delete, 400 with
// "Task not found" elsewhere), so the two miss shapes differ on purpose.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
