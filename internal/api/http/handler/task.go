package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// TaskService defines the task operations available to an authenticated caller.
type TaskService interface {
	Create(ctx context.Context, caller model.Identity, params model.CreateTaskParams) (model.Task, error)
	List(ctx context.Context, caller model.Identity, q model.TaskQuery) (model.TaskPage, error)
	Update(ctx context.Context, caller model.Identity, rawID string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, caller model.Identity, rawID string) error
}

// taskRequest is the body of create and update calls. Owner fields are not
// part of it and are dropped on decode.
type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	IsDraft     *bool   `json:"isDraft"`
}

// Task handles the /api/tasks endpoints. Every route must run behind the Authenticate middleware.
type Task struct {
	taskService    TaskService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewTask(taskService TaskService, contextManager model.ContextManager, logger *logger.Logger) *Task {
	return &Task{
		taskService:    taskService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Task) Create(c echo.Context) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	params := model.CreateTaskParams{
		Title:       deref(req.Title),
		Description: deref(req.Description),
		Status:      model.Status(deref(req.Status)),
		Priority:    model.Priority(deref(req.Priority)),
	}
	if req.IsDraft != nil {
		params.IsDraft = *req.IsDraft
	}
	if req.DueDate != nil {
		if params.DueDate, err = parseDueDate(*req.DueDate); err != nil {
			return err
		}
	}

	task, err := h.taskService.Create(c.Request().Context(), caller, params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Task) List(c echo.Context) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	q := model.TaskQuery{
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		DateFilter: c.QueryParam("dateFilter"),
		Search:     c.QueryParam("search"),
		SortBy:     c.QueryParam("sortBy"),
		SortOrder:  c.QueryParam("sortOrder"),
		Page:       c.QueryParam("page"),
		Limit:      c.QueryParam("limit"),
	}
	if values, ok := c.QueryParams()["isDraft"]; ok && len(values) > 0 {
		q.IsDraft = &values[0]
	}

	page, err := h.taskService.List(c.Request().Context(), caller, q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

func (h *Task) Update(c echo.Context) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	data, err := readBody(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	var fields map[string]any
	if err := decode(data, &fields); err != nil {
		return err
	}

	patch := model.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		IsDraft:     req.IsDraft,
	}
	if req.Status != nil {
		s := model.Status(*req.Status)
		patch.Status = &s
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		patch.Priority = &p
	}
	if raw, present := fields["dueDate"]; present && raw == nil {
		patch.ClearDueDate = true
	} else if req.DueDate != nil {
		if patch.DueDate, err = parseDueDate(*req.DueDate); err != nil {
			return err
		}
		patch.ClearDueDate = patch.DueDate == nil
	}

	task, err := h.taskService.Update(c.Request().Context(), caller, c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Task) Delete(c echo.Context) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}

func (h *Task) caller(c echo.Context) (model.Identity, error) {
	identity, ok := h.contextManager.GetIdentityFromContext(c.Request().Context())
	if !ok {
		h.logger.Error("Task handler: no caller identity on request context", "path", c.Path())
		return model.Identity{}, apiErrors.NewErrMissingAuthorizationToken()
	}
	return identity, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
