package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const tracerName = "github.com/dtroode/taskflow-server/internal/service"

// Task creates, lists, updates and deletes the caller's tasks.
// Every operation is scoped to the identity it is given.
type Task struct {
	store  model.TaskStore
	logger *logger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func NewTask(store model.TaskStore, logger *logger.Logger) *Task {
	return &Task{
		store:  store,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

func (s *Task) Create(ctx context.Context, caller model.Identity, params model.CreateTaskParams) (model.Task, error) {
	ctx, span := s.tracer.Start(ctx, "Task.Create", trace.WithAttributes(
		attribute.String("user.id", caller.ID.String()),
	))
	defer span.End()

	if params.Title == "" {
		return model.Task{}, apiErrors.NewErrTaskTitleRequired()
	}
	if params.Status == "" {
		params.Status = model.StatusTodo
	}
	if !params.Status.Valid() {
		return model.Task{}, apiErrors.NewErrInvalidStatus(string(params.Status))
	}
	if params.Priority == "" {
		params.Priority = model.PriorityMedium
	}
	if !params.Priority.Valid() {
		return model.Task{}, apiErrors.NewErrInvalidPriority(string(params.Priority))
	}

	task := model.Task{
		ID:          uuid.New(),
		OwnerID:     caller.ID,
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		DueDate:     params.DueDate,
		IsDraft:     params.IsDraft,
		CreatedAt:   s.now(),
	}
	task.SetPriority(params.Priority)

	saved, err := s.store.Create(ctx, task)
	if err != nil {
		s.fail(span, "failed to create task", err, "user_id", caller.ID)
		return model.Task{}, apiErrors.NewErrInternalServerError("Error creating task", err)
	}

	span.SetAttributes(attribute.String("task.id", saved.ID.String()))
	s.logger.Info("Task service: task created",
		"user_id", caller.ID,
		"task_id", saved.ID)

	return saved, nil
}

// List returns one page of the caller's tasks matching q.
func (s *Task) List(ctx context.Context, caller model.Identity, q model.TaskQuery) (model.TaskPage, error) {
	ctx, span := s.tracer.Start(ctx, "Task.List", trace.WithAttributes(
		attribute.String("user.id", caller.ID.String()),
	))
	defer span.End()

	filter, page, limit := buildTaskFilter(caller.ID, q, s.now())

	tasks, total, err := s.store.Find(ctx, filter)
	if err != nil {
		s.fail(span, "failed to find tasks", err, "user_id", caller.ID)
		return model.TaskPage{}, apiErrors.NewErrInternalServerError("Error fetching tasks", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	span.SetAttributes(attribute.Int("tasks.total", total))
	s.logger.Debug("Task service: tasks listed",
		"user_id", caller.ID,
		"total", total,
		"page", page,
		"limit", limit)

	return model.TaskPage{
		Tasks: tasks,
		Pagination: model.Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pageCount(total, limit),
		},
	}, nil
}

// Update applies patch to a task owned by the caller.
func (s *Task) Update(ctx context.Context, caller model.Identity, rawID string, patch model.TaskPatch) (model.Task, error) {
	ctx, span := s.tracer.Start(ctx, "Task.Update", trace.WithAttributes(
		attribute.String("user.id", caller.ID.String()),
		attribute.String("task.id", rawID),
	))
	defer span.End()

	task, err := s.loadOwned(ctx, caller, rawID, apiErrors.TaskActionUpdate)
	if err != nil {
		if !isNotFound(err) {
			s.fail(span, "failed to load task", err, "user_id", caller.ID, "task_id", rawID)
		}
		return model.Task{}, err
	}

	if err := applyPatch(&task, patch); err != nil {
		return model.Task{}, err
	}

	saved, err := s.store.Update(ctx, task)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Task{}, apiErrors.NewErrTaskNotFound(apiErrors.TaskActionUpdate)
		}
		s.fail(span, "failed to update task", err, "user_id", caller.ID, "task_id", task.ID)
		return model.Task{}, apiErrors.NewErrInternalServerError("Error updating task", err)
	}

	s.logger.Info("Task service: task updated",
		"user_id", caller.ID,
		"task_id", saved.ID)

	return saved, nil
}

// Delete removes a task owned by the caller.
func (s *Task) Delete(ctx context.Context, caller model.Identity, rawID string) error {
	ctx, span := s.tracer.Start(ctx, "Task.Delete", trace.WithAttributes(
		attribute.String("user.id", caller.ID.String()),
		attribute.String("task.id", rawID),
	))
	defer span.End()

	task, err := s.loadOwned(ctx, caller, rawID, apiErrors.TaskActionDelete)
	if err != nil {
		if !isNotFound(err) {
			s.fail(span, "failed to load task", err, "user_id", caller.ID, "task_id", rawID)
		}
		return err
	}
	id := task.ID

	if err := s.store.DeleteByIDAndOwner(ctx, id, caller.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.NewErrTaskNotFound(apiErrors.TaskActionDelete)
		}
		s.fail(span, "failed to delete task", err, "user_id", caller.ID, "task_id", id)
		return apiErrors.NewErrInternalServerError("Error deleting task", err)
	}

	s.logger.Info("Task service: task deleted",
		"user_id", caller.ID,
		"task_id", id)

	return nil
}

// loadOwned returns the task only when it exists and belongs to caller.
// Malformed ids, missing tasks and foreign tasks all produce the same not-found error.
func (s *Task) loadOwned(ctx context.Context, caller model.Identity, rawID string, action apiErrors.TaskAction) (model.Task, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return model.Task{}, apiErrors.NewErrTaskNotFound(action)
	}

	task, err := s.store.GetByIDAndOwner(ctx, id, caller.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Task{}, apiErrors.NewErrTaskNotFound(action)
		}
		return model.Task{}, apiErrors.NewErrInternalServerError("Error loading task", err)
	}

	return task, nil
}

func (s *Task) fail(span trace.Span, msg string, err error, args ...any) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.Error("Task service: "+msg, append(args, "error", err.Error())...)
}

func applyPatch(task *model.Task, patch model.TaskPatch) error {
	if patch.Title != nil {
		if *patch.Title == "" {
			return apiErrors.NewErrTaskTitleRequired()
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return apiErrors.NewErrInvalidStatus(string(*patch.Status))
		}
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return apiErrors.NewErrInvalidPriority(string(*patch.Priority))
		}
		task.SetPriority(*patch.Priority)
	}
	switch {
	case patch.ClearDueDate:
		task.DueDate = nil
	case patch.DueDate != nil:
		task.DueDate = patch.DueDate
	}
	if patch.IsDraft != nil {
		task.IsDraft = *patch.IsDraft
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *apiErrors.APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
