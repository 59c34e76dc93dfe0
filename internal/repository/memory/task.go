package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/model"
)

var (
	_ model.TaskStore = (*TaskRepository)(nil)
	_ model.Pinger    = (*TaskRepository)(nil)
)

// TaskRepository provides in-memory task storage.
type TaskRepository struct {
	tasks map[uuid.UUID]model.Task
	mu    sync.RWMutex
}

// NewTaskRepository creates an empty task repository.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks: make(map[uuid.UUID]model.Task),
	}
}

func (r *TaskRepository) Create(_ context.Context, task model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task
	return task, nil
}

func (r *TaskRepository) GetByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return model.Task{}, model.ErrNotFound
	}
	return task, nil
}

func (r *TaskRepository) Update(_ context.Context, task model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[task.ID]
	if !ok || current.OwnerID != task.OwnerID {
		return model.Task{}, model.ErrNotFound
	}
	task.CreatedAt = current.CreatedAt
	r.tasks[task.ID] = task
	return task, nil
}

func (r *TaskRepository) DeleteByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// Find filters, orders and slices the caller's tasks the same way the SQL store does.
func (r *TaskRepository) Find(_ context.Context, filter model.TaskFilter) ([]model.Task, int, error) {
	r.mu.RLock()
	matched := make([]model.Task, 0)
	for _, task := range r.tasks {
		if filter.Matches(task) {
			matched = append(matched, task)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Task) int {
		switch {
		case filter.Less(a, b):
			return -1
		case filter.Less(b, a):
			return 1
		}
		return 0
	})

	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = start + min(filter.Limit, total-start)
	}

	return matched[start:end], total, nil
}

// Ping always succeeds.
func (r *TaskRepository) Ping(context.Context) error {
	return nil
}
