package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/model"
)

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// MakeTask builds a task owned by owner with defaults applied. Options mutate the result.
func MakeTask(owner uuid.UUID, title string, opts ...func(*model.Task)) model.Task {
	task := model.Task{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     title,
		Status:    model.StatusTodo,
		CreatedAt: time.Now(),
	}
	task.SetPriority(model.PriorityMedium)
	for _, opt := range opts {
		opt(&task)
	}
	return task
}
