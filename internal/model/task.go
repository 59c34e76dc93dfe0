package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStore defines persistence operations for tasks. Every lookup is scoped by owner.
type TaskStore interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error
	Find(ctx context.Context, filter TaskFilter) ([]Task, int, error)
}

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority is the user-facing priority label of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() != 0
}

// Rank returns the numeric sort weight of the priority, 0 for unknown labels.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task represents a stored task owned by a single user.
type Task struct {
	ID           uuid.UUID  `json:"_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	PriorityRank int        `json:"priorityRank"`
	DueDate      *time.Time `json:"dueDate"`
	IsDraft      bool       `json:"isDraft"`
	OwnerID      uuid.UUID  `json:"userId"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SetPriority sets the priority label together with its rank.
func (t *Task) SetPriority(p Priority) {
	t.Priority = p
	t.PriorityRank = p.Rank()
}

// CreateTaskParams contains client input for a new task.
// There is deliberately no owner field: the owner is always the caller.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	IsDraft     bool
}

// TaskPatch contains the fields of a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *Status
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	IsDraft      *bool
}

// TaskQuery holds the raw list parameters as received from the client.
type TaskQuery struct {
	Status     string
	Priority   string
	IsDraft    *string
	DateFilter string
	Search     string
	SortBy     string
	SortOrder  string
	Page       string
	Limit      string
}

// Pagination describes the slice of results returned by a list call.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
