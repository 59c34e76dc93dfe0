package model

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SortField names the attribute a listing is ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
)

// DueWindow bounds the due date of matching tasks. Tasks without a due date never match.
type DueWindow struct {
	// After is the lower bound; inclusive when AfterInclusive is set.
	After          *time.Time
	AfterInclusive bool
	// Before is the exclusive upper bound.
	Before *time.Time
}

// Contains reports whether due falls inside the window.
func (w DueWindow) Contains(due *time.Time) bool {
	if due == nil {
		return false
	}
	if w.After != nil {
		if w.AfterInclusive && due.Before(*w.After) {
			return false
		}
		if !w.AfterInclusive && !due.After(*w.After) {
			return false
		}
	}
	if w.Before != nil && !due.Before(*w.Before) {
		return false
	}
	return true
}

// TaskFilter is a resolved store query: owner scope, predicates, ordering and window.
type TaskFilter struct {
	OwnerID       uuid.UUID
	Status        *Status
	ExcludeStatus *Status
	Priority      *Priority
	IsDraft       *bool
	Due           *DueWindow
	Search        string
	SortBy        SortField
	Descending    bool
	Offset        int
	Limit         int
}

// Matches reports whether the task satisfies every predicate of the filter.
func (f TaskFilter) Matches(t Task) bool {
	if t.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.ExcludeStatus != nil && t.Status == *f.ExcludeStatus {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.IsDraft != nil && t.IsDraft != *f.IsDraft {
		return false
	}
	if f.Due != nil && !f.Due.Contains(t.DueDate) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// Less orders two tasks by the filter's sort key, then newest first, then by id.
// Missing due dates sort first ascending and last descending.
func (f TaskFilter) Less(a, b Task) bool {
	var c int
	switch f.SortBy {
	case SortByDueDate:
		c = compareDue(a.DueDate, b.DueDate)
	case SortByPriority:
		c = compareInt(a.PriorityRank, b.PriorityRank)
	case SortByTitle:
		c = strings.Compare(a.Title, b.Title)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if f.Descending {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	if c = b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Key returns a canonical string for the filter, stable across equal filters.
func (f TaskFilter) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "owner=%s", f.OwnerID)
	if f.Status != nil {
		fmt.Fprintf(&sb, "|status=%s", *f.Status)
	}
	if f.ExcludeStatus != nil {
		fmt.Fprintf(&sb, "|not_status=%s", *f.ExcludeStatus)
	}
	if f.Priority != nil {
		fmt.Fprintf(&sb, "|priority=%s", *f.Priority)
	}
	if f.IsDraft != nil {
		fmt.Fprintf(&sb, "|draft=%t", *f.IsDraft)
	}
	if f.Due != nil {
		if f.Due.After != nil {
			fmt.Fprintf(&sb, "|due_after=%d:%t", f.Due.After.UnixNano(), f.Due.AfterInclusive)
		}
		if f.Due.Before != nil {
			fmt.Fprintf(&sb, "|due_before=%d", f.Due.Before.UnixNano())
		}
	}
	if f.Search != "" {
		fmt.Fprintf(&sb, "|search=%q", f.Search)
	}
	fmt.Fprintf(&sb, "|sort=%s:%t|offset=%d|limit=%d", f.SortBy, f.Descending, f.Offset, f.Limit)
	return sb.String()
}

func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
