package service

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskflow-server/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 1000
)

// Date filters accepted by the list endpoint.
const (
	DateFilterToday    = "today"
	DateFilterUpcoming = "upcoming"
	DateFilterOverdue  = "overdue"
)

// buildTaskFilter resolves raw list parameters into a store filter scoped to ownerID.
// Day boundaries are computed in the location of now.
func buildTaskFilter(ownerID uuid.UUID, q model.TaskQuery, now time.Time) (model.TaskFilter, int, int) {
	f := model.TaskFilter{OwnerID: ownerID}

	if q.Status != "" {
		s := model.Status(q.Status)
		f.Status = &s
	}
	if q.Priority != "" {
		p := model.Priority(q.Priority)
		f.Priority = &p
	}
	if q.IsDraft != nil {
		draft := *q.IsDraft == "true"
		f.IsDraft = &draft
	}

	start := startOfDay(now)
	switch q.DateFilter {
	case DateFilterToday:
		end := start.AddDate(0, 0, 1)
		f.Due = &model.DueWindow{After: &start, AfterInclusive: true, Before: &end}
	case DateFilterUpcoming:
		f.Due = &model.DueWindow{After: &start}
	case DateFilterOverdue:
		completed := model.StatusCompleted
		f.Due = &model.DueWindow{Before: &start}
		f.Status = nil
		f.ExcludeStatus = &completed
	}

	f.Search = q.Search

	switch sortBy := model.SortField(q.SortBy); sortBy {
	case model.SortByDueDate, model.SortByPriority, model.SortByTitle, model.SortByCreatedAt:
		f.SortBy = sortBy
		f.Descending = q.SortOrder == "desc"
	default:
		f.SortBy = model.SortByCreatedAt
		f.Descending = true
	}

	page := positiveOr(q.Page, DefaultPage)
	limit := positiveOr(q.Limit, DefaultLimit)

	f.Limit = limit
	if page-1 > math.MaxInt/limit {
		f.Offset = math.MaxInt
	} else {
		f.Offset = (page - 1) * limit
	}

	return f, page, limit
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// pageCount is ceil(total/limit) without the overflow of total+limit-1.
func pageCount(total, limit int) int {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
