package postgres

import (
	"fmt"
	"strings"

	"github.com/dtroode/taskflow-server/internal/model"
)

const taskColumns = `id, owner_id, title, description, status, priority, priority_rank, due_date, is_draft, created_at`

// buildWhere translates the predicates of f into a WHERE clause and its positional args.
// The owner condition is always present and always $1.
func buildWhere(f model.TaskFilter) (string, []any) {
	conds := []string{"owner_id = $1"}
	args := []any{f.OwnerID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != nil {
		conds = append(conds, "status = "+arg(string(*f.Status)))
	}
	if f.ExcludeStatus != nil {
		conds = append(conds, "status <> "+arg(string(*f.ExcludeStatus)))
	}
	if f.Priority != nil {
		conds = append(conds, "priority = "+arg(string(*f.Priority)))
	}
	if f.IsDraft != nil {
		conds = append(conds, "is_draft = "+arg(*f.IsDraft))
	}
	if f.Due != nil {
		conds = append(conds, "due_date IS NOT NULL")
		if f.Due.After != nil {
			op := ">"
			if f.Due.AfterInclusive {
				op = ">="
			}
			conds = append(conds, fmt.Sprintf("due_date %s %s", op, arg(*f.Due.After)))
		}
		if f.Due.Before != nil {
			conds = append(conds, "due_date < "+arg(*f.Due.Before))
		}
	}
	if f.Search != "" {
		p := arg(f.Search)
		conds = append(conds, fmt.Sprintf(
			"(strpos(lower(title), lower(%[1]s)) > 0 OR strpos(lower(description), lower(%[1]s)) > 0)", p))
	}

	return strings.Join(conds, " AND "), args
}

// orderBy returns the ORDER BY list for f. It mirrors model.TaskFilter.Less.
func orderBy(f model.TaskFilter) string {
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}

	var primary string
	switch f.SortBy {
	case model.SortByDueDate:
		nulls := "NULLS FIRST"
		if f.Descending {
			nulls = "NULLS LAST"
		}
		primary = fmt.Sprintf("due_date %s %s", dir, nulls)
	case model.SortByPriority:
		primary = "priority_rank " + dir
	case model.SortByTitle:
		primary = `title COLLATE "C" ` + dir
	default:
		primary = "created_at " + dir
	}

	return primary + ", created_at DESC, id ASC"
}

// buildFind returns the page query and the count query for f.
func buildFind(f model.TaskFilter) (selectSQL string, countSQL string, args []any) {
	where, args := buildWhere(f)

	countSQL = "SELECT count(*) FROM tasks WHERE " + where

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM tasks WHERE %s ORDER BY %s", taskColumns, where, orderBy(f))
	if f.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", f.Offset)
	}

	return sb.String(), countSQL, args
}
