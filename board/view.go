package board

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"trustbyte/domain"
)

// SortKey selects the list-view sort column.
type SortKey string

const (
	SortNone     SortKey = "none"
	SortTitle    SortKey = "title"
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "dueDate"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query holds the list-view filter and sort selectors. Zero-valued Status and
// Priority mean "all".
type Query struct {
	Status   domain.Status
	Priority domain.Priority
	SortBy   SortKey
	Order    Direction
}

// Column is one Kanban bucket.
type Column struct {
	Status domain.Status
	Tasks  []domain.Task
}

// Columns partitions tasks into the three status buckets in fixed board
// order. Tasks keep their store order inside each bucket so cards do not
// jump around during a drag.
func Columns(tasks []domain.Task) []Column {
	order := domain.Statuses()
	index := make(map[domain.Status]int, len(order))
	columns := make([]Column, len(order))
	for i, s := range order {
		columns[i] = Column{Status: s}
		index[s] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, t)
		}
	}
	return columns
}

// matches applies the ANDed status and priority filters.
func (q Query) matches(t domain.Task) bool {
	if q.Status != "" && t.Status != q.Status {
		return false
	}
	if q.Priority != "" && t.Priority != q.Priority {
		return false
	}
	return true
}

var titleCollator = collate.New(language.English)

// FilterSort projects the task list through the query: filter first, then
// sort unless the sort key is none, in which case store order is preserved.
// The input slice is never mutated.
func FilterSort(tasks []domain.Task, q Query) []domain.Task {
	filtered := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if q.matches(t) {
			filtered = append(filtered, t)
		}
	}
	if q.SortBy == "" || q.SortBy == SortNone {
		return filtered
	}

	desc := q.Order == Descending
	sort.SliceStable(filtered, func(i, j int) bool {
		return compareTasks(filtered[i], filtered[j], q.SortBy, desc) < 0
	})
	return filtered
}

// compareTasks returns a negative value when a sorts before b. The undated
// branch of the due-date comparison is direction-asymmetric on purpose:
// tasks without a due date go after all dated tasks when ascending and
// before them when descending.
func compareTasks(a, b domain.Task, key SortKey, desc bool) int {
	switch key {
	case SortTitle:
		cmp := titleCollator.CompareString(a.Title, b.Title)
		if desc {
			return -cmp
		}
		return cmp
	case SortPriority:
		cmp := a.Priority.Rank() - b.Priority.Rank()
		if desc {
			return -cmp
		}
		return cmp
	case SortDueDate:
		if a.DueDate == nil {
			if desc {
				return -1
			}
			return 1
		}
		if b.DueDate == nil {
			if desc {
				return 1
			}
			return -1
		}
		var cmp int
		switch {
		case a.DueDate.Before(*b.DueDate):
			cmp = -1
		case a.DueDate.After(*b.DueDate):
			cmp = 1
		}
		if desc {
			return -cmp
		}
		return cmp
	}
	return 0
}
