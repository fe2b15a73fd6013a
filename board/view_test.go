package board

import (
	"testing"
	"time"

	"trustbyte/domain"
)

func dueTask(title string, due *time.Time) domain.Task {
	t := newTask(title, domain.StatusToDo, domain.PriorityMedium)
	t.DueDate = due
	return t
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestColumnsFixedOrderAndInsertionOrder(t *testing.T) {
	tasks := []domain.Task{
		newTask("c1", domain.StatusCompleted, domain.PriorityLow),
		newTask("t1", domain.StatusToDo, domain.PriorityLow),
		newTask("p1", domain.StatusInProgress, domain.PriorityLow),
		newTask("t2", domain.StatusToDo, domain.PriorityHigh),
		newTask("c2", domain.StatusCompleted, domain.PriorityHigh),
	}

	columns := Columns(tasks)
	if len(columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(columns))
	}
	if columns[0].Status != domain.StatusToDo || columns[1].Status != domain.StatusInProgress || columns[2].Status != domain.StatusCompleted {
		t.Fatalf("unexpected column order: %v %v %v", columns[0].Status, columns[1].Status, columns[2].Status)
	}
	if !equalStrings(titles(columns[0].Tasks), []string{"t1", "t2"}) {
		t.Fatalf("To Do bucket lost insertion order: %v", titles(columns[0].Tasks))
	}
	if !equalStrings(titles(columns[2].Tasks), []string{"c1", "c2"}) {
		t.Fatalf("Completed bucket lost insertion order: %v", titles(columns[2].Tasks))
	}
}

func TestColumnsGroupingCompleteness(t *testing.T) {
	tasks := []domain.Task{
		newTask("a", domain.StatusToDo, domain.PriorityLow),
		newTask("b", domain.StatusInProgress, domain.PriorityLow),
		newTask("c", domain.StatusCompleted, domain.PriorityLow),
		newTask("d", domain.StatusInProgress, domain.PriorityHigh),
	}

	columns := Columns(tasks)
	seen := map[string]int{}
	total := 0
	for _, col := range columns {
		for _, task := range col.Tasks {
			seen[task.ID.Hex()]++
			total++
		}
	}
	if total != len(tasks) {
		t.Fatalf("union of buckets has %d tasks, want %d", total, len(tasks))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("task %s appears %d times", id, n)
		}
	}
}

func TestColumnsEmptyInput(t *testing.T) {
	columns := Columns(nil)
	for _, col := range columns {
		if len(col.Tasks) != 0 {
			t.Fatalf("expected empty buckets, got %#v", col)
		}
	}
}

func TestFilterCorrectness(t *testing.T) {
	tasks := []domain.Task{
		newTask("a", domain.StatusToDo, domain.PriorityLow),
		newTask("b", domain.StatusToDo, domain.PriorityHigh),
		newTask("c", domain.StatusInProgress, domain.PriorityLow),
		newTask("d", domain.StatusCompleted, domain.PriorityHigh),
	}

	statusFilters := []domain.Status{"", domain.StatusToDo, domain.StatusInProgress, domain.StatusCompleted}
	priorityFilters := []domain.Priority{"", domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh}

	for _, sf := range statusFilters {
		for _, pf := range priorityFilters {
			got := FilterSort(tasks, Query{Status: sf, Priority: pf})
			for _, task := range got {
				if (sf != "" && task.Status != sf) || (pf != "" && task.Priority != pf) {
					t.Fatalf("filter (%q,%q) let through %#v", sf, pf, task)
				}
			}
			// Every task that passes both predicates must be present.
			want := 0
			for _, task := range tasks {
				if (sf == "" || task.Status == sf) && (pf == "" || task.Priority == pf) {
					want++
				}
			}
			if len(got) != want {
				t.Fatalf("filter (%q,%q) returned %d tasks, want %d", sf, pf, len(got), want)
			}
		}
	}
}

func TestFilterSortNonePreservesStoreOrder(t *testing.T) {
	tasks := []domain.Task{
		newTask("z", domain.StatusToDo, domain.PriorityHigh),
		newTask("a", domain.StatusToDo, domain.PriorityLow),
		newTask("m", domain.StatusToDo, domain.PriorityMedium),
	}
	got := FilterSort(tasks, Query{SortBy: SortNone})
	if !equalStrings(titles(got), []string{"z", "a", "m"}) {
		t.Fatalf("store order not preserved: %v", titles(got))
	}
}

func TestSortByTitle(t *testing.T) {
	tasks := []domain.Task{
		newTask("banana", domain.StatusToDo, domain.PriorityLow),
		newTask("Apple", domain.StatusToDo, domain.PriorityLow),
		newTask("cherry", domain.StatusToDo, domain.PriorityLow),
	}

	asc := FilterSort(tasks, Query{SortBy: SortTitle, Order: Ascending})
	if !equalStrings(titles(asc), []string{"Apple", "banana", "cherry"}) {
		t.Fatalf("ascending title sort: %v", titles(asc))
	}

	desc := FilterSort(tasks, Query{SortBy: SortTitle, Order: Descending})
	if !equalStrings(titles(desc), []string{"cherry", "banana", "Apple"}) {
		t.Fatalf("descending title sort: %v", titles(desc))
	}
}

func TestSortByPriority(t *testing.T) {
	tasks := []domain.Task{
		newTask("m", domain.StatusToDo, domain.PriorityMedium),
		newTask("h", domain.StatusToDo, domain.PriorityHigh),
		newTask("l", domain.StatusToDo, domain.PriorityLow),
	}

	asc := FilterSort(tasks, Query{SortBy: SortPriority, Order: Ascending})
	if !equalStrings(titles(asc), []string{"l", "m", "h"}) {
		t.Fatalf("ascending priority sort: %v", titles(asc))
	}

	desc := FilterSort(tasks, Query{SortBy: SortPriority, Order: Descending})
	if !equalStrings(titles(desc), []string{"h", "m", "l"}) {
		t.Fatalf("descending priority sort: %v", titles(desc))
	}
}

func TestSortByDueDateUndatedAsymmetry(t *testing.T) {
	tasks := []domain.Task{
		dueTask("A", datePtr(2024, time.January, 1)),
		dueTask("B", nil),
		dueTask("C", datePtr(2024, time.June, 1)),
	}

	asc := FilterSort(tasks, Query{SortBy: SortDueDate, Order: Ascending})
	if !equalStrings(titles(asc), []string{"A", "C", "B"}) {
		t.Fatalf("ascending due-date sort: %v", titles(asc))
	}

	desc := FilterSort(tasks, Query{SortBy: SortDueDate, Order: Descending})
	if !equalStrings(titles(desc), []string{"B", "C", "A"}) {
		t.Fatalf("descending due-date sort: %v", titles(desc))
	}
}

func TestFilterSortDoesNotMutateInput(t *testing.T) {
	tasks := []domain.Task{
		newTask("z", domain.StatusToDo, domain.PriorityLow),
		newTask("a", domain.StatusToDo, domain.PriorityHigh),
	}
	_ = FilterSort(tasks, Query{SortBy: SortTitle, Order: Ascending})
	if !equalStrings(titles(tasks), []string{"z", "a"}) {
		t.Fatalf("projection mutated its input: %v", titles(tasks))
	}
}

func TestFilterThenSortCombined(t *testing.T) {
	tasks := []domain.Task{
		newTask("delta", domain.StatusInProgress, domain.PriorityHigh),
		newTask("alpha", domain.StatusToDo, domain.PriorityHigh),
		newTask("bravo", domain.StatusInProgress, domain.PriorityHigh),
		newTask("carol", domain.StatusInProgress, domain.PriorityLow),
	}
	got := FilterSort(tasks, Query{
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityHigh,
		SortBy:   SortTitle,
		Order:    Ascending,
	})
	if !equalStrings(titles(got), []string{"bravo", "delta"}) {
		t.Fatalf("combined filter+sort: %v", titles(got))
	}
}
