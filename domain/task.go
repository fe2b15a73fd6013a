package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the Kanban column a task belongs to. The wire values match the
// board column headers exactly.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists all statuses in fixed board order.
func Statuses() [3]Status {
	return [3]Status{StatusToDo, StatusInProgress, StatusCompleted}
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus converts free-form input to a Status. Matching ignores case
// and surrounding whitespace.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range Statuses() {
		if normalized == strings.ToLower(string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is a member of the closed priority set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank returns the sort ordinal: Low=0, Medium=1, High=2.
func (p Priority) Rank() int {
	switch p {
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	}
	return 0
}

// ParsePriority converts free-form input to a Priority.
func ParsePriority(raw string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if normalized == strings.ToLower(string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// Task is a single unit of work owned by one user. The id is assigned by the
// server on creation and immutable afterwards.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      Status             `bson:"status" json:"status"`
	Priority    Priority           `bson:"priority" json:"priority"`
	DueDate     *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	User        string             `bson:"user" json:"user"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Validate checks the task's own fields. Ownership and id assignment are the
// caller's concern.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
