package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters in a task title.
const MaxTitleLength = 255

// Task represents a single unit of work tracked by the application.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask holds the caller supplied fields for a task that does not exist yet.
// Zero values for Status and Priority mean "use the default".
type NewTask struct {
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
}

// TaskPatch is a partial update. Nil pointers and unset Nullables leave the
// existing value untouched; a null Nullable clears the field.
type TaskPatch struct {
	Title       *string
	Description Nullable[string]
	Status      *Status
	Priority    *Priority
	DueDate     Nullable[time.Time]
}

// Build turns the input into a Task with defaults applied and both timestamps
// set to now. Returns a *ValidationError if the input is invalid.
func (n NewTask) Build(id int64, now time.Time) (*Task, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	status := n.Status
	if status == "" {
		status = StatusOpen
	}
	priority := n.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	now = now.UTC()
	return &Task{
		ID:          id,
		Title:       n.Title,
		Description: cloneString(n.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     cloneTime(n.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Validate checks the new task fields.
func (n NewTask) Validate() error {
	verr := &ValidationError{}
	validateTitle(verr, n.Title)
	if n.Status != "" && !n.Status.Valid() {
		verr.Add("status", "oneof", "must be one of: open progress completed")
	}
	if n.Priority != "" && !n.Priority.Valid() {
		verr.Add("priority", "oneof", "must be one of: low medium high")
	}
	return verr.OrNil()
}

// Validate checks the fields present in the patch.
func (p TaskPatch) Validate() error {
	verr := &ValidationError{}
	if p.Title != nil {
		validateTitle(verr, *p.Title)
	}
	if p.Status != nil && !p.Status.Valid() {
		verr.Add("status", "oneof", "must be one of: open progress completed")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		verr.Add("priority", "oneof", "must be one of: low medium high")
	}
	return verr.OrNil()
}

// Apply merges the patch into t and bumps UpdatedAt. UpdatedAt never moves
// before CreatedAt.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description.Set {
		t.Description = cloneString(p.Description.Value)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate.Set {
		t.DueDate = cloneTime(p.DueDate.Value)
	}

	now = now.UTC()
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.Description = cloneString(t.Description)
	c.DueDate = cloneTime(t.DueDate)
	return &c
}

// IsOverdue reports whether the task has a due date before now and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// MatchesText reports whether query appears in the title or description,
// ignoring case.
func (t *Task) MatchesText(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
}

// SortNewestFirst orders tasks by CreatedAt descending, newest first.
// Tasks created at the same instant are ordered by ID descending.
func SortNewestFirst(tasks []*Task) {
	slices.SortFunc(tasks, func(a, b *Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func validateTitle(verr *ValidationError, title string) {
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		verr.Add("title", "required", "is required")
	case n > MaxTitleLength:
		verr.Add("title", "max", "must be at most 255 characters")
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
