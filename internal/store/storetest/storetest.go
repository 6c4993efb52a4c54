// Package storetest provides a behavioural test suite that every
// store.TaskStore implementation must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Factory builds an empty store whose timestamps come from clock.
type Factory func(t *testing.T, clock *Clock) store.TaskStore

// Start is the initial time of every suite clock. It has no sub-microsecond
// part so every backend can represent it exactly.
var Start = time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

// Run executes the full suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	setup := func(t *testing.T) (context.Context, store.TaskStore, *Clock) {
		clock := NewClock(Start)
		return context.Background(), newStore(t, clock), clock
	}

	t.Run("create_applies_defaults", func(t *testing.T) {
		ctx, s, _ := setup(t)

		task, err := s.Create(ctx, domain.NewTask{Title: "Only a title"})
		require.NoError(t, err)

		assert.Positive(t, task.ID)
		assert.Equal(t, "Only a title", task.Title)
		assert.Equal(t, domain.StatusOpen, task.Status)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.DueDate)
		assertSameInstant(t, Start, task.CreatedAt)
		assertSameInstant(t, task.CreatedAt, task.UpdatedAt)

		stored, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Title, stored.Title)
		assert.Nil(t, stored.Description)
		assert.Nil(t, stored.DueDate)
		assertSameInstant(t, task.CreatedAt, stored.CreatedAt)
	})

	t.Run("create_keeps_supplied_fields", func(t *testing.T) {
		ctx, s, _ := setup(t)

		desc := "with details"
		due := Start.Add(72 * time.Hour)
		task, err := s.Create(ctx, domain.NewTask{
			Title:       "Full",
			Description: &desc,
			Status:      domain.StatusProgress,
			Priority:    domain.PriorityHigh,
			DueDate:     &due,
		})
		require.NoError(t, err)

		stored, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProgress, stored.Status)
		assert.Equal(t, domain.PriorityHigh, stored.Priority)
		require.NotNil(t, stored.Description)
		assert.Equal(t, desc, *stored.Description)
		require.NotNil(t, stored.DueDate)
		assertSameInstant(t, due, *stored.DueDate)
	})

	t.Run("create_rejects_invalid_input", func(t *testing.T) {
		ctx, s, _ := setup(t)

		_, err := s.Create(ctx, domain.NewTask{Title: "", Status: "done"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("ids_increase_and_are_never_reused", func(t *testing.T) {
		ctx, s, _ := setup(t)

		var last int64
		ids := make([]int64, 0, 4)
		for _, title := range []string{"one", "two", "three"} {
			task, err := s.Create(ctx, domain.NewTask{Title: title})
			require.NoError(t, err)
			assert.Greater(t, task.ID, last)
			last = task.ID
			ids = append(ids, task.ID)
		}

		require.NoError(t, s.Delete(ctx, ids[2]))
		require.NoError(t, s.Delete(ctx, ids[0]))

		task, err := s.Create(ctx, domain.NewTask{Title: "four"})
		require.NoError(t, err)
		assert.Greater(t, task.ID, last)
		assert.NotContains(t, ids, task.ID)
	})

	t.Run("get_missing_returns_not_found", func(t *testing.T) {
		ctx, s, _ := setup(t)

		_, err := s.GetByID(ctx, 999)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("update_merges_fields_and_bumps_updated_at", func(t *testing.T) {
		ctx, s, clock := setup(t)

		desc := "to be cleared"
		due := Start.Add(24 * time.Hour)
		task, err := s.Create(ctx, domain.NewTask{Title: "Before", Description: &desc, DueDate: &due})
		require.NoError(t, err)

		clock.Advance(time.Minute)
		status := domain.StatusCompleted
		updated, err := s.Update(ctx, task.ID, domain.TaskPatch{
			Status:      &status,
			Description: domain.Null[string](),
		})
		require.NoError(t, err)

		assert.Equal(t, task.ID, updated.ID)
		assert.Equal(t, "Before", updated.Title)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
		assert.Equal(t, domain.PriorityMedium, updated.Priority)
		assert.Nil(t, updated.Description)
		require.NotNil(t, updated.DueDate)
		assertSameInstant(t, due, *updated.DueDate)
		assertSameInstant(t, task.CreatedAt, updated.CreatedAt)
		assertSameInstant(t, Start.Add(time.Minute), updated.UpdatedAt)

		stored, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, stored.Status)
		assert.Nil(t, stored.Description)
		assertSameInstant(t, updated.UpdatedAt, stored.UpdatedAt)
	})

	t.Run("update_sets_and_clears_due_date", func(t *testing.T) {
		ctx, s, clock := setup(t)

		task, err := s.Create(ctx, domain.NewTask{Title: "Due later"})
		require.NoError(t, err)

		clock.Advance(time.Second)
		due := Start.Add(48 * time.Hour)
		updated, err := s.Update(ctx, task.ID, domain.TaskPatch{DueDate: domain.Some(due)})
		require.NoError(t, err)
		require.NotNil(t, updated.DueDate)
		assertSameInstant(t, due, *updated.DueDate)

		clock.Advance(time.Second)
		updated, err = s.Update(ctx, task.ID, domain.TaskPatch{DueDate: domain.Null[time.Time]()})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("update_rejects_invalid_patch", func(t *testing.T) {
		ctx, s, _ := setup(t)

		task, err := s.Create(ctx, domain.NewTask{Title: "Valid"})
		require.NoError(t, err)

		empty := ""
		_, err = s.Update(ctx, task.ID, domain.TaskPatch{Title: &empty})
		assert.ErrorIs(t, err, domain.ErrValidation)

		stored, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Valid", stored.Title)
	})

	t.Run("update_missing_returns_not_found_without_creating", func(t *testing.T) {
		ctx, s, _ := setup(t)

		_, err := s.Create(ctx, domain.NewTask{Title: "existing"})
		require.NoError(t, err)

		title := "ghost"
		_, err = s.Update(ctx, 12345, domain.TaskPatch{Title: &title})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("delete_then_get_returns_not_found", func(t *testing.T) {
		ctx, s, _ := setup(t)

		task, err := s.Create(ctx, domain.NewTask{Title: "short lived"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, task.ID))

		_, err = s.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.ErrorIs(t, s.Delete(ctx, task.ID), store.ErrTaskNotFound)
	})

	t.Run("get_all_returns_newest_first", func(t *testing.T) {
		ctx, s, clock := setup(t)

		a, err := s.Create(ctx, domain.NewTask{Title: "A"})
		require.NoError(t, err)
		clock.Advance(time.Second)
		b, err := s.Create(ctx, domain.NewTask{Title: "B"})
		require.NoError(t, err)
		// Same instant as B: ties are broken by ID.
		c, err := s.Create(ctx, domain.NewTask{Title: "C"})
		require.NoError(t, err)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{c.ID, b.ID, a.ID}, ids(all))
	})

	t.Run("find_by_status_and_priority", func(t *testing.T) {
		ctx, s, clock := setup(t)

		open, err := s.Create(ctx, domain.NewTask{Title: "open low", Priority: domain.PriorityLow})
		require.NoError(t, err)
		clock.Advance(time.Second)
		progress, err := s.Create(ctx, domain.NewTask{Title: "progress high", Status: domain.StatusProgress, Priority: domain.PriorityHigh})
		require.NoError(t, err)
		clock.Advance(time.Second)
		open2, err := s.Create(ctx, domain.NewTask{Title: "open high", Priority: domain.PriorityHigh})
		require.NoError(t, err)

		byStatus, err := s.FindByStatus(ctx, domain.StatusOpen)
		require.NoError(t, err)
		assert.Equal(t, []int64{open2.ID, open.ID}, ids(byStatus))

		byPriority, err := s.FindByPriority(ctx, domain.PriorityHigh)
		require.NoError(t, err)
		assert.Equal(t, []int64{open2.ID, progress.ID}, ids(byPriority))

		none, err := s.FindByStatus(ctx, domain.StatusCompleted)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("search_is_case_insensitive_over_title_and_description", func(t *testing.T) {
		ctx, s, clock := setup(t)

		report, err := s.Create(ctx, domain.NewTask{Title: "Report bug"})
		require.NoError(t, err)
		clock.Advance(time.Second)
		desc := "Monthly REPORT for finance"
		described, err := s.Create(ctx, domain.NewTask{Title: "Finance", Description: &desc})
		require.NoError(t, err)
		clock.Advance(time.Second)
		other := "nothing relevant"
		_, err = s.Create(ctx, domain.NewTask{Title: "Plan sprint", Description: &other})
		require.NoError(t, err)

		found, err := s.Search(ctx, "report")
		require.NoError(t, err)
		assert.Equal(t, []int64{described.ID, report.ID}, ids(found))
	})

	t.Run("search_treats_wildcards_literally", func(t *testing.T) {
		ctx, s, _ := setup(t)

		match, err := s.Create(ctx, domain.NewTask{Title: "50% off_sale"})
		require.NoError(t, err)
		_, err = s.Create(ctx, domain.NewTask{Title: "500 offsale"})
		require.NoError(t, err)

		found, err := s.Search(ctx, "0% off_")
		require.NoError(t, err)
		assert.Equal(t, []int64{match.ID}, ids(found))
	})

	t.Run("returned_tasks_are_copies", func(t *testing.T) {
		ctx, s, _ := setup(t)

		task, err := s.Create(ctx, domain.NewTask{Title: "original"})
		require.NoError(t, err)
		task.Title = "mutated by caller"

		stored, err := s.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", stored.Title)
	})
}

func ids(tasks []*domain.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func assertSameInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "expected %s, got %s", want, got)
}
