package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// MustAddTask inserts a task or fails the test.
func MustAddTask(t *testing.T, s store.Store, draft model.TaskDraft) model.Task {
	t.Helper()

	task, err := s.AddTask(context.Background(), draft)
	if err != nil {
		t.Fatalf("adding task %q: %v", draft.Description, err)
	}
	return task
}

// MustAddProject inserts a project or fails the test.
func MustAddProject(t *testing.T, s store.Store, name string) model.Project {
	t.Helper()

	p, err := s.AddProject(context.Background(), name)
	if err != nil {
		t.Fatalf("adding project %q: %v", name, err)
	}
	return p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Day returns local midnight of the given date plus hour hours.
func Day(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
}
