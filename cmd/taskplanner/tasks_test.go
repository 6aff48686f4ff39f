package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/store"
	"github.com/nhle/taskplanner/tests/testutil"
)

// useTempEnv points the global flags at a fresh database and a config file
// that does not exist, so defaults apply.
func useTempEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	oldConfig, oldDB := configPath, dbPath
	configPath = filepath.Join(dir, "config.yaml")
	dbPath = filepath.Join(dir, "tasks.db")
	t.Cleanup(func() {
		configPath, dbPath = oldConfig, oldDB
	})
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFindProject(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	home := testutil.MustAddProject(t, s, "Home")
	work := testutil.MustAddProject(t, s, "Work")

	got, err := findProject(ctx, s, "2")
	require.NoError(t, err)
	assert.Equal(t, work, got)

	got, err = findProject(ctx, s, "hOME")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	_, err = findProject(ctx, s, "Garden")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = findProject(ctx, s, "9")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFormatTask(t *testing.T) {
	projects := model.NewProjectMap([]model.Project{{ID: model.Persisted(1), Name: "Home"}})
	due := testutil.Day(2024, time.March, 6, 0)

	tests := []struct {
		name string
		task model.Task
		want string
	}{
		{
			name: "open with due date and project",
			task: model.Task{ID: model.Persisted(3), Description: "Buy milk", DueDate: &due, ProjectID: testutil.Ptr[int64](1)},
			want: "[ ] 3    Buy milk  (Due: Wed 03/06/2024 · Home)",
		},
		{
			name: "completed without due date",
			task: model.Task{ID: model.Persisted(12), Description: "Call mom", Completed: true},
			want: "[x] 12   Call mom  (No due date · No Project)",
		},
		{
			name: "unknown project",
			task: model.Task{ID: model.Persisted(4), Description: "Orphan", ProjectID: testutil.Ptr[int64](9)},
			want: "[ ] 4    Orphan  (No due date · Project #9)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTask(tt.task, projects))
		})
	}
}

func TestPrintSection_HidesCompleted(t *testing.T) {
	tasks := model.NewTaskMap([]model.Task{
		{ID: model.Persisted(1), Description: "Done already", Completed: true},
	})
	var out bytes.Buffer

	printSection(&out, "Today", "No tasks for today", tasks, model.ProjectMap{}, true)

	assert.Equal(t, "Today\n  No tasks for today\n\n", out.String())
}

func TestCommands_TaskLifecycle(t *testing.T) {
	useTempEnv(t)

	out, err := execute(projectCmd(), "add", "Home")
	require.NoError(t, err)
	assert.Equal(t, "Created project 1 \"Home\"\n", out)

	out, err = execute(addCmd(), "Buy", "milk", "--project", "home")
	require.NoError(t, err)
	assert.Equal(t, "Added task 1\n", out)

	out, err = execute(listCmd(), "--project", "Home")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "No due date · Home")

	out, err = execute(doneCmd(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Task 1 is completed\n", out)

	out, err = execute(listCmd(), "--project", "1", "--open")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks in this project")

	out, err = execute(removeCmd(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted task 1\n", out)

	_, err = execute(doneCmd(), "1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = execute(doneCmd(), "abc")
	assert.ErrorContains(t, err, `invalid task id "abc"`)
}
