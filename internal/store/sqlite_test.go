package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/store"
	"github.com/nhle/taskplanner/tests/testutil"
)

func TestNewSQLiteStore_MigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	testutil.MustAddTask(t, s, model.TaskDraft{Description: "survives reopen"})
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	tasks, err := s.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "survives reopen", tasks[0].Description)
}

func TestAddTask_AssignsIncreasingIDs(t *testing.T) {
	s := testutil.NewTestStore(t)

	a := testutil.MustAddTask(t, s, model.TaskDraft{Description: "first"})
	b := testutil.MustAddTask(t, s, model.TaskDraft{Description: "second"})

	aid, ok := a.ID.StoreID()
	require.True(t, ok)
	bid, ok := b.ID.StoreID()
	require.True(t, ok)
	assert.Greater(t, bid, aid)
	assert.False(t, a.Completed)
}

func TestAddTask_RejectsBlankDescription(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.AddTask(context.Background(), model.TaskDraft{Description: "  "})

	assert.ErrorIs(t, err, model.ErrDescriptionRequired)
}

func TestAddTask_RoundTripsOptionalFields(t *testing.T) {
	s := testutil.NewTestStore(t)
	due := testutil.Day(2024, time.March, 5, 9)

	got := testutil.MustAddTask(t, s, model.TaskDraft{
		Description: "Buy milk",
		DueDate:     &due,
		ProjectID:   testutil.Ptr(int64(3)),
	})

	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, int64(3), *got.ProjectID)
}

func TestUpdateTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	task := testutil.MustAddTask(t, s, model.TaskDraft{Description: "draft"})

	task.Completed = true
	task.Description = "done"
	task.ProjectID = testutil.Ptr(int64(9))
	updated, err := s.UpdateTask(ctx, task)
	require.NoError(t, err)

	id, _ := task.ID.StoreID()
	got, err := s.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.True(t, got.Completed)
	assert.Equal(t, "done", got.Description)
	assert.Nil(t, got.DueDate)
}

func TestUpdateTask_Missing(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.UpdateTask(context.Background(), model.Task{ID: model.Persisted(99), Description: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpdateTask(context.Background(), model.Task{ID: model.NewPendingID(), Description: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	task := testutil.MustAddTask(t, s, model.TaskDraft{Description: "gone"})
	id, _ := task.ID.StoreID()

	require.NoError(t, s.DeleteTask(ctx, id))

	_, err := s.GetTask(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, id), store.ErrNotFound)
}

func TestListTasks_Filters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	mon := testutil.Day(2024, time.March, 4, 10)
	wed := testutil.Day(2024, time.March, 6, 10)

	milk := testutil.MustAddTask(t, s, model.TaskDraft{Description: "Buy milk", DueDate: &mon, ProjectID: testutil.Ptr(int64(1))})
	bread := testutil.MustAddTask(t, s, model.TaskDraft{Description: "Buy bread", DueDate: &wed})
	call := testutil.MustAddTask(t, s, model.TaskDraft{Description: "Call mom", ProjectID: testutil.Ptr(int64(1))})
	call.Completed = true
	_, err := s.UpdateTask(ctx, call)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter store.TaskFilter
		want   []model.ID
	}{
		{"all", store.TaskFilter{}, []model.ID{milk.ID, bread.ID, call.ID}},
		{"project", store.TaskFilter{ProjectID: testutil.Ptr(int64(1))}, []model.ID{milk.ID, call.ID}},
		{"no project", store.TaskFilter{NoProject: true}, []model.ID{bread.ID}},
		{"completed", store.TaskFilter{Completed: testutil.Ptr(true)}, []model.ID{call.ID}},
		{"open", store.TaskFilter{Completed: testutil.Ptr(false)}, []model.ID{milk.ID, bread.ID}},
		{"unscheduled", store.TaskFilter{Unscheduled: true}, []model.ID{call.ID}},
		{"due window", store.TaskFilter{
			DueFrom:   testutil.Ptr(testutil.Day(2024, time.March, 5, 0)),
			DueBefore: testutil.Ptr(testutil.Day(2024, time.March, 7, 0)),
		}, []model.ID{bread.ID}},
		{"due before is exclusive", store.TaskFilter{DueBefore: &mon}, nil},
		{"query", store.TaskFilter{Query: "buy"}, []model.ID{milk.ID, bread.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTasks(ctx, tt.filter)
			require.NoError(t, err)

			var ids []model.ID
			for _, task := range got {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	testutil.MustAddTask(t, s, model.TaskDraft{Description: "short"})
	long := testutil.MustAddTask(t, s, model.TaskDraft{Description: "a much longer one"})

	got, err := s.FilterTasks(context.Background(), func(t model.Task) bool {
		return len(t.Description) > 10
	})

	require.NoError(t, err)
	assert.Equal(t, []model.Task{long}, got)
}

func TestProjects(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.AddProject(ctx, " ")
	assert.ErrorIs(t, err, model.ErrProjectNameRequired)

	home := testutil.MustAddProject(t, s, "Home")
	work := testutil.MustAddProject(t, s, " Work ")
	assert.Equal(t, "Work", work.Name)

	all, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Project{home, work}, all)

	id, _ := home.ID.StoreID()
	got, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, home, got)

	_, err = s.GetProject(ctx, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
