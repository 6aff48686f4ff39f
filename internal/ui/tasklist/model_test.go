package tasklist

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/handler"
	"github.com/nhle/taskplanner/internal/keys"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
	"github.com/nhle/taskplanner/internal/store"
	"github.com/nhle/taskplanner/tests/testutil"
)

var now = testutil.Day(2024, time.March, 6, 15)

type cacheChanged struct{}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newList(t *testing.T) (Model, *handler.Handlers, store.Store) {
	t.Helper()
	s := testutil.NewTestStore(t)
	h := handler.New(query.New(), s, handler.WithClock(func() time.Time { return now }))
	m := New(h, keys.DefaultKeyMap(), 80, 80)
	return m, h, s
}

func loadAll(t *testing.T, h *handler.Handlers, m Model) Model {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.Load(ctx, query.ProjectsKey()))
	for _, k := range m.Keys() {
		require.NoError(t, h.Load(ctx, k))
	}
	m, _ = m.Update(cacheChanged{})
	return m
}

func TestRenderCard(t *testing.T) {
	projects := model.NewProjectMap([]model.Project{{ID: model.Persisted(1), Name: "Home"}})
	due := testutil.Day(2024, time.March, 6, 0)

	tests := []struct {
		name string
		task model.Task
		want []string
	}{
		{
			name: "due and project",
			task: model.Task{ID: model.Persisted(3), Description: "Buy milk", DueDate: &due, ProjectID: testutil.Ptr[int64](1)},
			want: []string{"[ ] Buy milk", "Due: Wed 03/06/2024", "Home"},
		},
		{
			name: "no due date or project",
			task: model.Task{ID: model.Persisted(4), Description: "Someday"},
			want: []string{"[ ] Someday", "No due date", "No Project"},
		},
		{
			name: "completed",
			task: model.Task{ID: model.Persisted(5), Description: "Done", Completed: true},
			want: []string{"[x]", "Done"},
		},
		{
			name: "pending",
			task: model.Task{ID: model.NewPendingID(), Description: "New"},
			want: []string{"[ ] New", "(saving…)"},
		},
		{
			name: "unknown project",
			task: model.Task{ID: model.Persisted(6), Description: "Orphan", ProjectID: testutil.Ptr[int64](9)},
			want: []string{"Project #9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := renderCard(tt.task, projects, now, false)
			for _, w := range tt.want {
				assert.Contains(t, card, w)
			}
		})
	}
}

func TestModel_ShowsLoadingUntilFetched(t *testing.T) {
	m, _, _ := newList(t)

	assert.Contains(t, m.View(), "Loading tasks...")
	_, _, ok := m.Selected()
	assert.False(t, ok)
}

func TestModel_GroupsTasksByDueDate(t *testing.T) {
	m, h, s := newList(t)
	today := testutil.Day(2024, time.March, 6, 9)
	first := testutil.MustAddTask(t, s, model.TaskDraft{Description: "Today task", DueDate: &today})
	testutil.MustAddTask(t, s, model.TaskDraft{Description: "Whenever"})

	m = loadAll(t, h, m)
	view := m.View()

	assert.Contains(t, view, "Today task")
	assert.Contains(t, view, "Whenever")
	assert.Contains(t, view, "No tasks for tomorrow")
	assert.Contains(t, view, "No overdue tasks")
	assert.NotContains(t, view, "Loading tasks...")

	key, task, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, query.GroupKey(string(bucket.Today)), key)
	assert.Equal(t, first.ID, task.ID)
}

func TestModel_KeysEmitIntents(t *testing.T) {
	m, h, s := newList(t)
	today := testutil.Day(2024, time.March, 6, 9)
	first := testutil.MustAddTask(t, s, model.TaskDraft{Description: "Today task", DueDate: &today})
	second := testutil.MustAddTask(t, s, model.TaskDraft{Description: "Whenever"})
	m = loadAll(t, h, m)
	m.Focus()

	_, cmd := m.Update(press("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, ToggleMsg{Key: query.GroupKey(string(bucket.Today)), Task: first}, cmd())

	m, _ = m.Update(press("j"))
	_, cmd = m.Update(press("d"))
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteMsg{Key: query.GroupKey(string(bucket.Unscheduled)), Task: second}, cmd())

	_, cmd = m.Update(press("D"))
	require.NotNil(t, cmd)
	assert.IsType(t, EditDueMsg{}, cmd())

	_, cmd = m.Update(press("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, NewTaskMsg{}, cmd())
}

func TestModel_IgnoresKeysWhenBlurred(t *testing.T) {
	m, h, s := newList(t)
	testutil.MustAddTask(t, s, model.TaskDraft{Description: "Whenever"})
	m = loadAll(t, h, m)

	_, cmd := m.Update(press("x"))
	assert.Nil(t, cmd)
}

func TestModel_HidesCompleted(t *testing.T) {
	m, h, s := newList(t)
	done := testutil.MustAddTask(t, s, model.TaskDraft{Description: "Finished"})
	done.Completed = true
	_, err := s.UpdateTask(context.Background(), done)
	require.NoError(t, err)
	m = loadAll(t, h, m)
	m.Focus()

	assert.Contains(t, m.View(), "Finished")

	m, _ = m.Update(press("H"))

	assert.NotContains(t, m.View(), "Finished")
	assert.Contains(t, m.View(), "No unscheduled tasks")
	assert.False(t, m.ShowCompleted())
}

func TestModel_ProjectPage(t *testing.T) {
	m, h, s := newList(t)
	p := testutil.MustAddProject(t, s, "Home")
	pid, _ := p.ID.StoreID()
	testutil.MustAddTask(t, s, model.TaskDraft{Description: "Elsewhere"})

	cmd := m.SetPage(&pid, "Home")
	require.NotNil(t, cmd)
	assert.Equal(t, []string{query.ProjectTasksKey(pid)}, m.Keys())

	m = loadAll(t, h, m)
	view := m.View()

	assert.Contains(t, view, "Home")
	assert.Contains(t, view, "No tasks in this project")
	assert.NotContains(t, view, "Elsewhere")
}

func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(c)
		}
	}
}

func TestModel_ReloadsEvictedSection(t *testing.T) {
	backend := query.NewMapBackend()
	s := testutil.NewTestStore(t)
	h := handler.New(query.New(query.WithBackend(backend)), s, handler.WithClock(func() time.Time { return now }))
	m := New(h, keys.DefaultKeyMap(), 80, 80)
	testutil.MustAddTask(t, s, model.TaskDraft{Description: "Whenever"})
	m = loadAll(t, h, m)
	require.Contains(t, m.View(), "Whenever")

	backend.Delete(query.GroupKey(string(bucket.Unscheduled)))
	m, cmd := m.Update(cacheChanged{})
	assert.Contains(t, m.View(), "Loading tasks...")
	require.NotNil(t, cmd)

	runCmd(cmd)
	m, _ = m.Update(cacheChanged{})
	assert.Contains(t, m.View(), "Whenever")
	assert.NotContains(t, m.View(), "Loading tasks...")
}

func TestModel_NeverFetchedKeysAreNotReloaded(t *testing.T) {
	m, _, _ := newList(t)

	_, cmd := m.Update(cacheChanged{})

	assert.Nil(t, cmd)
}

func TestModel_ShowsLoadFailure(t *testing.T) {
	m, h, _ := newList(t)
	h.Cache().Fetch(context.Background(), query.GroupKey(string(bucket.Today)), func(context.Context) (any, error) {
		return nil, errors.New("disk gone")
	})

	m, _ = m.Update(cacheChanged{})

	assert.Contains(t, m.View(), "Failed to load tasks")
}
