package handler

import (
	"context"
	"fmt"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
	"github.com/nhle/taskplanner/internal/store"
)

// LoadProjects fetches /projects.
func (h *Handlers) LoadProjects(ctx context.Context) (model.ProjectMap, error) {
	return query.FetchAs(ctx, h.cache, query.ProjectsKey(), h.listProjects)
}

// LoadProject fetches /projects/{id}.
func (h *Handlers) LoadProject(ctx context.Context, id int64) (model.Project, error) {
	return query.FetchAs(ctx, h.cache, query.ProjectKey(id), func(ctx context.Context) (model.Project, error) {
		return h.store.GetProject(ctx, id)
	})
}

// LoadTasks fetches /tasks.
func (h *Handlers) LoadTasks(ctx context.Context) (model.TaskMap, error) {
	return query.FetchAs(ctx, h.cache, query.TasksKey(), h.listTasks(store.TaskFilter{}))
}

// LoadTask fetches /tasks/{id}.
func (h *Handlers) LoadTask(ctx context.Context, id int64) (model.Task, error) {
	return query.FetchAs(ctx, h.cache, query.TaskKey(id), func(ctx context.Context) (model.Task, error) {
		return h.store.GetTask(ctx, id)
	})
}

// LoadProjectTasks fetches /projects/{id}/tasks.
func (h *Handlers) LoadProjectTasks(ctx context.Context, id int64) (model.TaskMap, error) {
	return query.FetchAs(ctx, h.cache, query.ProjectTasksKey(id), h.listTasks(store.TaskFilter{ProjectID: &id}))
}

// LoadGroup fetches /task-groups/{id}. The group window is computed when
// the fetch runs, so a revalidation after midnight moves tasks along.
func (h *Handlers) LoadGroup(ctx context.Context, id bucket.GroupID) (model.TaskMap, error) {
	return query.FetchAs(ctx, h.cache, query.GroupKey(string(id)), h.groupTasks(id))
}

// Load fetches whatever key addresses.
func (h *Handlers) Load(ctx context.Context, key string) error {
	var err error
	p := query.ParseKey(key)
	switch p.Kind {
	case query.KindProjects:
		_, err = h.LoadProjects(ctx)
	case query.KindProject:
		_, err = h.LoadProject(ctx, p.ID)
	case query.KindProjectTasks:
		_, err = h.LoadProjectTasks(ctx, p.ID)
	case query.KindTasks:
		_, err = h.LoadTasks(ctx)
	case query.KindTask:
		_, err = h.LoadTask(ctx, p.ID)
	case query.KindGroup:
		_, err = h.LoadGroup(ctx, bucket.GroupID(p.Group))
	default:
		err = fmt.Errorf("loading %s: %w", key, ErrUnsupportedKey)
	}
	return err
}

// taskFetcher returns the store read behind a task collection key.
func (h *Handlers) taskFetcher(key string) (func(context.Context) (model.TaskMap, error), error) {
	p := query.ParseKey(key)
	switch p.Kind {
	case query.KindTasks:
		return h.listTasks(store.TaskFilter{}), nil
	case query.KindProjectTasks:
		id := p.ID
		return h.listTasks(store.TaskFilter{ProjectID: &id}), nil
	case query.KindGroup:
		return h.groupTasks(bucket.GroupID(p.Group)), nil
	}
	return nil, fmt.Errorf("reading %s: %w", key, ErrUnsupportedKey)
}

func (h *Handlers) listProjects(ctx context.Context) (model.ProjectMap, error) {
	projects, err := h.store.ListProjects(ctx)
	if err != nil {
		return model.ProjectMap{}, err
	}
	return model.NewProjectMap(projects), nil
}

func (h *Handlers) listTasks(filter store.TaskFilter) func(context.Context) (model.TaskMap, error) {
	return func(ctx context.Context) (model.TaskMap, error) {
		tasks, err := h.store.ListTasks(ctx, filter)
		if err != nil {
			return model.TaskMap{}, err
		}
		return model.NewTaskMap(tasks), nil
	}
}

func (h *Handlers) groupTasks(id bucket.GroupID) func(context.Context) (model.TaskMap, error) {
	return func(ctx context.Context) (model.TaskMap, error) {
		g, ok := bucket.Find(h.Groups(), id)
		if !ok {
			return model.TaskMap{}, fmt.Errorf("unknown task group %q", id)
		}
		tasks, err := h.store.FilterTasks(ctx, func(t model.Task) bool {
			return g.Contains(t.DueDate)
		})
		if err != nil {
			return model.TaskMap{}, err
		}
		return model.NewTaskMap(tasks), nil
	}
}
