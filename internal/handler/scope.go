package handler

import (
	"context"
	"fmt"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
)

// Belongs reports whether task t is part of the collection cached at key.
func (h *Handlers) Belongs(key string, t model.Task) bool {
	p := query.ParseKey(key)
	switch p.Kind {
	case query.KindTasks:
		return true
	case query.KindTask:
		id, ok := t.ID.StoreID()
		return ok && id == p.ID
	case query.KindProjectTasks:
		return t.InProject(p.ID)
	case query.KindGroup:
		g, ok := bucket.Find(h.Groups(), bucket.GroupID(p.Group))
		return ok && g.Contains(t.DueDate)
	}
	return false
}

// place puts t into m where it belongs under key: replaced in place if
// present, appended if new, removed if it no longer belongs.
func (h *Handlers) place(key string, m model.TaskMap, t model.Task) model.TaskMap {
	if !h.Belongs(key, t) {
		return m.Remove(t.ID)
	}
	return m.Append(t.ID, t)
}

// cachedTasks returns the collection cached at key. ok is false when the key
// holds nothing, as before its first fetch or after eviction.
func (h *Handlers) cachedTasks(key string) (model.TaskMap, bool) {
	return query.DataAs[model.TaskMap](h.cache.Read(key))
}

// settleTasks returns what the collection at key holds after a write: apply
// run on the cached collection, or a fresh store read when nothing is cached.
func (h *Handlers) settleTasks(ctx context.Context, key string, apply func(model.TaskMap) model.TaskMap) (model.TaskMap, error) {
	if m, ok := h.cachedTasks(key); ok {
		return apply(m), nil
	}
	fetch, err := h.taskFetcher(key)
	if err != nil {
		return model.TaskMap{}, err
	}
	m, err := fetch(ctx)
	if err != nil {
		return model.TaskMap{}, fmt.Errorf("reading %s after write: %w", key, err)
	}
	return m, nil
}

func (h *Handlers) cachedProjects() (model.ProjectMap, bool) {
	return query.DataAs[model.ProjectMap](h.cache.Read(query.ProjectsKey()))
}

// revalidateTaskViews refetches every task-bearing key other than written.
func (h *Handlers) revalidateTaskViews(ctx context.Context, written string) int {
	return h.cache.Revalidate(ctx, func(key string) bool {
		return key != written && query.ParseKey(key).HoldsTasks()
	})
}
