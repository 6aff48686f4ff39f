package query

import (
	"strconv"
	"strings"
)

// Key prefixes. Keys are opaque invalidation scopes; prefix matching on
// these is how broad revalidation is expressed.
const (
	ProjectsPrefix = "/projects"
	TasksPrefix    = "/tasks"
	GroupsPrefix   = "/task-groups/"
)

// KeyKind tells what a cache key addresses.
type KeyKind int

const (
	KindUnknown KeyKind = iota
	KindProjects
	KindProject
	KindProjectTasks
	KindTasks
	KindTask
	KindGroup
)

// ProjectsKey addresses the list of all projects.
func ProjectsKey() string { return ProjectsPrefix }

// ProjectKey addresses a single project.
func ProjectKey(id int64) string {
	return ProjectsPrefix + "/" + strconv.FormatInt(id, 10)
}

// ProjectTasksKey addresses the tasks of one project.
func ProjectTasksKey(id int64) string {
	return ProjectKey(id) + "/tasks"
}

// TasksKey addresses the list of all tasks.
func TasksKey() string { return TasksPrefix }

// TaskKey addresses a single task.
func TaskKey(id int64) string {
	return TasksPrefix + "/" + strconv.FormatInt(id, 10)
}

// GroupKey addresses a due-date group such as "today".
func GroupKey(group string) string { return GroupsPrefix + group }

// ParsedKey is the decoded form of a cache key.
type ParsedKey struct {
	Kind  KeyKind
	ID    int64
	Group string
}

// ParseKey decodes a key built by the constructors above.
func ParseKey(key string) ParsedKey {
	if group, ok := strings.CutPrefix(key, GroupsPrefix); ok && group != "" {
		return ParsedKey{Kind: KindGroup, Group: group}
	}

	parts := strings.Split(strings.Trim(key, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "projects":
		return ParsedKey{Kind: KindProjects}
	case len(parts) == 1 && parts[0] == "tasks":
		return ParsedKey{Kind: KindTasks}
	case len(parts) == 2 && parts[0] == "projects":
		if id, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			return ParsedKey{Kind: KindProject, ID: id}
		}
	case len(parts) == 2 && parts[0] == "tasks":
		if id, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			return ParsedKey{Kind: KindTask, ID: id}
		}
	case len(parts) == 3 && parts[0] == "projects" && parts[2] == "tasks":
		if id, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			return ParsedKey{Kind: KindProjectTasks, ID: id}
		}
	}
	return ParsedKey{Kind: KindUnknown}
}

// HoldsTasks reports whether the key addresses one or more tasks.
func (p ParsedKey) HoldsTasks() bool {
	switch p.Kind {
	case KindTasks, KindTask, KindProjectTasks, KindGroup:
		return true
	}
	return false
}

// HasPrefix returns a key matcher for Revalidate.
func HasPrefix(prefix string) func(string) bool {
	return func(key string) bool { return strings.HasPrefix(key, prefix) }
}

// IsGroupKey matches every due-date group key.
func IsGroupKey(key string) bool { return strings.HasPrefix(key, GroupsPrefix) }
