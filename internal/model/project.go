package model

import (
	"errors"

	"github.com/nhle/taskplanner/internal/entity"
)

// ErrProjectNameRequired is returned when a project has a blank name.
var ErrProjectNameRequired = errors.New("project name is required")

// Project is a named grouping of tasks.
type Project struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// ProjectKey is the key function used to build a ProjectMap.
func ProjectKey(p Project) ID { return p.ID }

// ProjectMap is an ordered, id-addressable collection of projects.
type ProjectMap = entity.Map[ID, Project]

// NewProjectMap builds a ProjectMap preserving the order of projects.
func NewProjectMap(projects []Project) ProjectMap {
	return entity.Build(projects, ProjectKey)
}
