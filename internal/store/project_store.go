package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/taskplanner/internal/model"
)

type projectRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func (r projectRow) project() model.Project {
	return model.Project{ID: model.Persisted(r.ID), Name: r.Name}
}

// AddProject inserts a new project and returns it with its assigned id.
func (s *SQLiteStore) AddProject(ctx context.Context, name string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, model.ErrProjectNameRequired
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO projects (name) VALUES (?)", name)
	if err != nil {
		return model.Project{}, fmt.Errorf("creating project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Project{}, fmt.Errorf("reading new project id: %w", err)
	}
	return model.Project{ID: model.Persisted(id), Name: name}, nil
}

// GetProject retrieves a single project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (model.Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, "SELECT id, name FROM projects WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("getting project %d: %w", id, err)
	}
	return row.project(), nil
}

// ListProjects retrieves all projects in creation order.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, name FROM projects ORDER BY id"); err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}

	projects := make([]model.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.project())
	}
	return projects, nil
}
