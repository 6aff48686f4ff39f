package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/taskplanner/internal/model"
)

// dueLayout is the stored form of due dates. Seconds precision in UTC keeps
// every value the same width so text order is time order.
const dueLayout = time.RFC3339

type taskRow struct {
	ID          int64          `db:"id"`
	Description string         `db:"description"`
	Completed   bool           `db:"completed"`
	DueDate     sql.NullString `db:"due_date"`
	ProjectID   sql.NullInt64  `db:"project_id"`
}

const taskColumns = "id, description, completed, due_date, project_id"

func (r taskRow) task() (model.Task, error) {
	t := model.Task{
		ID:          model.Persisted(r.ID),
		Description: r.Description,
		Completed:   r.Completed,
	}
	if r.DueDate.Valid {
		due, err := time.Parse(dueLayout, r.DueDate.String)
		if err != nil {
			return model.Task{}, fmt.Errorf("parsing due_date of task %d: %w", r.ID, err)
		}
		due = due.Local()
		t.DueDate = &due
	}
	if r.ProjectID.Valid {
		pid := r.ProjectID.Int64
		t.ProjectID = &pid
	}
	return t, nil
}

func formatDue(due *time.Time) any {
	if due == nil {
		return nil
	}
	return due.UTC().Format(dueLayout)
}

func nullableInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// AddTask inserts a new, incomplete task and returns it with its assigned id.
func (s *SQLiteStore) AddTask(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (description, completed, due_date, project_id)
		VALUES (?, 0, ?, ?)`,
		strings.TrimSpace(draft.Description), formatDue(draft.DueDate), nullableInt(draft.ProjectID),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Task{}, fmt.Errorf("reading new task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// UpdateTask overwrites every field of an existing task and returns the
// stored result.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	id, ok := task.ID.StoreID()
	if !ok {
		return model.Task{}, fmt.Errorf("updating task %s: %w", task.ID, ErrNotFound)
	}
	if strings.TrimSpace(task.Description) == "" {
		return model.Task{}, model.ErrDescriptionRequired
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			description = ?, completed = ?, due_date = ?, project_id = ?
		WHERE id = ?`,
		strings.TrimSpace(task.Description), boolToInt(task.Completed),
		formatDue(task.DueDate), nullableInt(task.ProjectID),
		id,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("updating task %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return model.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetTask retrieves a single task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (model.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("getting task %d: %w", id, err)
	}
	return row.task()
}

// ListTasks retrieves tasks matching the filter in creation order.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery(filter)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// FilterTasks returns every task for which keep returns true, in creation
// order. It is for predicates that have no SQL form, such as date buckets
// computed in local time.
func (s *SQLiteStore) FilterTasks(ctx context.Context, keep func(model.Task) bool) ([]model.Task, error) {
	all, err := s.ListTasks(ctx, TaskFilter{})
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(filter TaskFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.NoProject {
		conditions = append(conditions, "project_id IS NULL")
	}
	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}
	if filter.Unscheduled {
		conditions = append(conditions, "due_date IS NULL")
	}
	if filter.DueFrom != nil {
		conditions = append(conditions, "due_date >= ?")
		args = append(args, formatDue(filter.DueFrom))
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_date < ?")
		args = append(args, formatDue(filter.DueBefore))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, "description LIKE ?")
		args = append(args, "%"+q+"%")
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"
	return query, args
}
