package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
	"github.com/nhle/taskplanner/internal/store"
	"github.com/nhle/taskplanner/internal/ui/taskform"
	"github.com/nhle/taskplanner/internal/ui/tasklist"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [description]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			due, _ := cmd.Flags().GetString("due")
			project, _ := cmd.Flags().GetString("project")

			draft := model.TaskDraft{Description: strings.Join(args, " ")}
			if draft.DueDate, err = taskform.ParseDueDate(due); err != nil {
				return err
			}
			if project != "" {
				p, err := findProject(ctx, e.store, project)
				if err != nil {
					return err
				}
				id, _ := p.ID.StoreID()
				draft.ProjectID = &id
			}

			key := query.GroupKey(string(bucket.Unscheduled))
			if id, ok := bucket.Classify(e.handlers.Groups(), draft.DueDate); ok {
				key = query.GroupKey(string(id))
			}
			t, err := e.handlers.CreateTask(ctx, key, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s\n", t.ID)
			return nil
		},
	}

	cmd.Flags().StringP("due", "d", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringP("project", "p", "", "Project name or id")

	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks by due-date group or project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			group, _ := cmd.Flags().GetString("group")
			project, _ := cmd.Flags().GetString("project")
			hideDone, _ := cmd.Flags().GetBool("open")
			out := cmd.OutOrStdout()

			projects, err := e.handlers.LoadProjects(ctx)
			if err != nil {
				return err
			}

			if project != "" {
				p, err := findProject(ctx, e.store, project)
				if err != nil {
					return err
				}
				id, _ := p.ID.StoreID()
				tasks, err := e.handlers.LoadProjectTasks(ctx, id)
				if err != nil {
					return err
				}
				printSection(out, p.Name, "No tasks in this project", tasks, projects, hideDone)
				return nil
			}

			for _, g := range e.handlers.Groups() {
				if group != "" && string(g.ID) != group {
					continue
				}
				tasks, err := e.handlers.LoadGroup(ctx, g.ID)
				if err != nil {
					return err
				}
				printSection(out, g.Name, g.NoTasksLabel, tasks, projects, hideDone)
			}
			return nil
		},
	}

	cmd.Flags().StringP("group", "g", "", "Only show one group, e.g. today or upcoming")
	cmd.Flags().StringP("project", "p", "", "Show a project instead of the due-date groups")
	cmd.Flags().Bool("open", false, "Hide completed tasks")

	return cmd
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle whether a task is completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(cmd, args[0], func(ctx context.Context, e *env, key string, t model.Task) error {
				updated, err := e.handlers.ToggleCompleted(ctx, key, t)
				if err != nil {
					return err
				}
				state := "open"
				if updated.Completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s is %s\n", updated.ID, state)
				return nil
			})
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(cmd, args[0], func(ctx context.Context, e *env, key string, t model.Task) error {
				if err := e.handlers.DeleteTask(ctx, key, t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", t.ID)
				return nil
			})
		},
	}
}

// withTask loads the task with the given id under its single-task key and
// hands both to fn.
func withTask(cmd *cobra.Command, arg string, fn func(context.Context, *env, string, model.Task) error) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", arg)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	t, err := e.handlers.LoadTask(ctx, id)
	if err != nil {
		return fmt.Errorf("task %d: %w", id, err)
	}
	return fn(ctx, e, query.TaskKey(id), t)
}

func printSection(w io.Writer, title, empty string, tasks model.TaskMap, projects model.ProjectMap, hideDone bool) {
	fmt.Fprintln(w, title)
	printed := 0
	for _, t := range tasks.ToArray() {
		if hideDone && t.Completed {
			continue
		}
		fmt.Fprintln(w, "  "+formatTask(t, projects))
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(w, "  "+empty)
	}
	fmt.Fprintln(w)
}

func formatTask(t model.Task, projects model.ProjectMap) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	due := "No due date"
	if t.DueDate != nil {
		due = "Due: " + t.DueDate.Format(tasklist.DueLayout)
	}
	project := "No Project"
	if t.ProjectID != nil {
		project = fmt.Sprintf("Project #%d", *t.ProjectID)
		if p, ok := projects.Get(model.Persisted(*t.ProjectID)); ok {
			project = p.Name
		}
	}
	return fmt.Sprintf("%s %-4s %s  (%s · %s)", box, t.ID, t.Description, due, project)
}

// findProject resolves a project by store id or, failing that, by
// case-insensitive name.
func findProject(ctx context.Context, s store.Store, ref string) (model.Project, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.GetProject(ctx, id)
	}
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project %q: %w", ref, store.ErrNotFound)
}
