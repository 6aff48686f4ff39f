package tasklist

import (
	"fmt"
	"time"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/theme"
)

// DueLayout is how a card shows its due date, e.g. "Wed 03/06/2024".
const DueLayout = "Mon 01/02/2006"

const (
	noDueDateLabel = "No due date"
	noProjectLabel = "No Project"
	savingLabel    = "(saving…)"
)

// renderCard draws one task as two lines: the checkbox and description,
// then the due date and project.
func renderCard(t model.Task, projects model.ProjectMap, now time.Time, selected bool) string {
	box := "[ ]"
	desc := t.Description
	if t.Completed {
		box = "[x]"
		desc = theme.CompletedStyle.Render(desc)
	}
	first := box + " " + desc
	if t.ID.IsPending() {
		first += " " + theme.PendingStyle.Render(savingLabel)
	}

	second := "    " + dueLabel(t.DueDate, now, t.Completed) +
		theme.MutedStyle.Render(" · "+projectLabel(t.ProjectID, projects))

	card := first + "\n" + second
	if selected {
		return theme.SelectedItemStyle.Render(card)
	}
	return theme.ListItemStyle.Render(card)
}

func dueLabel(due *time.Time, now time.Time, completed bool) string {
	if due == nil {
		return theme.MutedStyle.Render(noDueDateLabel)
	}
	label := "Due: " + due.Format(DueLayout)
	if completed {
		return theme.MutedStyle.Render(label)
	}
	sod := bucket.StartOfDay(now)
	overdue := due.Before(sod)
	today := !overdue && bucket.StartOfDay(*due).Equal(sod)
	return theme.DueStyle(overdue, today).Render(label)
}

// projectLabel names the project a task references. A reference to a
// project missing from the list shows its id so the card never lies about
// being unassigned.
func projectLabel(id *int64, projects model.ProjectMap) string {
	if id == nil {
		return noProjectLabel
	}
	if p, ok := projects.Get(model.Persisted(*id)); ok {
		return p.Name
	}
	return fmt.Sprintf("Project #%d", *id)
}
