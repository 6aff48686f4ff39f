package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/theme"
)

// DateLayout is the format the due date inputs accept.
const DateLayout = "2006-01-02"

// Mode selects which fields the form shows.
type Mode int

const (
	ModeCreate Mode = iota
	ModeDueDate
	ModeProject
	ModeDescription
)

// CreateTaskMsg is dispatched when the create form is submitted.
type CreateTaskMsg struct {
	Draft model.TaskDraft
}

// SetDueDateMsg is dispatched when the due date editor is submitted. A nil
// Due clears the date.
type SetDueDateMsg struct {
	Key  string
	Task model.Task
	Due  *time.Time
}

// AssignProjectMsg is dispatched when the project editor is submitted.
type AssignProjectMsg struct {
	Key       string
	Task      model.Task
	ProjectID *int64
}

// EditDescriptionMsg is dispatched when the description editor is submitted.
type EditDescriptionMsg struct {
	Key         string
	Task        model.Task
	Description string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	description string
	dueDate     string
	projectID   int64
}

// Model is the Bubble Tea model for the task dialogs.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	mode     Mode
	key      string
	task     model.Task
	projects []model.Project
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetProjects sets the projects offered by the project selectors. Projects
// that are still being saved are left out since tasks can only reference
// stored ones.
func (m *Model) SetProjects(projects []model.Project) {
	m.projects = nil
	for _, p := range projects {
		if _, ok := p.ID.StoreID(); ok {
			m.projects = append(m.projects, p)
		}
	}
}

// Mode returns the dialog currently shown.
func (m Model) Mode() Mode { return m.mode }

// StartCreate opens the create dialog. projectID presets the project
// selector, as on a project page.
func (m *Model) StartCreate(projectID *int64) tea.Cmd {
	m.mode = ModeCreate
	m.key = ""
	m.task = model.Task{}
	m.fb.description = ""
	m.fb.dueDate = ""
	m.fb.projectID = 0
	if projectID != nil {
		m.fb.projectID = *projectID
	}
	m.form = m.newForm(
		m.descriptionField(),
		m.dueDateField(),
		m.projectField(),
	)
	return m.form.Init()
}

// StartDueDate opens the due date editor for task shown under key.
func (m *Model) StartDueDate(key string, task model.Task) tea.Cmd {
	m.start(ModeDueDate, key, task)
	m.form = m.newForm(m.dueDateField())
	return m.form.Init()
}

// StartProject opens the project editor for task shown under key.
func (m *Model) StartProject(key string, task model.Task) tea.Cmd {
	m.start(ModeProject, key, task)
	m.form = m.newForm(m.projectField())
	return m.form.Init()
}

// StartDescription opens the description editor for task shown under key.
func (m *Model) StartDescription(key string, task model.Task) tea.Cmd {
	m.start(ModeDescription, key, task)
	m.form = m.newForm(m.descriptionField())
	return m.form.Init()
}

func (m *Model) start(mode Mode, key string, task model.Task) {
	m.mode = mode
	m.key = key
	m.task = task
	m.fb.description = task.Description
	m.fb.dueDate = ""
	if task.DueDate != nil {
		m.fb.dueDate = task.DueDate.Format(DateLayout)
	}
	m.fb.projectID = 0
	if task.ProjectID != nil {
		m.fb.projectID = *task.ProjectID
	}
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the active dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(m.title()) + "\n" + m.form.View()

	return theme.DialogStyle.
		Width(m.formWidth()).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) title() string {
	switch m.mode {
	case ModeDueDate:
		return "Due Date"
	case ModeProject:
		return "Move to Project"
	case ModeDescription:
		return "Edit Task"
	default:
		return "New Task"
	}
}

func (m *Model) newForm(fields ...huh.Field) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth() - 4).WithHeight(m.formHeight()).WithShowHelp(false)
}

func (m *Model) descriptionField() huh.Field {
	return huh.NewInput().
		Title("Description").
		Placeholder("What needs to be done?").
		Value(&m.fb.description).
		Validate(validateRequired("Description"))
}

func (m *Model) dueDateField() huh.Field {
	return huh.NewInput().
		Title("Due Date").
		Placeholder("YYYY-MM-DD (optional)").
		Value(&m.fb.dueDate).
		Validate(validateOptionalDate)
}

func (m *Model) projectField() huh.Field {
	return huh.NewSelect[int64]().
		Title("Project").
		Options(m.projectOptions()...).
		Value(&m.fb.projectID)
}

// projectOptions always offers the bound project, even before the project
// list has loaded, since the select drops a value it has no option for.
func (m Model) projectOptions() []huh.Option[int64] {
	opts := []huh.Option[int64]{
		huh.NewOption("No Project", int64(0)),
	}
	found := m.fb.projectID == 0
	for _, p := range m.projects {
		id, _ := p.ID.StoreID()
		opts = append(opts, huh.NewOption(p.Name, id))
		found = found || id == m.fb.projectID
	}
	if !found {
		opts = append(opts, huh.NewOption(fmt.Sprintf("Project #%d", m.fb.projectID), m.fb.projectID))
	}
	return opts
}

func (m Model) handleSubmit() tea.Cmd {
	due, _ := ParseDueDate(m.fb.dueDate)
	var projectID *int64
	if m.fb.projectID != 0 {
		id := m.fb.projectID
		projectID = &id
	}

	key, task := m.key, m.task
	switch m.mode {
	case ModeDueDate:
		return func() tea.Msg { return SetDueDateMsg{Key: key, Task: task, Due: due} }
	case ModeProject:
		return func() tea.Msg { return AssignProjectMsg{Key: key, Task: task, ProjectID: projectID} }
	case ModeDescription:
		desc := strings.TrimSpace(m.fb.description)
		return func() tea.Msg { return EditDescriptionMsg{Key: key, Task: task, Description: desc} }
	}

	draft := model.TaskDraft{
		Description: strings.TrimSpace(m.fb.description),
		DueDate:     due,
		ProjectID:   projectID,
	}
	return func() tea.Msg { return CreateTaskMsg{Draft: draft} }
}

// ParseDueDate reads a YYYY-MM-DD date as the start of that day in local
// time. A blank string is no due date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return &t, nil
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	_, err := ParseDueDate(s)
	return err
}
