package sidebar

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskplanner/internal/handler"
	"github.com/nhle/taskplanner/internal/keys"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
	"github.com/nhle/taskplanner/internal/theme"
)

// MyTasksLabel is the first sidebar entry, the grouped view of every task.
const MyTasksLabel = "My Tasks"

// OpenPageMsg asks the parent to show a page. A nil ProjectID is My Tasks.
type OpenPageMsg struct {
	ProjectID *int64
	Title     string
}

// CreateProjectMsg asks the parent to create a project.
type CreateProjectMsg struct {
	Name string
}

type sidebarMode int

const (
	modeList sidebarMode = iota
	modeForm
)

type formBindings struct {
	name string
}

// Model lists My Tasks followed by every project.
type Model struct {
	mode        sidebarMode
	handlers    *handler.Handlers
	keys        *keys.KeyMap
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	focused     bool
	width       int
	height      int
}

// New creates a new sidebar model.
func New(h *handler.Handlers, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:     modeList,
		handlers: h,
		keys:     k,
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// Init loads the project list.
func (m Model) Init() tea.Cmd {
	h := m.handlers
	return func() tea.Msg {
		if _, err := h.LoadProjects(context.Background()); err != nil {
			log.Printf("loading projects: %v", err)
		}
		return nil
	}
}

// Projects returns the projects currently cached under /projects.
func (m Model) Projects() []model.Project {
	projects, _ := query.DataAs[model.ProjectMap](m.handlers.Cache().Read(query.ProjectsKey()))
	return projects.ToArray()
}

// InForm reports whether the new project dialog is open.
func (m Model) InForm() bool { return m.mode == modeForm }

// Focus gives the sidebar keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the sidebar has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode == modeForm {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && m.focused {
		return m.handleListKey(msg)
	}

	// The list may have shrunk after a refetch.
	m.selectedIdx = min(m.selectedIdx, len(m.Projects()))
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	entries := len(m.Projects()) + 1
	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % entries
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx--
		if m.selectedIdx < 0 {
			m.selectedIdx = entries - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m, m.openSelected()

	case key.Matches(msg, m.keys.New):
		m.fb.name = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) openSelected() tea.Cmd {
	if m.selectedIdx == 0 {
		return func() tea.Msg { return OpenPageMsg{Title: MyTasksLabel} }
	}
	projects := m.Projects()
	if m.selectedIdx > len(projects) {
		return nil
	}
	p := projects[m.selectedIdx-1]
	id, ok := p.ID.StoreID()
	if !ok {
		// Still being saved; there is nothing to load yet.
		return nil
	}
	return func() tea.Msg { return OpenPageMsg{ProjectID: &id, Title: p.Name} }
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New Project").
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeList
		name := strings.TrimSpace(m.fb.name)
		return m, func() tea.Msg { return CreateProjectMsg{Name: name} }
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// FormView renders the new project dialog, or nothing when it is closed.
func (m Model) FormView() string {
	if m.mode != modeForm || m.form == nil {
		return ""
	}
	return theme.DialogStyle.Width(m.formWidth() + 4).Render(m.form.View())
}

// View renders the sidebar.
func (m Model) View() string {
	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(m.renderEntry(0, MyTasksLabel))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n")

	entry := m.handlers.Cache().Read(query.ProjectsKey())
	projects := m.Projects()
	switch {
	case entry.Err != nil && len(projects) == 0:
		b.WriteString(theme.ErrorStyle.Render("Failed to load projects"))
	case entry.Data == nil:
		b.WriteString(theme.MutedStyle.Render("Loading..."))
	case len(projects) == 0:
		b.WriteString(theme.MutedStyle.Render("No projects yet"))
	default:
		for i, p := range projects {
			label := p.Name
			if p.ID.IsPending() {
				label = theme.PendingStyle.Render(label)
			}
			b.WriteString(m.renderEntry(i+1, label))
			b.WriteString("\n")
		}
	}

	return theme.SidebarStyle.
		Width(max(m.width-1, 0)).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderEntry(idx int, label string) string {
	if idx == m.selectedIdx && m.focused {
		return theme.SelectedItemStyle.Render(label)
	}
	return theme.ListItemStyle.Render(label)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return 40
}
