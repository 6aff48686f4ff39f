package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskplanner/internal/handler"
	appsync "github.com/nhle/taskplanner/internal/sync"
	"github.com/nhle/taskplanner/internal/theme"
	"github.com/nhle/taskplanner/internal/ui"
	"github.com/nhle/taskplanner/internal/ui/command"
	helpview "github.com/nhle/taskplanner/internal/ui/help"
	"github.com/nhle/taskplanner/internal/ui/sidebar"
	"github.com/nhle/taskplanner/internal/ui/taskform"
	"github.com/nhle/taskplanner/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewTasks ViewState = iota
	ViewHelp
	ViewCommand
	ViewTaskForm
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the handlers every write goes through.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	handlers     *handler.Handlers
	watcher      *appsync.Watcher
	keys         *KeyMap
	sidebar      sidebar.Model
	taskList     tasklist.Model
	taskForm     taskform.Model
	helpView     helpview.Model
	commandView  command.Model
	ready        bool
	statusMsg    string
}

// Option configures the root model.
type Option func(*Model)

// WithShowCompleted sets whether finished tasks are listed at startup.
func WithShowCompleted(show bool) Option {
	return func(m *Model) { m.taskList.SetShowCompleted(show) }
}

// New creates the root model. The watcher is started by Init.
func New(h *handler.Handlers, w *appsync.Watcher, opts ...Option) Model {
	keys := DefaultKeyMap()
	list := tasklist.New(h, keys, 80, 24)
	list.Focus()

	m := Model{
		currentView: ViewTasks,
		handlers:    h,
		watcher:     w,
		keys:        keys,
		sidebar:     sidebar.New(h, keys, 20, 24),
		taskList:    list,
		taskForm:    taskform.New(80, 24),
		helpView:    helpview.New(keys, 80, 24),
		commandView: command.New(80, 24),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init loads the sidebar and My Tasks and starts listening to the cache.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.sidebar.Init(),
		m.taskList.Init(),
		m.watcher.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.sidebar.SetSize(m.layout.SidebarWidth, contentHeight)
		m.taskList.SetSize(m.layout.MainWidth(), contentHeight)
		m.taskForm.SetSize(m.layout.MainWidth(), contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.ChangedMsg, appsync.DayChangedMsg:
		var sideCmd, listCmd tea.Cmd
		m.sidebar, sideCmd = m.sidebar.Update(msg)
		m.taskList, listCmd = m.taskList.Update(msg)
		return m, tea.Batch(sideCmd, listCmd, m.watcher.WaitForNextChange())

	case spinner.TickMsg:
		// The spinner keeps ticking behind dialogs.
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd

	case mutationResultMsg:
		m.statusMsg = statusFor(msg)
		return m, nil

	case sidebar.OpenPageMsg:
		cmd := m.taskList.SetPage(msg.ProjectID, msg.Title)
		m.focusList()
		return m, cmd

	case sidebar.CreateProjectMsg:
		return m, m.createProject(msg.Name)

	case tasklist.NewTaskMsg:
		m.openForm()
		return m, m.taskForm.StartCreate(msg.ProjectID)

	case tasklist.EditDueMsg:
		m.openForm()
		return m, m.taskForm.StartDueDate(msg.Key, msg.Task)

	case tasklist.EditProjectMsg:
		m.openForm()
		return m, m.taskForm.StartProject(msg.Key, msg.Task)

	case tasklist.EditDescriptionMsg:
		m.openForm()
		return m, m.taskForm.StartDescription(msg.Key, msg.Task)

	case tasklist.ToggleMsg:
		return m, m.toggleTask(msg.Key, msg.Task)

	case tasklist.DeleteMsg:
		return m, m.deleteTask(msg.Key, msg.Task)

	case taskform.CreateTaskMsg:
		m.currentView = ViewTasks
		return m, m.createTask(msg.Draft)

	case taskform.SetDueDateMsg:
		m.currentView = ViewTasks
		return m, m.setDueDate(msg.Key, msg.Task, msg.Due)

	case taskform.AssignProjectMsg:
		m.currentView = ViewTasks
		return m, m.assignProject(msg.Key, msg.Task, msg.ProjectID)

	case taskform.EditDescriptionMsg:
		m.currentView = ViewTasks
		return m, m.editDescription(msg.Key, msg.Task, msg.Description)

	case taskform.CancelMsg:
		m.currentView = ViewTasks
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.watcher.Stop()
			return m, tea.Quit
		}
		if m.currentView == ViewTaskForm || m.sidebar.InForm() {
			return m.updateActiveView(msg)
		}
		return m.handleKey(msg)
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleKey processes keys outside of dialogs.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.commandView, _ = m.commandView.Update(msg)
			m.currentView = m.previousView
			return m, nil
		}
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.watcher.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus()

	case key.Matches(msg, m.keys.Focus):
		if m.sidebar.Focused() {
			m.focusList()
		} else {
			m.taskList.Blur()
			m.sidebar.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = ""
		return m, m.refresh()
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewTasks:
		if m.sidebar.Focused() || m.sidebar.InForm() {
			m.sidebar, cmd = m.sidebar.Update(msg)
		} else {
			m.taskList, cmd = m.taskList.Update(msg)
		}
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	}

	return m, cmd
}

func (m *Model) focusList() {
	m.sidebar.Blur()
	m.taskList.Focus()
}

func (m *Model) openForm() {
	m.taskForm.SetProjects(m.sidebar.Projects())
	m.previousView = m.currentView
	m.currentView = ViewTaskForm
}

func (m Model) refresh() tea.Cmd {
	return tea.Batch(m.sidebar.Init(), m.taskList.Load())
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Task Planner", m.handlers.Now().Format("Mon Jan 2"))
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTaskForm:
		return m.layout.RenderColumns(m.sidebar.View(), m.taskForm.View())
	}
	if m.sidebar.InForm() {
		return m.layout.RenderColumns(m.sidebar.View(), m.sidebar.FormView())
	}
	return m.layout.RenderColumns(m.sidebar.View(), m.taskList.View())
}

// keyHints returns keyboard shortcut hints for the status bar. The last
// write error takes precedence on the task view.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewTasks {
		return theme.ErrorStyle.Render(m.statusMsg) + " | r dismiss"
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewTaskForm:
		return "enter submit | esc cancel"
	}
	if m.sidebar.InForm() {
		return "enter create | esc cancel"
	}
	if m.sidebar.Focused() {
		return "q quit | ? help | enter open | n new project | tab tasks"
	}
	return "q quit | ? help | n new | x done | D due | p project | d delete | tab projects"
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "refresh":
		m.statusMsg = ""
		return m.refresh()
	case "quit", "q":
		m.watcher.Stop()
		return tea.Quit
	case "new":
		m.openForm()
		return m.taskForm.StartCreate(m.taskList.ProjectID())
	case "completed":
		m.taskList.SetShowCompleted(!m.taskList.ShowCompleted())
		return nil
	case "tasks":
		cmd := m.taskList.SetPage(nil, sidebar.MyTasksLabel)
		m.focusList()
		return cmd
	case "project":
		for _, p := range m.sidebar.Projects() {
			id, ok := p.ID.StoreID()
			if ok && strings.EqualFold(p.Name, arg) {
				cmd := m.taskList.SetPage(&id, p.Name)
				m.focusList()
				return cmd
			}
		}
		m.statusMsg = "No project named " + arg
		return nil
	default:
		return nil
	}
}
