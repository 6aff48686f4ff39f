package tasklist

import (
	"context"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskplanner/internal/bucket"
	"github.com/nhle/taskplanner/internal/handler"
	"github.com/nhle/taskplanner/internal/keys"
	"github.com/nhle/taskplanner/internal/model"
	"github.com/nhle/taskplanner/internal/query"
	"github.com/nhle/taskplanner/internal/theme"
)

// ToggleMsg asks the parent to flip the completion state of Task, shown
// under Key.
type ToggleMsg struct {
	Key  string
	Task model.Task
}

// DeleteMsg asks the parent to delete Task, shown under Key.
type DeleteMsg struct {
	Key  string
	Task model.Task
}

// EditDueMsg asks the parent to open the due date editor.
type EditDueMsg struct {
	Key  string
	Task model.Task
}

// EditProjectMsg asks the parent to open the project editor.
type EditProjectMsg struct {
	Key  string
	Task model.Task
}

// EditDescriptionMsg asks the parent to open the description editor.
type EditDescriptionMsg struct {
	Key  string
	Task model.Task
}

// NewTaskMsg asks the parent to open the create dialog. ProjectID is set on
// a project page.
type NewTaskMsg struct {
	ProjectID *int64
}

const projectEmptyLabel = "No tasks in this project"

// section is one heading of the page and the cache key listed under it.
type section struct {
	key   string
	title string
	group string
	empty string
}

// row is a selectable task and the key it was read from.
type row struct {
	key  string
	task model.Task
	line int
}

// Model shows either the due-date groups of My Tasks or a single project.
type Model struct {
	handlers      *handler.Handlers
	keys          *keys.KeyMap
	projectID     *int64
	title         string
	sections      []section
	rows          []row
	cursor        int
	showCompleted bool
	loading       bool
	evicted       []string
	viewport      viewport.Model
	spinner       spinner.Model
	focused       bool
	width         int
	height        int
}

// New creates a task list showing My Tasks.
func New(h *handler.Handlers, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.MutedStyle

	m := Model{
		handlers:      h,
		keys:          k,
		title:         "My Tasks",
		showCompleted: true,
		viewport:      viewport.New(width, max(height-1, 0)),
		spinner:       sp,
		width:         width,
		height:        height,
	}
	m.refresh()
	return m
}

// Init starts the spinner and loads the page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.Load())
}

// SetPage switches to My Tasks (projectID nil) or to a project page and
// returns the command that loads it.
func (m *Model) SetPage(projectID *int64, title string) tea.Cmd {
	m.projectID = projectID
	m.title = title
	m.cursor = 0
	m.viewport.GotoTop()
	m.refresh()
	return m.Load()
}

// ProjectID returns the project shown, or nil on My Tasks.
func (m Model) ProjectID() *int64 { return m.projectID }

// Keys returns the cache keys the page reads tasks from.
func (m Model) Keys() []string {
	out := make([]string, len(m.sections))
	for i, s := range m.sections {
		out[i] = s.key
	}
	return out
}

// Load fetches every key the page shows.
func (m Model) Load() tea.Cmd {
	toLoad := m.pageKeys()
	cmds := make([]tea.Cmd, len(toLoad))
	for i, k := range toLoad {
		cmds[i] = m.load(k)
	}
	return tea.Batch(cmds...)
}

// pageKeys lists the task keys plus the project keys the page reads.
func (m Model) pageKeys() []string {
	out := append([]string{query.ProjectsKey()}, m.Keys()...)
	if m.projectID != nil {
		out = append(out, query.ProjectKey(*m.projectID))
	}
	return out
}

func (m Model) load(key string) tea.Cmd {
	h := m.handlers
	return func() tea.Msg {
		if err := h.Load(context.Background(), key); err != nil {
			log.Printf("loading %s: %v", key, err)
		}
		return nil
	}
}

// ShowCompleted reports whether finished tasks are listed.
func (m Model) ShowCompleted() bool { return m.showCompleted }

// SetShowCompleted hides or shows finished tasks.
func (m *Model) SetShowCompleted(show bool) {
	m.showCompleted = show
	m.refresh()
}

// Selected returns the task under the cursor and the key it belongs to.
func (m Model) Selected() (string, model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return "", model.Task{}, false
	}
	r := m.rows[m.cursor]
	return r.key, r.task, true
}

// Focus gives the list keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.refresh()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.refresh()
}

// Focused reports whether the list has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// Update handles messages for the task list. Any message may follow a
// cache change, so the content is rebuilt every time.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if !m.loading {
			return m, cmd
		}

	case tea.KeyMsg:
		if m.focused {
			cmd = m.handleKey(msg)
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.refresh()
	return m, tea.Batch(cmd, m.reloadEvicted())
}

// reloadEvicted fetches keys the page read before that have since lost
// their data without a load running, as after eviction from a bounded cache.
func (m Model) reloadEvicted() tea.Cmd {
	if len(m.evicted) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(m.evicted))
	for i, k := range m.evicted {
		cmds[i] = m.load(k)
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil

	case key.Matches(msg, m.keys.ShowCompleted):
		m.showCompleted = !m.showCompleted
		return nil

	case key.Matches(msg, m.keys.New):
		projectID := m.projectID
		return func() tea.Msg { return NewTaskMsg{ProjectID: projectID} }
	}

	k, task, ok := m.Selected()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Toggle):
		return func() tea.Msg { return ToggleMsg{Key: k, Task: task} }
	case key.Matches(msg, m.keys.Delete):
		return func() tea.Msg { return DeleteMsg{Key: k, Task: task} }
	case key.Matches(msg, m.keys.DueDate):
		return func() tea.Msg { return EditDueMsg{Key: k, Task: task} }
	case key.Matches(msg, m.keys.Project):
		return func() tea.Msg { return EditProjectMsg{Key: k, Task: task} }
	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		return func() tea.Msg { return EditDescriptionMsg{Key: k, Task: task} }
	}
	return nil
}

func (m *Model) buildSections() []section {
	if m.projectID != nil {
		return []section{{
			key:   query.ProjectTasksKey(*m.projectID),
			title: "Tasks",
			empty: projectEmptyLabel,
		}}
	}
	groups := m.handlers.Groups()
	out := make([]section, len(groups))
	for i, g := range groups {
		out[i] = section{
			key:   query.GroupKey(string(g.ID)),
			title: g.Name,
			group: string(g.ID),
			empty: g.NoTasksLabel,
		}
	}
	return out
}

// pageTitle prefers the stored project name over the one the page was
// opened with.
func (m Model) pageTitle() string {
	if m.projectID == nil {
		return m.title
	}
	if p, ok := query.DataAs[model.Project](m.handlers.Cache().Read(query.ProjectKey(*m.projectID))); ok && p.Name != "" {
		return p.Name
	}
	return m.title
}

// refresh rebuilds rows and viewport content from the cache and keeps the
// cursor on screen.
func (m *Model) refresh() {
	cache := m.handlers.Cache()
	m.sections = m.buildSections()
	projects, _ := query.DataAs[model.ProjectMap](cache.Read(query.ProjectsKey()))

	type block struct {
		section section
		state   string
		tasks   []model.Task
	}
	blocks := make([]block, len(m.sections))
	var rows []row
	m.loading = false
	m.evicted = nil
	for _, k := range m.pageKeys() {
		e := cache.Read(k)
		if e.Data == nil && e.Err == nil && !e.IsLoading && cache.HasFetcher(k) {
			m.evicted = append(m.evicted, k)
		}
	}
	for i, s := range m.sections {
		entry := cache.Read(s.key)
		blocks[i].section = s
		tasks, ok := query.DataAs[model.TaskMap](entry)
		switch {
		case !ok && entry.Err != nil:
			blocks[i].state = theme.ErrorStyle.Render("Failed to load tasks")
			continue
		case !ok:
			m.loading = true
			blocks[i].state = m.spinner.View() + theme.MutedStyle.Render("Loading tasks...")
			continue
		}
		for _, t := range tasks.ToArray() {
			if t.Completed && !m.showCompleted {
				continue
			}
			blocks[i].tasks = append(blocks[i].tasks, t)
			rows = append(rows, row{key: s.key, task: t})
		}
		if len(blocks[i].tasks) == 0 {
			blocks[i].state = theme.MutedStyle.Render(s.empty)
		}
	}

	m.cursor = min(m.cursor, len(rows)-1)
	m.cursor = max(m.cursor, 0)

	var b strings.Builder
	line := 0
	write := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
		line += strings.Count(s, "\n") + 1
	}
	now := m.handlers.Now()
	idx := 0
	for _, blk := range blocks {
		write(theme.GroupStyle(blk.section.group).Render(blk.section.title))
		if blk.state != "" {
			write(theme.ListItemStyle.Render(blk.state))
			continue
		}
		for _, t := range blk.tasks {
			rows[idx].line = line
			write(renderCard(t, projects, now, m.focused && idx == m.cursor))
			idx++
		}
	}
	m.rows = rows
	m.viewport.SetContent(b.String())
	m.scrollToCursor()
}

func (m *Model) scrollToCursor() {
	if m.cursor >= len(m.rows) {
		return
	}
	top := m.rows[m.cursor].line
	if m.cursor == 0 {
		// Keep the first heading visible.
		top = 0
	}
	bottom := m.rows[m.cursor].line + 1
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

// View renders the page title and the scrollable task content.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).PaddingLeft(1)
	title := m.pageTitle()
	if !m.showCompleted {
		title += theme.MutedStyle.Render("  (hiding completed)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), m.viewport.View())
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-1, 0)
	m.refresh()
}

// Groups returns the due-date groups My Tasks is split into.
func (m Model) Groups() []bucket.Group {
	return m.handlers.Groups()
}
