package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DialogStyle wraps forms and dialogs shown over the task list.
var DialogStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SidebarStyle frames the project list on the left.
var SidebarStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.NormalBorder(), false, true, false, false).
	BorderForeground(ColorBorder)

// SectionStyle is used for due-date group headings.
var SectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginTop(1)

// MutedStyle is used for secondary text such as empty-group labels.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ErrorStyle is used for load and write failures.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// PendingStyle marks a task that has not been saved yet.
var PendingStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Italic(true)

// CompletedStyle renders the description of a finished task.
var CompletedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// GroupStyle returns the heading color for a due-date group.
func GroupStyle(group string) lipgloss.Style {
	switch group {
	case "overdue":
		return SectionStyle.Foreground(ColorRed)
	case "today":
		return SectionStyle.Foreground(ColorOrange)
	case "tomorrow":
		return SectionStyle.Foreground(ColorYellow)
	case "next-7-days", "this-week", "next-15-days":
		return SectionStyle.Foreground(ColorBlue)
	case "upcoming":
		return SectionStyle.Foreground(ColorMagenta)
	default:
		return SectionStyle.Foreground(ColorGray)
	}
}

// DueStyle colors a due date by how close it is: past is red, today
// orange, anything later green.
func DueStyle(overdue, today bool) lipgloss.Style {
	switch {
	case overdue:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case today:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	default:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	}
}
