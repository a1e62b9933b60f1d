package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/model"
)

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

// PanelStyle wraps overlay content such as help and the activity log.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ColumnStyle frames one status column on the board.
var ColumnStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// FocusedColumnStyle frames the column holding the cursor.
var FocusedColumnStyle = ColumnStyle.
	BorderForeground(ColorBlue)

// CardStyle is the base style for a task card.
var CardStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedCardStyle highlights the task card under the cursor.
var SelectedCardStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle is used for secondary details such as room numbers.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// TitleStyle renders view titles inside panels and forms.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// StatusStyle returns a color-coded style for the given task status.
func StatusStyle(status model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusTodo:
		return base.Foreground(ColorBlue)
	case model.StatusInProgress:
		return base.Foreground(ColorYellow)
	case model.StatusCompleted:
		return base.Foreground(ColorGreen)
	case model.StatusHandoff:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given task priority.
func PriorityStyle(priority model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.PriorityEmergency:
		return base.Foreground(ColorRed)
	case model.PriorityUrgent:
		return base.Foreground(ColorOrange)
	case model.PriorityNormal:
		return base.Foreground(ColorBlue)
	case model.PriorityLow:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorGray)
	}
}

// NotificationStyle returns the toast style for a notification type.
func NotificationStyle(typ model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	switch typ {
	case model.NotificationSuccess:
		return base.Foreground(ColorGreen).BorderForeground(ColorGreen)
	case model.NotificationError:
		return base.Foreground(ColorRed).BorderForeground(ColorRed)
	default:
		return base.Foreground(ColorBlue).BorderForeground(ColorBlue)
	}
}
