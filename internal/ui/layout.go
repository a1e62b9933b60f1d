package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title on the left and
// the signed-in user on the right.
func (l Layout) RenderHeader(title string, who string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	whoRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(who)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(whoRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		whoRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderNotifications stacks notifications oldest first, right aligned.
// It returns an empty string when there is nothing to show.
func (l Layout) RenderNotifications(list []model.Notification) string {
	if len(list) == 0 {
		return ""
	}
	maxWidth := l.Width / 2
	if maxWidth < 20 {
		maxWidth = l.Width
	}

	toasts := make([]string, 0, len(list))
	for _, n := range list {
		toasts = append(toasts, theme.NotificationStyle(n.Type).MaxWidth(maxWidth).Render(n.Message))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	return lipgloss.PlaceHorizontal(l.Width, lipgloss.Right, stack)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, notifications, content area, and status bar. Content is
// trimmed so the frame never exceeds the terminal height.
func (l Layout) RenderWithFrame(
	header string,
	notifications string,
	content string,
	statusBar string,
) string {
	if notifications != "" {
		available := l.ContentHeight() - lipgloss.Height(notifications)
		content = clipLines(content, available)
		return lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			notifications,
			content,
			statusBar,
		)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		clipLines(content, l.ContentHeight()),
		statusBar,
	)
}

func clipLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
