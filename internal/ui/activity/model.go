// Package activity shows the persisted notification history.
package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/keys"
	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/store"
	"github.com/nhle/careboard/internal/theme"
)

// Limit is how many entries the view loads.
const Limit = 200

// LoadedMsg carries activity entries read from the store.
type LoadedMsg struct {
	Entries []model.Activity
	Err     error
}

// CloseMsg is dispatched when the user leaves the activity view.
type CloseMsg struct{}

// Model is the activity log view.
type Model struct {
	store    store.Store
	keys     *keys.KeyMap
	viewport viewport.Model
	entries  []model.Activity
	err      error
	width    int
	height   int
}

// New creates an activity view reading from s. A nil store shows an
// explanatory message instead of entries.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:    s,
		keys:     k,
		viewport: viewport.New(width-6, height-6),
		width:    width,
		height:   height,
	}
}

// Load returns a command that reads the most recent entries.
func (m Model) Load() tea.Cmd {
	s := m.store
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := s.GetActivity(context.Background(), store.ActivityFilter{Limit: Limit})
		return LoadedMsg{Entries: entries, Err: err}
	}
}

// Update handles messages for the activity view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.entries = msg.Entries
		m.err = msg.Err
		m.viewport.SetContent(m.renderEntries())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Activity) {
			return m, func() tea.Msg { return CloseMsg{} }
		}
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the activity panel.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Activity")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View())
	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

func (m Model) renderEntries() string {
	if m.store == nil {
		return theme.DimmedStyle.Render("Activity log is disabled.")
	}
	if m.err != nil {
		return theme.DimmedStyle.Render(fmt.Sprintf("Could not read activity: %v", m.err))
	}
	if len(m.entries) == 0 {
		return theme.DimmedStyle.Render("No activity yet.")
	}

	var b strings.Builder
	for _, e := range m.entries {
		stamp := theme.DimmedStyle.Render(e.CreatedAt.Local().Format("Jan 02 15:04:05"))
		label := lipgloss.NewStyle().Foreground(typeColor(e.Type)).Render(fmt.Sprintf("%-7s", e.Type))
		fmt.Fprintf(&b, "%s  %s  %s\n", stamp, label, e.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

func typeColor(t model.NotificationType) lipgloss.TerminalColor {
	switch t {
	case model.NotificationSuccess:
		return theme.ColorGreen
	case model.NotificationError:
		return theme.ColorRed
	default:
		return theme.ColorBlue
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 6
	m.viewport.Height = height - 6
}
