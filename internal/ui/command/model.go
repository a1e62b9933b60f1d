package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/theme"
)

// Commands understood by the palette.
var Commands = []string{"refresh", "new", "activity", "help", "logout", "quit"}

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// CancelMsg is emitted when the user leaves the palette.
type CancelMsg struct{}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = strings.Join(Commands, ", ")
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		case "enter":
			cmd := Resolve(m.input.Value())
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Command")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Resolve maps input to a known command. A unique prefix is enough;
// anything else resolves to the empty string.
func Resolve(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	match := ""
	for _, c := range Commands {
		if c == input {
			return c
		}
		if strings.HasPrefix(c, input) {
			if match != "" {
				return ""
			}
			match = c
		}
	}
	return match
}
