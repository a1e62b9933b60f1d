// Package boardview renders the task board as four status columns and
// turns key presses into status moves.
package boardview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/board"
	"github.com/nhle/careboard/internal/keys"
	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/theme"
)

// MoveMsg asks for a task to be moved to another status.
type MoveMsg struct {
	TaskID model.ID
	To     model.Status
}

// Model is the board view. It only renders; the task collection lives in
// board.Board and is pushed in with SetBuckets.
type Model struct {
	keys    *keys.KeyMap
	buckets board.Buckets
	column  int
	rows    [4]int
	loading bool
	spinner spinner.Model
	width   int
	height  int
}

// New creates a board view.
func New(k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		keys:    k,
		buckets: board.Partition(nil),
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// SetBuckets replaces the rendered tasks. Cursors are clamped to the new
// bucket sizes.
func (m *Model) SetBuckets(b board.Buckets) {
	m.buckets = b
	for i, s := range model.Statuses {
		m.rows[i] = clamp(m.rows[i], len(b[s]))
	}
}

// SetLoading toggles the loading indicator and returns the spinner tick
// when loading starts.
func (m *Model) SetLoading(loading bool) tea.Cmd {
	m.loading = loading
	if loading {
		return m.spinner.Tick
	}
	return nil
}

// Selected returns the task under the cursor.
func (m Model) Selected() (model.Task, bool) {
	bucket := m.buckets[model.Statuses[m.column]]
	row := m.rows[m.column]
	if row < 0 || row >= len(bucket) {
		return model.Task{}, false
	}
	return bucket[row], true
}

// Column returns the status of the focused column.
func (m Model) Column() model.Status {
	return model.Statuses[m.column]
}

// Update handles navigation and move keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.column > 0 {
			m.column--
		}
	case key.Matches(msg, m.keys.Right):
		if m.column < len(model.Statuses)-1 {
			m.column++
		}
	case key.Matches(msg, m.keys.Up):
		if m.rows[m.column] > 0 {
			m.rows[m.column]--
		}
	case key.Matches(msg, m.keys.Down):
		size := len(m.buckets[m.Column()])
		if m.rows[m.column] < size-1 {
			m.rows[m.column]++
		}
	case key.Matches(msg, m.keys.Advance):
		task, ok := m.Selected()
		if !ok {
			return m, nil
		}
		next := model.NextStatuses(task.Status)
		if len(next) == 0 {
			return m, nil
		}
		return m, move(task.ID, next[0])
	case key.Matches(msg, m.keys.Handoff):
		task, ok := m.Selected()
		if !ok || !model.CanTransition(task.Status, model.StatusHandoff) {
			return m, nil
		}
		return m, move(task.ID, model.StatusHandoff)
	}
	return m, nil
}

// View renders the four columns side by side.
func (m Model) View() string {
	if m.loading && m.total() == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(m.spinner.View() + " Loading tasks...")
	}

	colWidth := m.width/len(model.Statuses) - 2
	if colWidth < 16 {
		colWidth = 16
	}

	cols := make([]string, 0, len(model.Statuses))
	for i, s := range model.Statuses {
		cols = append(cols, m.renderColumn(i, s, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderColumn(index int, status model.Status, width int) string {
	bucket := m.buckets[status]
	heading := theme.StatusStyle(status).Render(fmt.Sprintf("%s (%d)", status.Label(), len(bucket)))

	lines := []string{heading, ""}
	if len(bucket) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("  nothing here"))
	}
	for row, task := range bucket {
		lines = append(lines, m.renderCard(task, index == m.column && row == m.rows[index], width-2))
	}

	style := theme.ColumnStyle
	if index == m.column {
		style = theme.FocusedColumnStyle
	}
	height := m.height - 2
	if height < 4 {
		height = 4
	}
	return style.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCard(task model.Task, selected bool, width int) string {
	title := truncate(task.Title, width-2)
	var meta []string
	meta = append(meta, theme.PriorityStyle(task.Priority).Render(string(task.Priority)))
	if task.RoomNumber != "" {
		meta = append(meta, "rm "+task.RoomNumber)
	}
	if task.EstimatedDuration != nil {
		meta = append(meta, fmt.Sprintf("%dm", *task.EstimatedDuration))
	}
	if task.AssignedUser != nil && task.AssignedUser.Name != "" {
		meta = append(meta, "@"+task.AssignedUser.Name)
	}
	detail := theme.DimmedStyle.Render(strings.Join(meta, " · "))

	if selected {
		return theme.SelectedCardStyle.Render(title + "\n" + detail)
	}
	return theme.CardStyle.Render(title + "\n" + detail)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) total() int {
	n := 0
	for _, b := range m.buckets {
		n += len(b)
	}
	return n
}

func move(id model.ID, to model.Status) tea.Cmd {
	return func() tea.Msg { return MoveMsg{TaskID: id, To: to} }
}

func clamp(row, size int) int {
	if row >= size {
		row = size - 1
	}
	if row < 0 {
		row = 0
	}
	return row
}

func truncate(s string, max int) string {
	if max <= 1 || lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) > max-1 {
		r = r[:max-1]
	}
	return string(r) + "…"
}
