package taskform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/theme"
)

// SubmitMsg is dispatched when the task form is submitted.
type SubmitMsg struct {
	Input model.TaskInput
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	roomNumber  string
	duration    string
}

// Model is the Bubble Tea model for the new-task form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	busy    bool
	spinner spinner.Model
	width   int
	height  int
}

// New creates a new task form model.
func New(width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		fb:      &formBindings{priority: model.PriorityNormal},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// StartCreate initializes an empty form.
func (m *Model) StartCreate() tea.Cmd {
	*m.fb = formBindings{priority: model.PriorityNormal}
	m.busy = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Retry shows the form again with the values from the failed submission.
func (m *Model) Retry() tea.Cmd {
	m.busy = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Busy reports whether a submission is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		return m, tea.Batch(m.handleSubmit(), m.spinner.Tick)
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	body := m.form.View()
	if m.busy {
		body = m.spinner.View() + " Creating task..."
	}

	content := theme.TitleStyle.Render("New Task") + "\n" + body

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	priorities := make([]huh.Option[model.Priority], 0, len(model.Priorities))
	for _, p := range model.Priorities {
		priorities = append(priorities, huh.NewOption(priorityLabel(p), p))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Check vitals").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorities...).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Room").
				Placeholder("Optional, e.g. 204B").
				Value(&m.fb.roomNumber),
			huh.NewInput().
				Title("Estimated duration").
				Placeholder("Minutes (optional)").
				Value(&m.fb.duration).
				Validate(validateOptionalMinutes),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	in := model.TaskInput{
		Title:       strings.TrimSpace(m.fb.title),
		Description: strings.TrimSpace(m.fb.description),
		Priority:    m.fb.priority,
		RoomNumber:  strings.TrimSpace(m.fb.roomNumber),
	}
	if d := strings.TrimSpace(m.fb.duration); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			in.EstimatedDuration = &n
		}
	}
	return func() tea.Msg { return SubmitMsg{Input: in} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
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

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return "Low"
	case model.PriorityNormal:
		return "Normal"
	case model.PriorityUrgent:
		return "Urgent"
	case model.PriorityEmergency:
		return "Emergency"
	default:
		return string(p)
	}
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalMinutes(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number of minutes")
	}
	return nil
}
