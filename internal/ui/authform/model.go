// Package authform holds the login and organization registration forms
// shown while no session is active.
package authform

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/theme"
)

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoginSubmitMsg is dispatched when the login form is submitted.
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// RegisterSubmitMsg is dispatched when the registration form is submitted.
type RegisterSubmitMsg struct {
	Registration model.OrganizationRegistration
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string

	orgName    string
	adminName  string
	adminEmail string
	adminPass  string
}

// Model is the Bubble Tea model for the authentication forms. Field
// validation is left to the session store so every rejection surfaces as
// a notification.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	mode    Mode
	busy    bool
	spinner spinner.Model
	width   int
	height  int
}

// New creates an auth form model in login mode.
func New(width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		fb:      &formBindings{},
		mode:    ModeLogin,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Mode returns the form currently shown.
func (m Model) Mode() Mode {
	return m.mode
}

// Busy reports whether a submission is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// StartLogin shows the login form. The email entered previously is kept;
// the password is cleared.
func (m *Model) StartLogin() tea.Cmd {
	m.mode = ModeLogin
	m.busy = false
	m.fb.password = ""
	m.form = m.buildLoginForm()
	return m.form.Init()
}

// StartRegister shows the registration form. Entered values are kept
// except the password.
func (m *Model) StartRegister() tea.Cmd {
	m.mode = ModeRegister
	m.busy = false
	m.fb.adminPass = ""
	m.form = m.buildRegisterForm()
	return m.form.Init()
}

// Restart shows the current form again after a failed submission.
func (m *Model) Restart() tea.Cmd {
	if m.mode == ModeRegister {
		return m.StartRegister()
	}
	return m.StartLogin()
}

// Toggle switches between the login and registration forms.
func (m *Model) Toggle() tea.Cmd {
	if m.mode == ModeLogin {
		return m.StartRegister()
	}
	return m.StartLogin()
}

// Reset clears every field, used after logout.
func (m *Model) Reset() tea.Cmd {
	*m.fb = formBindings{}
	return m.StartLogin()
}

// Update handles messages for the auth form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	if m.form == nil {
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+t" {
		return m, m.Toggle()
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

// View renders the active form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Sign in"
	switchHint := "ctrl+t register a new organization"
	if m.mode == ModeRegister {
		titleText = "Register organization"
		switchHint = "ctrl+t back to sign in"
	}

	body := m.form.View()
	if m.busy {
		body = m.spinner.View() + " Contacting server..."
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render(titleText),
		body,
		"",
		theme.HelpStyle.Render(switchHint),
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("nurse@hospital.org").
				Value(&m.fb.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m *Model) buildRegisterForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Organization name").
				Value(&m.fb.orgName),
			huh.NewInput().
				Title("Admin name").
				Value(&m.fb.adminName),
			huh.NewInput().
				Title("Admin email").
				Value(&m.fb.adminEmail),
			huh.NewInput().
				Title("Admin password").
				Description("At least 8 characters").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.adminPass),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) handleSubmit() tea.Cmd {
	if m.mode == ModeRegister {
		reg := model.OrganizationRegistration{
			OrganizationName: m.fb.orgName,
			AdminName:        m.fb.adminName,
			AdminEmail:       m.fb.adminEmail,
			AdminPassword:    m.fb.adminPass,
		}
		return func() tea.Msg { return RegisterSubmitMsg{Registration: reg} }
	}
	email, password := m.fb.email, m.fb.password
	return func() tea.Msg { return LoginSubmitMsg{Email: email, Password: password} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 72 {
		w = 72
	}
	return w
}
