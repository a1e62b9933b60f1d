package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/careboard/internal/board"
	"github.com/nhle/careboard/internal/keys"
	"github.com/nhle/careboard/internal/notify"
	"github.com/nhle/careboard/internal/session"
	"github.com/nhle/careboard/internal/store"
	"github.com/nhle/careboard/internal/theme"
	"github.com/nhle/careboard/internal/ui"
	activityview "github.com/nhle/careboard/internal/ui/activity"
	"github.com/nhle/careboard/internal/ui/authform"
	"github.com/nhle/careboard/internal/ui/boardview"
	"github.com/nhle/careboard/internal/ui/command"
	helpview "github.com/nhle/careboard/internal/ui/help"
	"github.com/nhle/careboard/internal/ui/taskform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewRestoring ViewState = iota
	ViewAuth
	ViewBoard
	ViewCreate
	ViewHelp
	ViewActivity
	ViewCommand
)

// Deps are the handles the root model is built from. Activity may be nil
// when the activity log is disabled.
type Deps struct {
	Session           *session.Manager
	Notifications     *notify.Queue
	Activity          store.Store
	LoadFailurePolicy board.LoadFailurePolicy
}

// Model is the root Bubble Tea model. It routes between the auth forms and
// the board depending on the session, and renders notifications on top of
// whichever view is active.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	session *session.Manager
	notify  *notify.Queue
	policy  board.LoadFailurePolicy
	board   *board.Board

	authForm     authform.Model
	taskForm     taskform.Model
	boardView    boardview.Model
	helpView     helpview.Model
	activityView activityview.Model
	commandView  command.Model

	ready bool
}

// New creates the root model.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView:  ViewRestoring,
		keys:         k,
		session:      deps.Session,
		notify:       deps.Notifications,
		policy:       deps.LoadFailurePolicy,
		authForm:     authform.New(80, 24),
		taskForm:     taskform.New(80, 24),
		boardView:    boardview.New(k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		activityView: activityview.New(deps.Activity, k, 80, 24),
		commandView:  command.New(80, 24),
	}
}

// Init probes any persisted session and starts listening for
// notification changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.restore(),
		m.notify.WaitForChange(),
	)
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.authForm.SetSize(contentWidth, contentHeight)
		m.taskForm.SetSize(contentWidth, contentHeight)
		m.boardView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.activityView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case notify.ChangedMsg:
		return m, m.notify.WaitForChange()

	case restoredMsg:
		if msg.ok {
			return m, m.mountBoard()
		}
		return m, m.showAuth()

	case authform.LoginSubmitMsg:
		return m, m.login(msg.Email, msg.Password)

	case authform.RegisterSubmitMsg:
		return m, m.register(msg.Registration)

	case authform.CancelMsg:
		return m, tea.Quit

	case authResultMsg:
		if msg.err != nil {
			return m, m.authForm.Restart()
		}
		return m, m.mountBoard()

	case tasksLoadedMsg:
		m.boardView.SetLoading(false)
		if m.board != nil {
			m.boardView.SetBuckets(m.board.Buckets())
		}
		return m, nil

	case taskform.SubmitMsg:
		return m, m.createTask(msg.Input)

	case taskform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			if m.currentView == ViewCreate {
				return m, m.taskForm.Retry()
			}
			return m, nil
		}
		m.refreshBuckets()
		if m.currentView == ViewCreate {
			m.currentView = ViewBoard
		}
		return m, nil

	case boardview.MoveMsg:
		return m, m.moveTask(msg.TaskID, msg.To)

	case taskMovedMsg:
		m.refreshBuckets()
		return m, nil

	case activityview.LoadedMsg:
		var cmd tea.Cmd
		m.activityView, cmd = m.activityView.Update(msg)
		return m, cmd

	case activityview.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case command.CommandMsg:
		m.currentView = ViewBoard
		return m, m.executeCommand(string(msg))

	case command.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewHelp {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.currentView = m.previousView
			}
			return m, nil
		}
		if m.currentView == ViewBoard {
			if next, cmd, handled := m.handleBoardKeys(msg); handled {
				return next, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleBoardKeys processes the global keys available on the board.
func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.New):
		m.currentView = ViewCreate
		return m, m.taskForm.StartCreate(), true

	case key.Matches(msg, m.keys.Command):
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTasks(), true

	case key.Matches(msg, m.keys.Dismiss):
		m.notify.DismissNewest()
		return m, nil, true

	case key.Matches(msg, m.keys.Activity):
		m.currentView = ViewActivity
		return m, m.activityView.Load(), true

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout(), true
	}
	return m, nil, false
}

// executeCommand runs a command palette entry.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh":
		return m.loadTasks()
	case "new":
		m.currentView = ViewCreate
		return m.taskForm.StartCreate()
	case "activity":
		m.currentView = ViewActivity
		return m.activityView.Load()
	case "help":
		m.previousView = ViewBoard
		m.currentView = ViewHelp
		return nil
	case "logout":
		return m.logout()
	case "quit":
		return tea.Quit
	default:
		return nil
	}
}

// logout ends the session and shows an empty login form.
func (m *Model) logout() tea.Cmd {
	m.session.Logout()
	m.board = nil
	m.boardView.SetBuckets(board.Partition(nil))
	m.currentView = ViewAuth
	return m.authForm.Reset()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAuth:
		m.authForm, cmd = m.authForm.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewCreate:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewActivity:
		m.activityView, cmd = m.activityView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// showAuth switches to the login form.
func (m *Model) showAuth() tea.Cmd {
	m.currentView = ViewAuth
	return m.authForm.StartLogin()
}

// mountBoard creates a fresh board for the active session and issues its
// single initial fetch.
func (m *Model) mountBoard() tea.Cmd {
	m.board = board.New(m.session.Client(), m.notify, m.policy)
	m.boardView.SetBuckets(board.Partition(nil))
	m.currentView = ViewBoard
	return m.loadTasks()
}

func (m *Model) refreshBuckets() {
	if m.board != nil {
		m.boardView.SetBuckets(m.board.Buckets())
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("careboard", m.who())
	toasts := m.layout.RenderNotifications(m.notify.List())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, toasts, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewRestoring:
		return lipgloss.NewStyle().
			Width(m.layout.ContentWidth()).
			Height(m.layout.ContentHeight()).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Checking session...")
	case ViewAuth:
		return m.authForm.View()
	case ViewBoard:
		return m.boardView.View()
	case ViewCreate:
		return m.taskForm.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewActivity:
		return m.activityView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// who describes the signed-in user for the header.
func (m Model) who() string {
	sess, ok := m.session.Current()
	if !ok {
		return "signed out"
	}
	name := sess.User.Name
	if name == "" {
		name = sess.User.Email
	}
	if sess.User.OrganizationName != "" {
		return fmt.Sprintf("%s · %s", name, sess.User.OrganizationName)
	}
	return name
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewAuth:
		return "enter next | ctrl+t switch form | esc quit"
	case ViewCreate:
		return "enter submit | esc cancel"
	case ViewHelp:
		return "? close help | esc back"
	case ViewActivity:
		return "j/k scroll | r reload | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewBoard:
		return m.helpView.ShortView()
	default:
		return "ctrl+c quit"
	}
}
