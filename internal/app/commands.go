package app

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careboard/internal/model"
)

// restoredMsg is sent after the startup session probe.
type restoredMsg struct{ ok bool }

// authResultMsg is sent after a login or registration attempt.
type authResultMsg struct{ err error }

// tasksLoadedMsg is sent after a board fetch. The board keeps its previous
// collection on failure.
type tasksLoadedMsg struct{ err error }

// taskCreatedMsg is sent after a create attempt.
type taskCreatedMsg struct{ err error }

// taskMovedMsg is sent after a status update attempt.
type taskMovedMsg struct{ err error }

// restore probes the persisted session. Probe failures are logged; the
// user simply lands on the login form.
func (m *Model) restore() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ok, err := s.Restore(context.Background())
		if err != nil {
			log.Printf("restoring session: %v", err)
		}
		return restoredMsg{ok: ok}
	}
}

func (m *Model) login(email, password string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return authResultMsg{err: s.Login(context.Background(), email, password)}
	}
}

func (m *Model) register(reg model.OrganizationRegistration) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return authResultMsg{err: s.Register(context.Background(), reg)}
	}
}

// loadTasks fetches the board collection.
func (m *Model) loadTasks() tea.Cmd {
	b := m.board
	if b == nil {
		return nil
	}
	spin := m.boardView.SetLoading(true)
	return tea.Batch(spin, func() tea.Msg {
		return tasksLoadedMsg{err: b.Load(context.Background())}
	})
}

func (m *Model) createTask(in model.TaskInput) tea.Cmd {
	b := m.board
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := b.Create(context.Background(), in)
		return taskCreatedMsg{err: err}
	}
}

func (m *Model) moveTask(id model.ID, to model.Status) tea.Cmd {
	b := m.board
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := b.UpdateStatus(context.Background(), id, to)
		return taskMovedMsg{err: err}
	}
}
