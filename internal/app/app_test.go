package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careboard/internal/api"
	"github.com/nhle/careboard/internal/api/apitest"
	"github.com/nhle/careboard/internal/board"
	"github.com/nhle/careboard/internal/credential"
	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/notify"
	"github.com/nhle/careboard/internal/session"
	"github.com/nhle/careboard/internal/testutil"
	"github.com/nhle/careboard/internal/ui/command"
	"github.com/nhle/careboard/internal/ui/taskform"
)

type fixture struct {
	srv   *apitest.Server
	creds *credential.Store
	queue *notify.Queue
	mgr   *session.Manager
	model Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.AddUser("ana@general.org", "correct-horse", model.User{ID: "1", Name: "Ana"})
	srv.SetTasks(model.Task{ID: "7", Title: "Wound care", Priority: model.PriorityNormal, Status: model.StatusInProgress})

	creds := testutil.NewCredentialStore(t)
	q := notify.New(time.Minute)
	t.Cleanup(q.Close)
	mgr := session.NewManager(api.NewClient(srv.URL), creds, q)

	m := New(Deps{Session: mgr, Notifications: q, LoadFailurePolicy: board.LoadFailureSilent})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	return &fixture{srv: srv, creds: creds, queue: q, mgr: mgr, model: next.(Model)}
}

// send applies msg and returns the messages its command produces. Commands
// that block (such as waiting for notification changes) are abandoned.
func (f *fixture) send(t *testing.T, msg tea.Msg) []tea.Msg {
	t.Helper()
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return collect(cmd)
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(300 * time.Millisecond):
		return nil
	}
}

// deliver feeds back every produced message of type T.
func deliver[T tea.Msg](t *testing.T, f *fixture, msgs []tea.Msg) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	found := false
	for _, msg := range msgs {
		if _, ok := msg.(T); ok {
			found = true
			out = append(out, f.send(t, msg)...)
		}
	}
	if !found {
		var zero T
		t.Fatalf("no %T among %#v", zero, msgs)
	}
	return out
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	if err := f.mgr.Login(context.Background(), "ana@general.org", "correct-horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	deliver[tasksLoadedMsg](t, f, f.send(t, authResultMsg{}))
}

func TestStartupWithoutSessionShowsLogin(t *testing.T) {
	f := newFixture(t)

	deliver[restoredMsg](t, f, collect(f.model.restore()))

	if f.model.CurrentView() != ViewAuth {
		t.Errorf("view = %v, want ViewAuth", f.model.CurrentView())
	}
	if f.srv.TotalRequests() != 0 {
		t.Errorf("probe contacted the server %d times without a session", f.srv.TotalRequests())
	}
}

func TestStartupWithValidSessionMountsBoard(t *testing.T) {
	f := newFixture(t)
	token := f.srv.IssueToken("ana@general.org")
	if err := f.creds.Save(model.Session{Token: token, User: model.User{Name: "Ana"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	msgs := deliver[restoredMsg](t, f, collect(f.model.restore()))
	deliver[tasksLoadedMsg](t, f, msgs)

	if f.model.CurrentView() != ViewBoard {
		t.Fatalf("view = %v, want ViewBoard", f.model.CurrentView())
	}
	if n := f.srv.Requests("GET", "/tasks"); n != 1 {
		t.Errorf("GET /tasks called %d times, want exactly one fetch per mount", n)
	}
	if task, ok := f.model.boardView.Selected(); ok {
		t.Errorf("todo column should be empty, cursor on %+v", task)
	}
}

func TestCreateClosesFormAndShowsTaskFirst(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	f.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if f.model.CurrentView() != ViewCreate {
		t.Fatalf("view = %v, want ViewCreate", f.model.CurrentView())
	}

	msgs := f.send(t, taskform.SubmitMsg{Input: model.TaskInput{Title: "Check vitals", Priority: model.PriorityUrgent}})
	deliver[taskCreatedMsg](t, f, msgs)

	if f.model.CurrentView() != ViewBoard {
		t.Errorf("form still open: view = %v", f.model.CurrentView())
	}
	todo := f.model.board.Buckets()[model.StatusTodo]
	if len(todo) == 0 || todo[0].Title != "Check vitals" {
		t.Errorf("todo bucket = %+v", todo)
	}
	if task, ok := f.model.boardView.Selected(); !ok || task.Title != "Check vitals" {
		t.Errorf("board view selection = %+v", task)
	}

	found := false
	for _, n := range f.queue.List() {
		if n.Message == board.MsgCreated && n.Type == model.NotificationSuccess {
			found = true
		}
	}
	if !found {
		t.Errorf("notifications = %+v", f.queue.List())
	}
}

func TestCreateFailureKeepsFormOpen(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.srv.Fail("POST", "/tasks", 500, "")

	f.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	msgs := f.send(t, taskform.SubmitMsg{Input: model.TaskInput{Title: "Check vitals"}})
	deliver[taskCreatedMsg](t, f, msgs)

	if f.model.CurrentView() != ViewCreate {
		t.Errorf("view = %v, want form to stay open", f.model.CurrentView())
	}
	if len(f.model.board.Tasks()) != 1 {
		t.Errorf("tasks = %+v", f.model.board.Tasks())
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	f.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})

	if f.model.CurrentView() != ViewAuth {
		t.Errorf("view = %v, want ViewAuth", f.model.CurrentView())
	}
	if f.mgr.Authenticated() {
		t.Error("session still active")
	}
	if f.creds.Has(credential.TokenKey) || f.creds.Has(credential.UserKey) {
		t.Error("persisted credential not cleared")
	}
}

func TestDismissRemovesNewestNotification(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	before := f.queue.Len()
	f.queue.Info("Shift starts at 7")

	f.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	if f.queue.Len() != before {
		t.Errorf("Len = %d, want %d", f.queue.Len(), before)
	}
}

func TestCommandPaletteRefreshFetchesAgain(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	f.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	if f.model.CurrentView() != ViewCommand {
		t.Fatalf("view = %v, want ViewCommand", f.model.CurrentView())
	}

	deliver[tasksLoadedMsg](t, f, f.send(t, command.CommandMsg("refresh")))

	if f.model.CurrentView() != ViewBoard {
		t.Errorf("view = %v, want ViewBoard", f.model.CurrentView())
	}
	if n := f.srv.Requests("GET", "/tasks"); n != 2 {
		t.Errorf("GET /tasks called %d times, want 2", n)
	}
}
