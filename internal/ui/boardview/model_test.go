package boardview

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careboard/internal/board"
	"github.com/nhle/careboard/internal/keys"
	"github.com/nhle/careboard/internal/model"
)

func press(m Model, k string) (Model, tea.Msg) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m, cmd := m.Update(msg)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func newView(tasks ...model.Task) Model {
	m := New(keys.DefaultKeyMap(), 120, 30)
	m.SetBuckets(board.Partition(tasks))
	return m
}

func TestAdvanceFollowsTransitionPolicy(t *testing.T) {
	tests := []struct {
		name   string
		status model.Status
		column int
		want   model.Status
		moves  bool
	}{
		{name: "todo starts", status: model.StatusTodo, column: 0, want: model.StatusInProgress, moves: true},
		{name: "in progress completes", status: model.StatusInProgress, column: 1, want: model.StatusCompleted, moves: true},
		{name: "handoff completes", status: model.StatusHandoff, column: 3, want: model.StatusCompleted, moves: true},
		{name: "completed is terminal", status: model.StatusCompleted, column: 2, moves: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newView(model.Task{ID: "1", Title: "Meds", Status: tt.status})
			for i := 0; i < tt.column; i++ {
				m, _ = press(m, "l")
			}

			_, msg := press(m, "enter")
			if !tt.moves {
				if msg != nil {
					t.Fatalf("expected no move, got %#v", msg)
				}
				return
			}
			mv, ok := msg.(MoveMsg)
			if !ok {
				t.Fatalf("msg = %#v, want MoveMsg", msg)
			}
			if mv.TaskID != "1" || mv.To != tt.want {
				t.Errorf("move = %+v, want to %s", mv, tt.want)
			}
		})
	}
}

func TestHandoffOnlyFromInProgress(t *testing.T) {
	m := newView(
		model.Task{ID: "1", Status: model.StatusTodo},
		model.Task{ID: "2", Status: model.StatusInProgress},
	)

	if _, msg := press(m, "H"); msg != nil {
		t.Errorf("handoff from todo produced %#v", msg)
	}

	m, _ = press(m, "l")
	_, msg := press(m, "H")
	mv, ok := msg.(MoveMsg)
	if !ok || mv.TaskID != "2" || mv.To != model.StatusHandoff {
		t.Errorf("msg = %#v", msg)
	}
}

func TestCursorClampedWhenBucketShrinks(t *testing.T) {
	m := newView(
		model.Task{ID: "1", Status: model.StatusTodo},
		model.Task{ID: "2", Status: model.StatusTodo},
	)
	m, _ = press(m, "j")
	if task, _ := m.Selected(); task.ID != "2" {
		t.Fatalf("selected %s, want 2", task.ID)
	}

	m.SetBuckets(board.Partition([]model.Task{{ID: "1", Status: model.StatusTodo}}))
	if task, ok := m.Selected(); !ok || task.ID != "1" {
		t.Errorf("selected %+v after shrink", task)
	}
}
