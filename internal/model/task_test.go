package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{name: "number", in: `{"id": 42, "title": "x", "status": "todo"}`, want: "42"},
		{name: "string", in: `{"id": "a1b2", "title": "x", "status": "todo"}`, want: "a1b2"},
		{name: "null", in: `{"id": null, "title": "x", "status": "todo"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			if err := json.Unmarshal([]byte(tt.in), &task); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if task.ID != tt.want {
				t.Errorf("ID = %q, want %q", task.ID, tt.want)
			}
		})
	}
}

func TestIDMarshalKeepsNumericForm(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{"17", `17`},
		{"-3", `-3`},
		{"0", `0`},
		{"abc", `"abc"`},
		{"007", `"007"`},
		{"+5", `"+5"`},
		{"", `""`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.id)
		if err != nil {
			t.Fatalf("marshal %q: %v", tt.id, err)
		}
		if string(data) != tt.want {
			t.Errorf("marshal %q = %s, want %s", tt.id, data, tt.want)
		}

		var back ID
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != tt.id {
			t.Errorf("round trip %q = %q", tt.id, back)
		}
	}
}

func TestNextStatuses(t *testing.T) {
	tests := []struct {
		from Status
		want []Status
	}{
		{StatusTodo, []Status{StatusInProgress}},
		{StatusInProgress, []Status{StatusCompleted, StatusHandoff}},
		{StatusHandoff, []Status{StatusCompleted}},
		{StatusCompleted, nil},
		{Status("archived"), nil},
	}

	for _, tt := range tests {
		got := NextStatuses(tt.from)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NextStatuses(%q) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Status{"", "done", "TODO"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusTodo, StatusInProgress, true},
		{StatusTodo, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusHandoff, true},
		{StatusHandoff, StatusCompleted, true},
		{StatusHandoff, StatusTodo, false},
		{StatusCompleted, StatusTodo, false},
		{Status("archived"), StatusTodo, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
