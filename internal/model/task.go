package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Status is the lifecycle state of a care task.
type Status string

// Recognized task statuses. Each one is a column on the board.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusHandoff    Status = "handoff"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{
	StatusTodo,
	StatusInProgress,
	StatusCompleted,
	StatusHandoff,
}

// Valid reports whether s is one of the four recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusHandoff:
		return true
	default:
		return false
	}
}

// Label returns the column heading for s.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusHandoff:
		return "Handoff"
	default:
		return string(s)
	}
}

// NextStatuses returns the statuses a task in s may move to.
// Completed is terminal.
func NextStatuses(s Status) []Status {
	switch s {
	case StatusTodo:
		return []Status{StatusInProgress}
	case StatusInProgress:
		return []Status{StatusCompleted, StatusHandoff}
	case StatusHandoff:
		return []Status{StatusCompleted}
	default:
		return nil
	}
}

// CanTransition reports whether a task in from may move to to.
func CanTransition(from, to Status) bool {
	for _, s := range NextStatuses(from) {
		if s == to {
			return true
		}
	}
	return false
}

// Priority is the clinical urgency of a task.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityNormal    Priority = "normal"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

// Priorities lists the accepted priorities from least to most urgent.
var Priorities = []Priority{
	PriorityLow,
	PriorityNormal,
	PriorityUrgent,
	PriorityEmergency,
}

// ID is a server-assigned identifier of a task or user. The API may send
// it as a JSON number or a string; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids back as numbers and everything
// else, including forms like "007" or "+5", as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// AssignedUser is the caregiver a task is assigned to.
type AssignedUser struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Task is a single unit of care work tracked on the board.
type Task struct {
	ID                ID            `json:"id"`
	Title             string        `json:"title"`
	Description       string        `json:"description,omitempty"`
	Priority          Priority      `json:"priority"`
	RoomNumber        string        `json:"room_number,omitempty"`
	EstimatedDuration *int          `json:"estimated_duration,omitempty"`
	Status            Status        `json:"status"`
	AssignedUser      *AssignedUser `json:"assigned_user,omitempty"`
}

// TaskInput holds the fields a user supplies when creating a task.
type TaskInput struct {
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Priority          Priority `json:"priority"`
	RoomNumber        string   `json:"room_number,omitempty"`
	EstimatedDuration *int     `json:"estimated_duration,omitempty"`
}
