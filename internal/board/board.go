// Package board holds the task collection behind the status board and the
// operations that change it.
package board

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/nhle/careboard/internal/api"
	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/notify"
)

// Notification texts.
const (
	MsgTitleRequired = "Title is required"
	MsgCreated       = "Task created successfully"
	MsgCreateFailed  = "Failed to create task"
	MsgUpdated       = "Task updated"
	MsgUpdateFailed  = "Failed to update task"
	MsgLoadFailed    = "Failed to load tasks"
)

// ErrTitleRequired is returned by Create when the title is blank.
var ErrTitleRequired = errors.New(MsgTitleRequired)

// LoadFailurePolicy decides what a failed Load shows the user.
type LoadFailurePolicy string

const (
	// LoadFailureSilent only logs the failure.
	LoadFailureSilent LoadFailurePolicy = model.LoadFailureSilent
	// LoadFailureNotify also enqueues an error notification.
	LoadFailureNotify LoadFailurePolicy = model.LoadFailureNotify
)

// TaskAPI is the subset of the API client the board needs.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error)
	UpdateTaskStatus(ctx context.Context, id model.ID, status model.Status) (*model.Task, error)
}

// Buckets is the task collection partitioned by status, each bucket in
// collection order.
type Buckets map[model.Status][]model.Task

// Board owns the local task collection. It is safe for concurrent use.
type Board struct {
	api      TaskAPI
	notifier notify.Notifier
	policy   LoadFailurePolicy

	mu     sync.RWMutex
	tasks  []model.Task
	loaded bool
}

// New creates an empty board. An unknown policy falls back to silent.
func New(client TaskAPI, notifier notify.Notifier, policy LoadFailurePolicy) *Board {
	if policy != LoadFailureNotify {
		policy = LoadFailureSilent
	}
	return &Board{
		api:      client,
		notifier: notifier,
		policy:   policy,
	}
}

// Load fetches the full collection and replaces the local one. On failure
// the previous collection is kept and the error is logged, then reported
// according to the board's LoadFailurePolicy.
func (b *Board) Load(ctx context.Context) error {
	tasks, err := b.api.ListTasks(ctx)
	if err != nil {
		log.Printf("loading tasks: %v", err)
		if b.policy == LoadFailureNotify {
			b.notifier.Enqueue(api.ServerMessage(err, MsgLoadFailed), model.NotificationError)
		}
		return err
	}

	b.mu.Lock()
	b.tasks = tasks
	b.loaded = true
	b.mu.Unlock()
	return nil
}

// Create sends a new task to the server and prepends the server's copy to
// the collection.
func (b *Board) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		b.notifier.Enqueue(MsgTitleRequired, model.NotificationError)
		return nil, ErrTitleRequired
	}
	if in.Priority == "" {
		in.Priority = model.PriorityNormal
	}

	task, err := b.api.CreateTask(ctx, in)
	if err != nil {
		b.notifier.Enqueue(api.ServerMessage(err, MsgCreateFailed), model.NotificationError)
		return nil, err
	}

	b.mu.Lock()
	b.tasks = append([]model.Task{*task}, b.tasks...)
	b.mu.Unlock()

	b.notifier.Enqueue(MsgCreated, model.NotificationSuccess)
	return task, nil
}

// UpdateStatus asks the server to move task id to status and replaces the
// local entry with the server's representation. Transition rules are not
// checked here; see model.CanTransition.
func (b *Board) UpdateStatus(ctx context.Context, id model.ID, status model.Status) (*model.Task, error) {
	task, err := b.api.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		b.notifier.Enqueue(api.ServerMessage(err, MsgUpdateFailed), model.NotificationError)
		return nil, err
	}

	b.mu.Lock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			b.tasks[i] = *task
			break
		}
	}
	b.mu.Unlock()

	b.notifier.Enqueue(MsgUpdated, model.NotificationSuccess)
	return task, nil
}

// Tasks returns a copy of the collection, newest created first.
func (b *Board) Tasks() []model.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Task returns the task with id, if present.
func (b *Board) Task(id model.ID) (model.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Loaded reports whether a Load has succeeded at least once.
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Buckets partitions the current collection by status.
func (b *Board) Buckets() Buckets {
	return Partition(b.Tasks())
}

// Partition groups tasks into the four status buckets. Tasks whose status
// is not recognized land in no bucket.
func Partition(tasks []model.Task) Buckets {
	buckets := make(Buckets, len(model.Statuses))
	for _, s := range model.Statuses {
		buckets[s] = []model.Task{}
	}
	for _, t := range tasks {
		if bucket, ok := buckets[t.Status]; ok {
			buckets[t.Status] = append(bucket, t)
		}
	}
	return buckets
}
