package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/notify"
	"github.com/nhle/careboard/internal/store"
	"github.com/nhle/careboard/internal/testutil"
)

func TestRecordAndGetActivity(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	entries := []model.Notification{
		{ID: 1, Message: "Welcome back, Ana!", Type: model.NotificationSuccess, CreatedAt: base},
		{ID: 2, Message: "Failed to create task", Type: model.NotificationError, CreatedAt: base.Add(time.Minute)},
		{ID: 3, Message: "Task updated", Type: model.NotificationSuccess, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, n := range entries {
		if err := s.RecordActivity(ctx, n); err != nil {
			t.Fatalf("RecordActivity: %v", err)
		}
	}

	all, err := s.GetActivity(ctx, store.ActivityFilter{})
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].NotificationID != 3 || all[2].NotificationID != 1 {
		t.Errorf("not newest first: %+v", all)
	}
	if all[0].ID == "" || all[0].ID == all[1].ID {
		t.Errorf("expected distinct row ids, got %q and %q", all[0].ID, all[1].ID)
	}
	if !all[2].CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", all[2].CreatedAt, base)
	}

	errType := model.NotificationError
	errs, err := s.GetActivity(ctx, store.ActivityFilter{Type: &errType})
	if err != nil {
		t.Fatalf("GetActivity(type): %v", err)
	}
	if len(errs) != 1 || errs[0].Message != "Failed to create task" {
		t.Errorf("error filter = %+v", errs)
	}

	limited, err := s.GetActivity(ctx, store.ActivityFilter{Limit: 2})
	if err != nil {
		t.Fatalf("GetActivity(limit): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: got %d entries", len(limited))
	}

	since := base.Add(90 * time.Second)
	recent, err := s.GetActivity(ctx, store.ActivityFilter{Since: &since})
	if err != nil {
		t.Fatalf("GetActivity(since): %v", err)
	}
	if len(recent) != 1 || recent[0].NotificationID != 3 {
		t.Errorf("since filter = %+v", recent)
	}
}

func TestPruneActivity(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.RecordActivity(ctx, model.Notification{ID: 1, Message: "old", Type: model.NotificationInfo, CreatedAt: now.Add(-48 * time.Hour)})
	_ = s.RecordActivity(ctx, model.Notification{ID: 2, Message: "new", Type: model.NotificationInfo, CreatedAt: now})

	n, err := s.PruneActivity(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneActivity: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}

	left, _ := s.GetActivity(ctx, store.ActivityFilter{})
	if len(left) != 1 || left[0].Message != "new" {
		t.Errorf("remaining = %+v", left)
	}
}

func TestRecorderWiresQueueToStore(t *testing.T) {
	s := testutil.NewTestStore(t)
	q := notify.New(time.Minute, notify.WithRecorder(store.Recorder{Store: s}))
	defer q.Close()

	q.Success("Task created successfully")

	got, err := s.GetActivity(context.Background(), store.ActivityFilter{})
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if len(got) != 1 || got[0].Message != "Task created successfully" || got[0].Type != model.NotificationSuccess {
		t.Errorf("activity = %+v", got)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "activity.db")

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.RecordActivity(context.Background(), model.Notification{ID: 1, Message: "x", Type: model.NotificationInfo}); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.GetActivity(context.Background(), store.ActivityFilter{})
	if err != nil || len(got) != 1 {
		t.Errorf("after reopen: %v, %+v", err, got)
	}
}
