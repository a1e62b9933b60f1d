package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nhle/careboard/internal/api"
	"github.com/nhle/careboard/internal/api/apitest"
	"github.com/nhle/careboard/internal/model"
)

func TestLoginReturnsTokenAndUser(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("nurse@example.org", "correct-horse", model.User{Name: "Ana", OrganizationName: "General"})

	resp, err := api.NewClient(srv.URL).Login(context.Background(), api.Credentials{
		Email:    "nurse@example.org",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Name != "Ana" || resp.User.OrganizationName != "General" {
		t.Errorf("unexpected user: %+v", resp.User)
	}
}

func TestLoginRejectedIsAuthenticationError(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("nurse@example.org", "correct-horse", model.User{Name: "Ana"})

	_, err := api.NewClient(srv.URL).Login(context.Background(), api.Credentials{
		Email:    "nurse@example.org",
		Password: "wrong",
	})
	if !api.IsAuthenticationError(err) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if got := api.ServerMessage(err, "fallback"); got != "Invalid credentials" {
		t.Errorf("ServerMessage = %q, want server text", got)
	}
}

func TestLoginRejectedWithoutMessageUsesDefault(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Fail(http.MethodPost, "/auth/login", http.StatusInternalServerError, "")

	_, err := api.NewClient(srv.URL).Login(context.Background(), api.Credentials{Email: "a", Password: "b"})

	var authErr *api.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.Message != "Login failed" {
		t.Errorf("Message = %q, want default", authErr.Message)
	}
}

func TestTransportFailureIsNotAuthenticationError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := api.NewClient(url).Login(context.Background(), api.Credentials{Email: "a", Password: "b"})
	if err == nil {
		t.Fatal("expected error")
	}
	if api.IsAuthenticationError(err) {
		t.Errorf("transport failure should not be an AuthenticationError: %v", err)
	}
	if got := api.ServerMessage(err, "fallback"); got != "fallback" {
		t.Errorf("ServerMessage = %q, want fallback", got)
	}
}

func TestRegisterOrganization(t *testing.T) {
	srv := apitest.NewServer(t)
	client := api.NewClient(srv.URL)
	reg := model.OrganizationRegistration{
		OrganizationName: "Riverside Clinic",
		AdminName:        "Sam",
		AdminEmail:       "sam@riverside.org",
		AdminPassword:    "longenough",
	}

	resp, err := client.RegisterOrganization(context.Background(), reg)
	if err != nil {
		t.Fatalf("RegisterOrganization: %v", err)
	}
	if resp.User.OrganizationName != "Riverside Clinic" {
		t.Errorf("OrganizationName = %q", resp.User.OrganizationName)
	}

	_, err = client.RegisterOrganization(context.Background(), reg)
	if got := api.ServerMessage(err, ""); got != "Email already registered" {
		t.Errorf("second registration: got %q (%v)", got, err)
	}
}

func TestVerifyToken(t *testing.T) {
	srv := apitest.NewServer(t)
	token := srv.IssueToken("x@example.org")
	client := api.NewClient(srv.URL)

	if err := client.WithToken(token).VerifyToken(context.Background()); err != nil {
		t.Errorf("valid token rejected: %v", err)
	}
	if err := client.VerifyToken(context.Background()); err == nil {
		t.Error("missing token accepted")
	}
	if err := client.WithToken("garbage").VerifyToken(context.Background()); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestTaskEndpoints(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SetTasks(model.Task{ID: "1", Title: "Round", Status: model.StatusTodo, Priority: model.PriorityLow})
	client := api.NewClient(srv.URL).WithToken(srv.IssueToken("x@example.org"))
	ctx := context.Background()

	tasks, err := client.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Fatalf("ListTasks = %+v", tasks)
	}

	duration := 15
	created, err := client.CreateTask(ctx, model.TaskInput{
		Title:             "Check vitals",
		Priority:          model.PriorityUrgent,
		RoomNumber:        "204B",
		EstimatedDuration: &duration,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == "" || created.Status != model.StatusTodo || created.RoomNumber != "204B" {
		t.Errorf("unexpected created task: %+v", created)
	}
	if created.EstimatedDuration == nil || *created.EstimatedDuration != 15 {
		t.Errorf("EstimatedDuration = %v", created.EstimatedDuration)
	}

	updated, err := client.UpdateTaskStatus(ctx, "1", model.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("Status = %q", updated.Status)
	}

	_, err = client.UpdateTaskStatus(ctx, "missing", model.StatusCompleted)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 api.Error, got %v", err)
	}
	if apiErr.Message != "Task not found" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClientSendsBearerAndJSONHeaders(t *testing.T) {
	var gotAuth, gotType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 3, "title": "t", "status": "todo"}`))
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL+"/", api.WithTimeout(time.Second)).WithToken("tok")
	if _, err := client.CreateTask(context.Background(), model.TaskInput{Title: "t"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.HasPrefix(gotType, "application/json") {
		t.Errorf("Content-Type = %q", gotType)
	}
}
