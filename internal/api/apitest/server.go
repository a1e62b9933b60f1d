// Package apitest provides an in-process fake of the care coordination API
// for tests. It issues real signed bearer tokens and enforces them on the
// protected routes, and it records every request so tests can assert that
// no call was made.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nhle/careboard/internal/model"
)

var signingKey = []byte("apitest-signing-key")

// Claims are the JWT claims the fake server puts in its tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

type account struct {
	password string
	user     model.User
}

type failure struct {
	status  int
	message string
}

// Server is a fake API backed by gin and httptest.
type Server struct {
	URL string

	mu       sync.Mutex
	accounts map[string]account
	tasks    []model.Task
	requests map[string]int
	failures map[string]failure
	revoked  map[string]bool
}

// NewServer starts a fake API and stops it when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	s := &Server{
		accounts: make(map[string]account),
		requests: make(map[string]int),
		failures: make(map[string]failure),
		revoked:  make(map[string]bool),
	}

	r := gin.New()
	r.Use(s.record, s.injectFailure)
	r.POST("/auth/login", s.login)
	r.POST("/auth/register-organization", s.register)

	authed := r.Group("/", s.requireToken)
	authed.GET("/users", s.listUsers)
	authed.GET("/tasks", s.listTasks)
	authed.POST("/tasks", s.createTask)
	authed.PUT("/tasks/:id", s.updateTask)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	s.URL = ts.URL

	return s
}

// AddUser registers an account that can log in.
func (s *Server) AddUser(email, password string, user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.Email == "" {
		user.Email = email
	}
	s.accounts[email] = account{password: password, user: user}
}

// SetTasks replaces the server's task collection.
func (s *Server) SetTasks(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]model.Task(nil), tasks...)
}

// Tasks returns a copy of the server's task collection.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

// Fail makes every request matching method and route pattern (e.g.
// "PUT", "/tasks/:id") answer with status and an {"error": message} body.
// An empty message produces a body without the error field.
func (s *Server) Fail(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+route] = failure{status: status, message: message}
}

// Recover removes a failure installed with Fail.
func (s *Server) Recover(method, route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+route)
}

// Revoke makes a previously issued token fail authentication.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// Requests returns how many requests hit method and route pattern.
func (s *Server) Requests(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+route]
}

// TotalRequests returns how many requests the server received.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// IssueToken signs a token for email, valid for an hour.
func (s *Server) IssueToken(email string) string {
	claims := &Claims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("apitest: signing token: %v", err))
	}
	return token
}

func (s *Server) record(c *gin.Context) {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	s.mu.Lock()
	s.requests[c.Request.Method+" "+route]++
	s.mu.Unlock()
	c.Next()
}

func (s *Server) injectFailure(c *gin.Context) {
	s.mu.Lock()
	f, ok := s.failures[c.Request.Method+" "+c.FullPath()]
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	if f.message == "" {
		c.AbortWithStatusJSON(f.status, gin.H{})
		return
	}
	c.AbortWithStatusJSON(f.status, gin.H{"error": f.message})
}

func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" || raw == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
		return
	}

	s.mu.Lock()
	revoked := s.revoked[raw]
	s.mu.Unlock()
	if revoked {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
		return
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
		return
	}

	c.Set("email", claims.Email)
	c.Next()
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[body.Email]
	s.mu.Unlock()
	if !ok || acct.password != body.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": s.IssueToken(body.Email),
		"user":  acct.user,
	})
}

func (s *Server) register(c *gin.Context) {
	var reg model.OrganizationRegistration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[reg.AdminEmail]; exists {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	user := model.User{
		ID:               model.ID(uuid.NewString()),
		Name:             reg.AdminName,
		Email:            reg.AdminEmail,
		Role:             "admin",
		OrganizationName: reg.OrganizationName,
	}
	s.accounts[reg.AdminEmail] = account{password: reg.AdminPassword, user: user}
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"token": s.IssueToken(reg.AdminEmail),
		"user":  user,
	})
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	users := make([]model.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		users = append(users, a.user)
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": s.Tasks()})
}

func (s *Server) createTask(c *gin.Context) {
	var in model.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if in.Priority == "" {
		in.Priority = model.PriorityNormal
	}

	task := model.Task{
		ID:                model.ID(uuid.NewString()),
		Title:             in.Title,
		Description:       in.Description,
		Priority:          in.Priority,
		RoomNumber:        in.RoomNumber,
		EstimatedDuration: in.EstimatedDuration,
		Status:            model.StatusTodo,
	}

	s.mu.Lock()
	s.tasks = append([]model.Task{task}, s.tasks...)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var body struct {
		Status model.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	id := model.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = body.Status
			c.JSON(http.StatusOK, s.tasks[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
}
