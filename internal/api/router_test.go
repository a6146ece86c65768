package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isdelr/todo-manager-be/internal/auth"
	"github.com/isdelr/todo-manager-be/internal/config"
	"github.com/isdelr/todo-manager-be/internal/database"
	"github.com/isdelr/todo-manager-be/internal/models"
	"github.com/isdelr/todo-manager-be/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.New("file::memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, "admin", "Admin@123"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTIssuer:        "todo-manager",
		JWTAudience:      "todo-manager-client",
		JWTExpiryMinutes: 60,
		CORSOrigin:       "http://localhost:3000",
	}

	tokens := auth.NewTokenService(cfg)
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	authService := services.NewAuthService(db, userService, tokens, auditService)
	todoService := services.NewTodoService(db, auditService)

	srv := httptest.NewServer(NewRouter(tokens, authService, userService, todoService, auditService, cfg.CORSOrigin))
	t.Cleanup(srv.Close)
	return srv
}

// call issues a request against the test server and decodes the envelope.
func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return res.StatusCode, env
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	status, env := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName":        username,
		"firstName":       "Test",
		"lastName":        "User",
		"email":           username + "@example.com",
		"password":        "secret123",
		"confirmPassword": "secret123",
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("register %q: status=%d message=%q", username, status, env.Message)
	}
	return login(t, srv, username, "secret123")
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()

	status, env := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"userName": username,
		"password": password,
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("login %q: status=%d message=%q", username, status, env.Message)
	}
	var result struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if result.Token == "" {
		t.Fatal("login returned no token")
	}
	return result.Token
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice")

	status, env := call(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("me: status=%d message=%q", status, env.Message)
	}
	var profile models.User
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Username != "alice" {
		t.Fatalf("profile username = %q", profile.Username)
	}
	if len(profile.Roles) != 1 || profile.Roles[0].Name != models.RoleUser {
		t.Fatalf("profile roles = %+v", profile.Roles)
	}

	status, _ = call(t, srv, http.MethodGet, "/api/auth/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("me without token: status=%d, want 401", status)
	}
}

func TestLoginFailureIsSymmetric(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice")

	for _, creds := range []map[string]string{
		{"userName": "ghost", "password": "x"},
		{"userName": "alice", "password": "wrong"},
	} {
		status, env := call(t, srv, http.MethodPost, "/api/auth/login", "", creds)
		if status != http.StatusBadRequest {
			t.Fatalf("login %v: status=%d, want 400", creds, status)
		}
		if env.Success || env.Message != "Invalid username or password." {
			t.Fatalf("login %v: success=%v message=%q", creds, env.Success, env.Message)
		}
	}
}

func TestRegisterValidationFailures(t *testing.T) {
	srv := newTestServer(t)

	status, env := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName": "alice", "password": "secret123", "confirmPassword": "different123",
	})
	if status != http.StatusBadRequest || env.Message != "Passwords do not match." {
		t.Fatalf("mismatch: status=%d message=%q", status, env.Message)
	}

	registerAndLogin(t, srv, "alice")
	status, env = call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName": "alice", "password": "secret123", "confirmPassword": "secret123",
	})
	if status != http.StatusBadRequest || env.Message != "Username is already taken." {
		t.Fatalf("taken: status=%d message=%q", status, env.Message)
	}
}

func TestTodoLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice")

	// Create
	status, env := call(t, srv, http.MethodPost, "/api/todo", token, map[string]interface{}{
		"title": "Pay bills", "category": "work", "priority": "high",
	})
	if status != http.StatusCreated || !env.Success {
		t.Fatalf("create: status=%d message=%q", status, env.Message)
	}
	var created models.Todo
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.IsCompleted || created.CompletedAt != nil {
		t.Fatalf("created = %+v", created)
	}
	if created.Category != models.CategoryWork || created.Priority != models.PriorityHigh {
		t.Fatalf("created enums = %q/%q", created.Category, created.Priority)
	}

	// Toggle
	status, env = call(t, srv, http.MethodPatch, "/api/todo/"+created.ID+"/toggle", token, nil)
	if status != http.StatusOK {
		t.Fatalf("toggle: status=%d message=%q", status, env.Message)
	}
	var toggled models.Todo
	if err := json.Unmarshal(env.Data, &toggled); err != nil {
		t.Fatalf("decode toggled: %v", err)
	}
	if !toggled.IsCompleted || toggled.CompletedAt == nil {
		t.Fatalf("toggled = %+v", toggled)
	}

	// Stats
	status, env = call(t, srv, http.MethodGet, "/api/todo/stats", token, nil)
	if status != http.StatusOK {
		t.Fatalf("stats: status=%d message=%q", status, env.Message)
	}
	var stats models.TodoStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	want := models.TodoStats{Total: 1, Work: 1, Personal: 0, Completed: 1, HighPriority: 1, MediumPriority: 0, LowPriority: 0}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}

	// Update
	status, env = call(t, srv, http.MethodPut, "/api/todo/"+created.ID, token, map[string]interface{}{
		"title": "Pay bills soon", "category": "personal", "priority": "low",
	})
	if status != http.StatusOK {
		t.Fatalf("update: status=%d message=%q", status, env.Message)
	}

	// Delete, then the second delete is a 404.
	status, _ = call(t, srv, http.MethodDelete, "/api/todo/"+created.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: status=%d", status)
	}
	status, _ = call(t, srv, http.MethodDelete, "/api/todo/"+created.ID, token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("second delete: status=%d, want 404", status)
	}
}

func TestTodoOwnershipHidesForeignTasks(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := registerAndLogin(t, srv, "alice")
	bobToken := registerAndLogin(t, srv, "bob")

	status, env := call(t, srv, http.MethodPost, "/api/todo", aliceToken, map[string]interface{}{
		"title": "Alice's secret", "category": "personal", "priority": "low",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: status=%d", status)
	}
	var created models.Todo
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	// Bob's requests are indistinguishable from the task not existing.
	status, env = call(t, srv, http.MethodGet, "/api/todo/"+created.ID, bobToken, nil)
	if status != http.StatusNotFound || env.Message != "Task not found." {
		t.Fatalf("bob get: status=%d message=%q", status, env.Message)
	}
	status, _ = call(t, srv, http.MethodPatch, "/api/todo/"+created.ID+"/toggle", bobToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("bob toggle: status=%d, want 404", status)
	}
}

func TestTodoFilterValidation(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice")

	status, env := call(t, srv, http.MethodGet, "/api/todo?category=chores", token, nil)
	if status != http.StatusBadRequest || env.Success {
		t.Fatalf("invalid category: status=%d message=%q", status, env.Message)
	}

	// An invalid priority is skipped, not an error.
	status, _ = call(t, srv, http.MethodGet, "/api/todo?priority=urgent", token, nil)
	if status != http.StatusOK {
		t.Fatalf("invalid priority: status=%d, want 200", status)
	}

	status, _ = call(t, srv, http.MethodGet, "/api/todo/category/chores", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("invalid category endpoint: status=%d, want 400", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/todo", "/api/todo/stats", "/api/admin/events"} {
		status, env := call(t, srv, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("%s without token: status=%d, want 401", path, status)
		}
		if env.Success {
			t.Fatalf("%s without token: success should be false", path)
		}
	}
}

func TestAdminEventsRoleGate(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := registerAndLogin(t, srv, "alice")
	adminToken := login(t, srv, "admin", "Admin@123")

	status, _ := call(t, srv, http.MethodGet, "/api/admin/events", aliceToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("alice: status=%d, want 403", status)
	}

	status, env := call(t, srv, http.MethodGet, "/api/admin/events", adminToken, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("admin: status=%d message=%q", status, env.Message)
	}
	var entries []models.AuditEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	// alice registered and both accounts logged in by now.
	if len(entries) == 0 {
		t.Fatal("expected audit entries")
	}
}
