package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"taskhub/internal/core/auth"
	"taskhub/internal/core/config"
	"taskhub/internal/repo"
	"taskhub/internal/service"
	"taskhub/pkg/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type apiEnv struct {
	t     *testing.T
	r     *gin.Engine
	users *service.UserService
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	l := zaptest.NewLogger(t)
	st := repo.NewMemoryStore()
	users := service.NewUserService(st.Users, st.Tasks, nil, time.Minute, l)
	j := &auth.JWTer{Secret: []byte("api-test"), Issuer: "taskhub", TTL: time.Hour}
	r := NewAPIEngine(Deps{
		Log:   l,
		HTTP:  config.HTTP{MaxBodyMB: 1, MaxInFlight: 10, RequestTimeoutSec: 5},
		CORS:  config.CORS{AllowOrigins: []string{"*"}},
		Auth:  service.NewAuthService(users, j),
		Users: users,
		Tasks: service.NewTaskService(st.Tasks),
	})
	return &apiEnv{t: t, r: r, users: users}
}

func (e *apiEnv) do(method, path, token string, body any) (int, map[string]any) {
	e.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			e.t.Fatal(err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	if strings.Contains(w.Body.String(), `"password`) {
		e.t.Errorf("%s %s leaked a password field: %s", method, path, w.Body.String())
	}
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		e.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, m
}

func (e *apiEnv) expect(method, path, token string, body any, code int, msg string) map[string]any {
	e.t.Helper()
	got, m := e.do(method, path, token, body)
	if got != code || (msg != "" && m["msg"] != msg) {
		e.t.Fatalf("%s %s: got %d %v, want %d %q", method, path, got, m, code, msg)
	}
	if want := code < 300; m["status"] != want {
		e.t.Fatalf("%s %s: status flag %v, want %v", method, path, m["status"], want)
	}
	return m
}

// signup + login, returning the raw token.
func (e *apiEnv) register(name, email string) string {
	e.t.Helper()
	e.expect(http.MethodPost, "/api/auth/signup", "", gin.H{"name": name, "email": email, "password": "pass1"},
		http.StatusOK, "Congratulations!! Account has been created for you..")
	m := e.expect(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "pass1"},
		http.StatusOK, "Login successful..")
	tok, _ := m["token"].(string)
	if tok == "" {
		e.t.Fatal("login returned no token")
	}
	return tok
}

func TestHealthAndNotFound(t *testing.T) {
	e := newAPIEnv(t)
	e.expect(http.MethodGet, "/health", "", nil, http.StatusOK, "OK")
	e.expect(http.MethodGet, "/api/nope", "", nil, http.StatusNotFound, "Not Found")
}

func TestAuthFlow(t *testing.T) {
	e := newAPIEnv(t)
	tok := e.register("Ann", "ann@example.com")

	e.expect(http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ann", "email": "ANN@example.com", "password": "pass1"},
		http.StatusBadRequest, "This email is already registered")
	e.expect(http.MethodPost, "/api/auth/signup", "", gin.H{"name": "B", "email": "b@x.io"},
		http.StatusBadRequest, "Please fill all the fields")
	e.expect(http.MethodPost, "/api/auth/signup", "", gin.H{"name": "B", "email": "b-at-x", "password": "pass1"},
		http.StatusBadRequest, "Invalid Email")
	e.expect(http.MethodPost, "/api/auth/signup", "", gin.H{"name": "B", "email": "b@x.io", "password": "abc"},
		http.StatusBadRequest, "Password length must be atleast 4 characters")
	e.expect(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com"},
		http.StatusBadRequest, "Please enter all details!!")
	e.expect(http.MethodPost, "/api/auth/login", "", gin.H{"email": "zed@example.com", "password": "pass1"},
		http.StatusBadRequest, "This email is not registered!!")
	e.expect(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong"},
		http.StatusBadRequest, "Incorrect password!!")
	e.expect(http.MethodPost, "/api/auth/login", "", `{"email":`, http.StatusBadRequest, "Invalid request body")

	m := e.expect(http.MethodGet, "/api/profile", tok, nil, http.StatusOK, "Profile found successfully..")
	user := m["user"].(map[string]any)
	if user["email"] != "ann@example.com" || user["role"] != "user" {
		t.Fatalf("profile: %v", user)
	}
	e.expect(http.MethodGet, "/api/profile", "Bearer "+tok, nil, http.StatusOK, "")
	e.expect(http.MethodGet, "/api/profile", "", nil, http.StatusBadRequest, "Token not found")
	e.expect(http.MethodGet, "/api/profile", "not-a-jwt", nil, http.StatusUnauthorized, "Invalid token")
}

func TestTaskEndpoints(t *testing.T) {
	e := newAPIEnv(t)
	alice := e.register("Alice", "alice@example.com")
	bob := e.register("Bob", "bob@example.com")
	aliceID := e.expect(http.MethodGet, "/api/profile", alice, nil, http.StatusOK, "")["user"].(map[string]any)["_id"]

	m := e.expect(http.MethodGet, "/api/tasks", alice, nil, http.StatusOK, "Tasks found successfully..")
	if list, ok := m["tasks"].([]any); !ok || len(list) != 0 {
		t.Fatalf("empty list: %v", m["tasks"])
	}

	e.expect(http.MethodPost, "/api/tasks", alice, nil, http.StatusBadRequest, "Title of task not found")
	e.expect(http.MethodPost, "/api/tasks", alice, gin.H{"title": "  "}, http.StatusBadRequest, "Title of task not found")
	e.expect(http.MethodPost, "/api/tasks", alice, gin.H{"title": "T"}, http.StatusBadRequest, "Description of task not found")
	e.expect(http.MethodPost, "/api/tasks", alice, gin.H{"title": "T", "description": "D", "status": "done"},
		http.StatusBadRequest, "Invalid status value")
	e.expect(http.MethodPost, "/api/tasks", alice, gin.H{"title": "T", "description": "D", "priority": "urgent"},
		http.StatusBadRequest, "Invalid priority value")
	e.expect(http.MethodPost, "/api/tasks", alice, gin.H{"title": "T", "description": "D", "dueDate": "next week"},
		http.StatusBadRequest, "Invalid due date")

	m = e.expect(http.MethodPost, "/api/tasks", alice, gin.H{"title": "Write", "description": "report", "dueDate": "2030-01-02"},
		http.StatusOK, "Task created successfully..")
	task := m["task"].(map[string]any)
	id := task["_id"].(string)
	if task["user"] != aliceID || task["status"] != "pending" || task["priority"] != "medium" {
		t.Fatalf("created task: %v", task)
	}
	if !strings.HasPrefix(task["dueDate"].(string), "2030-01-02") {
		t.Fatalf("dueDate: %v", task["dueDate"])
	}

	m = e.expect(http.MethodGet, "/api/tasks/"+id, alice, nil, http.StatusOK, "Task found successfully..")
	if m["task"].(map[string]any)["title"] != "Write" {
		t.Fatalf("round trip: %v", m["task"])
	}
	e.expect(http.MethodGet, "/api/tasks/xyz", alice, nil, http.StatusBadRequest, "Task id not valid")
	e.expect(http.MethodGet, "/api/tasks/"+id, bob, nil, http.StatusBadRequest, "No task found..")
	if list := e.expect(http.MethodGet, "/api/tasks", bob, nil, http.StatusOK, "")["tasks"].([]any); len(list) != 0 {
		t.Fatalf("bob sees %d tasks", len(list))
	}

	upd := gin.H{"title": "Write", "description": "final", "status": "completed", "priority": "high"}
	e.expect(http.MethodPut, "/api/tasks/"+id, bob, upd, http.StatusForbidden, "You can't update task of another user")
	e.expect(http.MethodPut, "/api/tasks/"+utils.NewID(), alice, upd, http.StatusBadRequest, "Task with given id not found")
	e.expect(http.MethodPut, "/api/tasks/bad", alice, upd, http.StatusBadRequest, "Task id not valid")
	e.expect(http.MethodPut, "/api/tasks/"+id, alice, gin.H{"description": "x"}, http.StatusBadRequest, "Title of task not found")
	m = e.expect(http.MethodPut, "/api/tasks/"+id, alice, upd, http.StatusOK, "Task updated successfully..")
	got := m["task"].(map[string]any)
	if got["status"] != "completed" || got["priority"] != "high" || got["description"] != "final" || got["dueDate"] == nil {
		t.Fatalf("updated task: %v", got)
	}

	e.expect(http.MethodDelete, "/api/tasks/"+id, bob, nil, http.StatusForbidden, "You can't delete task of another user")
	e.expect(http.MethodDelete, "/api/tasks/"+id, alice, nil, http.StatusOK, "Task deleted successfully..")
	e.expect(http.MethodGet, "/api/tasks/"+id, alice, nil, http.StatusBadRequest, "No task found..")
	e.expect(http.MethodDelete, "/api/tasks/"+id, alice, nil, http.StatusBadRequest, "Task with given id not found")
}

func TestUserEndpoints(t *testing.T) {
	e := newAPIEnv(t)
	if _, _, err := e.users.EnsureAdmin(context.Background(), "Root", "root@example.com", "pass1"); err != nil {
		t.Fatal(err)
	}
	m := e.expect(http.MethodPost, "/api/auth/login", "", gin.H{"email": "root@example.com", "password": "pass1"}, http.StatusOK, "")
	admin := m["token"].(string)
	plain := e.register("Pat", "pat@example.com")

	e.expect(http.MethodGet, "/api/users", plain, nil, http.StatusForbidden,
		"Forbidden: You do not have permission to perform this action")
	e.expect(http.MethodGet, "/api/users", "", nil, http.StatusBadRequest, "Token not found")

	m = e.expect(http.MethodGet, "/api/users", admin, nil, http.StatusOK, "Users fetched successfully")
	if n := len(m["users"].([]any)); n != 2 {
		t.Fatalf("users: got %d, want 2", n)
	}

	e.expect(http.MethodPost, "/api/users", admin, gin.H{"name": "N", "email": "n@example.com"},
		http.StatusBadRequest, "Please fill all required fields")
	e.expect(http.MethodPost, "/api/users", admin, gin.H{"name": "N", "email": "pat@example.com", "password": "pw12"},
		http.StatusBadRequest, "Email already registered")
	e.expect(http.MethodPost, "/api/users", admin, gin.H{"name": "N", "email": "n@example.com", "password": "pw12", "role": "boss"},
		http.StatusBadRequest, "Invalid role value")
	m = e.expect(http.MethodPost, "/api/users", admin, gin.H{"name": "N", "email": "n@example.com", "password": "pw12"},
		http.StatusCreated, "User created successfully")
	created := m["user"].(map[string]any)
	nid := created["id"].(string)
	if created["role"] != "user" || created["createdAt"] != nil {
		t.Fatalf("create projection: %v", created)
	}

	e.expect(http.MethodGet, "/api/users/"+nid, admin, nil, http.StatusOK, "User fetched successfully")
	e.expect(http.MethodGet, "/api/users/nope", admin, nil, http.StatusNotFound, "User not found")
	e.expect(http.MethodGet, "/api/users/"+utils.NewID(), admin, nil, http.StatusNotFound, "User not found")

	m = e.expect(http.MethodPut, "/api/users/"+nid, admin, gin.H{"name": "Nina", "role": "admin"}, http.StatusOK, "User updated successfully")
	if u := m["user"].(map[string]any); u["name"] != "Nina" || u["email"] != "n@example.com" || u["role"] != "admin" {
		t.Fatalf("updated user: %v", u)
	}
	e.expect(http.MethodPut, "/api/users/"+nid, admin, gin.H{"email": "pat@example.com"}, http.StatusBadRequest, "Email already registered")
	e.expect(http.MethodPut, "/api/users/"+utils.NewID(), admin, gin.H{"name": "x"}, http.StatusNotFound, "User not found")

	e.expect(http.MethodPut, "/api/users/"+nid, admin, gin.H{"password": "fresh"}, http.StatusOK, "")
	e.expect(http.MethodPost, "/api/auth/login", "", gin.H{"email": "n@example.com", "password": "fresh"}, http.StatusOK, "")

	e.expect(http.MethodDelete, "/api/users/"+nid, admin, nil, http.StatusOK, "User deleted successfully")
	e.expect(http.MethodDelete, "/api/users/"+nid, admin, nil, http.StatusNotFound, "User not found")
}

func TestDeletedUserTokenRejected(t *testing.T) {
	e := newAPIEnv(t)
	tok := e.register("Gone", "gone@example.com")
	id := e.expect(http.MethodGet, "/api/profile", tok, nil, http.StatusOK, "")["user"].(map[string]any)["_id"].(string)
	if err := e.users.Delete(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	e.expect(http.MethodGet, "/api/tasks", tok, nil, http.StatusUnauthorized, "User not found")
}
