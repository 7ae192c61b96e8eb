package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"taskhub/internal/client"
	"taskhub/internal/core/auth"
	"taskhub/internal/core/config"
	"taskhub/internal/domain"
	"taskhub/internal/repo"
	"taskhub/internal/service"
	"taskhub/internal/transport/http/router"
)

func TestGroupByPriority(t *testing.T) {
	tasks := []domain.Task{
		{Title: "a", Priority: domain.PriorityLow},
		{Title: "b", Priority: domain.PriorityHigh},
		{Title: "c", Priority: domain.PriorityLow},
		{Title: "d", Priority: domain.PriorityMedium},
	}
	groups := GroupByPriority(tasks)
	if len(groups) != 3 {
		t.Fatalf("groups: got %d, want 3", len(groups))
	}
	want := []struct {
		p      domain.TaskPriority
		titles string
	}{
		{domain.PriorityHigh, "b"},
		{domain.PriorityMedium, "d"},
		{domain.PriorityLow, "a,c"},
	}
	for i, w := range want {
		g := groups[i]
		var titles []string
		for j, nt := range g.Tasks {
			if nt.N != j+1 {
				t.Errorf("%s: task %q numbered %d, want %d", g.Priority, nt.Title, nt.N, j+1)
			}
			titles = append(titles, nt.Title)
		}
		if g.Priority != w.p || strings.Join(titles, ",") != w.titles {
			t.Errorf("group %d: got %s %v, want %s %s", i, g.Priority, titles, w.p, w.titles)
		}
	}
}

func TestUserFormValidate(t *testing.T) {
	cases := []struct {
		name string
		form UserForm
		want string
	}{
		{"create ok", UserForm{Name: "A", Email: "a@x.io", Password: "pw"}, ""},
		{"no name", UserForm{Email: "a@x.io", Password: "pw"}, "Name is required"},
		{"no email", UserForm{Name: "A", Password: "pw"}, "Email is required"},
		{"create no password", UserForm{Name: "A", Email: "a@x.io"}, "Password is required"},
		{"edit no password", UserForm{ID: "1", Name: "A", Email: "a@x.io"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.form.Validate(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
	if p := (UserForm{ID: "1", Name: " A "}).Payload(); p.Password != "" || p.Name != "A" {
		t.Fatalf("edit payload: %+v", p)
	}
}

type webEnv struct {
	t     *testing.T
	h     http.Handler
	users *service.UserService
	tasks *service.TaskService
	auth  *service.AuthService
}

func newWebEnv(t *testing.T) *webEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := zaptest.NewLogger(t)
	st := repo.NewMemoryStore()
	users := service.NewUserService(st.Users, st.Tasks, nil, time.Minute, l)
	j := &auth.JWTer{Secret: []byte("web-test"), Issuer: "taskhub", TTL: time.Hour}
	authSvc := service.NewAuthService(users, j)
	tasks := service.NewTaskService(st.Tasks)
	api := httptest.NewServer(router.NewAPIEngine(router.Deps{
		Log:   l,
		HTTP:  config.HTTP{MaxBodyMB: 1, MaxInFlight: 10, RequestTimeoutSec: 5},
		Auth:  authSvc,
		Users: users,
		Tasks: tasks,
	}))
	t.Cleanup(api.Close)

	s, err := New(client.New(api.URL+"/api", api.Client()), l, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &webEnv{t: t, h: s.Handler(), users: users, tasks: tasks, auth: authSvc}
}

func (e *webEnv) get(path, token string) *httptest.ResponseRecorder {
	return e.send(httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (e *webEnv) post(path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.send(req, token)
}

func (e *webEnv) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func (e *webEnv) login(email, password string) string {
	e.t.Helper()
	w := e.post("/login", "", url.Values{"email": {email}, "password": {password}})
	if w.Code != http.StatusSeeOther {
		e.t.Fatalf("login: got %d %s", w.Code, w.Body.String())
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName && ck.Value != "" {
			if !ck.HttpOnly {
				e.t.Error("auth cookie is not HttpOnly")
			}
			return ck.Value
		}
	}
	e.t.Fatal("login set no auth cookie")
	return ""
}

func mustContain(t *testing.T, w *httptest.ResponseRecorder, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(w.Body.String(), p) {
			t.Fatalf("body missing %q:\n%s", p, w.Body.String())
		}
	}
}

func TestTaskPages(t *testing.T) {
	e := newWebEnv(t)

	w := e.get("/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("landing: %d", w.Code)
	}
	mustContain(t, w, "Join now", `href="/signup"`)

	if w := e.get("/tasks/add", ""); w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous add: %d %s", w.Code, w.Header().Get("Location"))
	}

	w = e.post("/signup", "", url.Values{"name": {"Sam"}, "email": {"sam@example.com"}, "password": {"abc"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password signup: %d", w.Code)
	}
	mustContain(t, w, "Password length must be atleast 4 characters")
	w = e.post("/signup", "", url.Values{"name": {"Sam"}, "email": {"sam@example.com"}, "password": {"pass1"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	tok := e.login("sam@example.com", "pass1")

	w = e.get("/", tok)
	mustContain(t, w, "Welcome Sam", "No tasks found", "+ Add new task")

	w = e.post("/tasks/add", tok, url.Values{"title": {""}, "description": {"x"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid add: %d", w.Code)
	}
	mustContain(t, w, "Title of task not found")

	for _, f := range []url.Values{
		{"title": {"Low one"}, "description": {"d"}, "priority": {"low"}, "status": {"pending"}},
		{"title": {"Urgent"}, "description": {"d"}, "priority": {"high"}, "status": {"pending"}, "dueDate": {"2031-05-06"}},
		{"title": {"Low two"}, "description": {"d"}, "priority": {"low"}, "status": {"pending"}},
	} {
		if w := e.post("/tasks/add", tok, f); w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
			t.Fatalf("add %v: %d", f, w.Code)
		}
	}
	w = e.get("/", tok)
	mustContain(t, w, "High priority", "Urgent", "May 6, 2031", "Low one", "Low two")
	body := w.Body.String()
	if strings.Index(body, "Urgent") > strings.Index(body, "Low one") {
		t.Error("high priority tasks should render before low ones")
	}

	uid, err := e.auth.Verify(tok)
	if err != nil {
		t.Fatal(err)
	}
	list, _ := e.tasks.List(context.Background(), uid)
	var urgent domain.Task
	for _, tk := range list {
		if tk.Title == "Urgent" {
			urgent = tk
		}
	}

	w = e.get("/tasks/"+urgent.ID, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("edit page: %d", w.Code)
	}
	mustContain(t, w, "Edit task", `value="2031-05-06"`)

	w = e.post("/tasks/"+urgent.ID, tok, url.Values{"title": {"Urgent"}, "description": {"done now"}, "status": {"completed"}, "priority": {"high"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("edit: %d %s", w.Code, w.Body.String())
	}
	got, _ := e.tasks.Get(context.Background(), uid, urgent.ID)
	if got.Status != domain.StatusCompleted || got.DueDate == nil {
		t.Fatalf("after edit: %+v", got)
	}

	if w := e.post("/tasks/"+urgent.ID+"/delete", tok, nil); w.Code != http.StatusSeeOther {
		t.Fatalf("delete: %d", w.Code)
	}
	if list, _ := e.tasks.List(context.Background(), uid); len(list) != 2 {
		t.Fatalf("after delete: %d tasks", len(list))
	}

	w = e.post("/logout", tok, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("logout: %d", w.Code)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName && ck.MaxAge >= 0 {
			t.Error("logout did not expire the cookie")
		}
	}
}

func TestInvalidCookieCleared(t *testing.T) {
	e := newWebEnv(t)
	w := e.get("/", "forged")
	mustContain(t, w, "Join now")
	cleared := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("invalid token cookie not cleared")
	}
}

func TestUsersPage(t *testing.T) {
	e := newWebEnv(t)
	ctx := context.Background()
	if _, _, err := e.users.EnsureAdmin(ctx, "Root", "root@example.com", "pass1"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.auth.Signup(ctx, service.SignupRequest{Name: "Pat", Email: "pat@example.com", Password: "pass1"}); err != nil {
		t.Fatal(err)
	}

	plain := e.login("pat@example.com", "pass1")
	w := e.get("/users", plain)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin users page: %d", w.Code)
	}
	mustContain(t, w, "You do not have permission to view this page.")

	admin := e.login("root@example.com", "pass1")
	w = e.get("/users", admin)
	mustContain(t, w, "User management", "pat@example.com", "Create user", `name="password"`)

	w = e.post("/users", admin, url.Values{"name": {"New"}, "email": {"new@example.com"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: %d", w.Code)
	}
	mustContain(t, w, "Password is required")

	w = e.post("/users", admin, url.Values{"name": {"New"}, "email": {"new@example.com"}, "password": {"pw12"}, "role": {"user"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	all, _ := e.users.List(ctx)
	var created domain.User
	for _, u := range all {
		if u.Email == "new@example.com" {
			created = u
		}
	}
	if created.ID == "" {
		t.Fatal("user not created")
	}

	w = e.get("/users?edit="+created.ID, admin)
	mustContain(t, w, "Edit user", `value="new@example.com"`)
	if strings.Contains(w.Body.String(), `name="password"`) {
		t.Error("edit form shows a password field")
	}

	w = e.post("/users", admin, url.Values{"id": {created.ID}, "name": {"Renamed"}, "email": {"new@example.com"}, "role": {"admin"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	u, _ := e.users.Get(ctx, created.ID)
	if u.Name != "Renamed" || u.Role != domain.RoleAdmin {
		t.Fatalf("after update: %+v", u)
	}

	if w := e.post("/users/"+created.ID+"/delete", admin, nil); w.Code != http.StatusSeeOther {
		t.Fatalf("delete: %d", w.Code)
	}
	if _, err := e.users.Get(ctx, created.ID); err == nil {
		t.Fatal("user survived delete")
	}
}
