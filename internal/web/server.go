// Package web serves the browser frontend. It talks to the task API only
// through internal/client.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"taskhub/internal/client"
	"taskhub/internal/core/server"
	"taskhub/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home", "login", "signup", "task_form", "users"}

type Options struct {
	CookieSecure bool
	CookieTTL    time.Duration
}

type Server struct {
	api          *client.Client
	log          *zap.Logger
	tmpl         map[string]*template.Template
	cookieSecure bool
	cookieTTL    time.Duration
}

func New(api *client.Client, l *zap.Logger, o Options) (*Server, error) {
	funcs := template.FuncMap{
		"date":  dateShow,
		"title": func(v any) string {
			s := fmt.Sprint(v)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
	tmpl := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, err
		}
		tmpl[p] = t
	}
	if o.CookieTTL <= 0 {
		o.CookieTTL = 24 * time.Hour
	}
	return &Server{api: api, log: l, tmpl: tmpl, cookieSecure: o.CookieSecure, cookieTTL: o.CookieTTL}, nil
}

func (s *Server) Handler() *gin.Engine {
	r := server.NewRouter(s.log)
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.Use(s.loadSession())

	r.GET("/", s.home)
	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.GET("/signup", s.signupPage)
	r.POST("/signup", s.signup)
	r.GET("/logout", s.logout)
	r.POST("/logout", s.logout)

	tasks := r.Group("/tasks", requireLogin)
	tasks.GET("/add", s.addTaskPage)
	tasks.POST("/add", s.addTask)
	tasks.GET("/:id", s.editTaskPage)
	tasks.POST("/:id", s.editTask)
	tasks.POST("/:id/delete", s.deleteTask)

	users := r.Group("/users", requireLogin)
	users.GET("", s.usersPage)
	users.POST("", s.saveUser)
	users.POST("/:id/delete", s.deleteUser)
	return r
}

func (s *Server) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = sessionOf(c)
	c.Render(status, render.HTML{Template: s.tmpl[page], Name: "layout.html", Data: data})
}

func apiStatus(err error) int {
	var ae *client.APIError
	if errors.As(err, &ae) && ae.Status < 500 {
		return ae.Status
	}
	return http.StatusBadGateway
}

func (s *Server) apiFailed(c *gin.Context, err error) string {
	if apiStatus(err) == http.StatusBadGateway {
		s.log.Error("api call failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	return client.Message(err)
}

func (s *Server) home(c *gin.Context) {
	sess := sessionOf(c)
	if !sess.LoggedIn() {
		s.render(c, http.StatusOK, "home", nil)
		return
	}
	tasks, err := s.api.ListTasks(c.Request.Context(), sess.Token)
	if err != nil {
		s.render(c, apiStatus(err), "home", gin.H{"Error": s.apiFailed(c, err), "Count": 0})
		return
	}
	s.render(c, http.StatusOK, "home", gin.H{
		"Count":  len(tasks),
		"Groups": GroupByPriority(tasks),
		"Flash":  c.Query("msg"),
	})
}

func (s *Server) loginPage(c *gin.Context) {
	if sessionOf(c).LoggedIn() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.render(c, http.StatusOK, "login", gin.H{"Flash": c.Query("msg")})
}

func (s *Server) login(c *gin.Context) {
	email, password := c.PostForm("email"), c.PostForm("password")
	tok, _, err := s.api.Login(c.Request.Context(), email, password)
	if err != nil {
		s.render(c, apiStatus(err), "login", gin.H{"Error": s.apiFailed(c, err), "Email": email})
		return
	}
	s.setCookie(c, tok)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) signupPage(c *gin.Context) {
	s.render(c, http.StatusOK, "signup", nil)
}

func (s *Server) signup(c *gin.Context) {
	name, email := c.PostForm("name"), c.PostForm("email")
	if err := s.api.Signup(c.Request.Context(), name, email, c.PostForm("password")); err != nil {
		s.render(c, apiStatus(err), "signup", gin.H{"Error": s.apiFailed(c, err), "Name": name, "Email": email})
		return
	}
	c.Redirect(http.StatusSeeOther, "/login?msg=Account+created,+please+log+in")
}

func (s *Server) logout(c *gin.Context) {
	s.clearCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func taskInputFrom(c *gin.Context) domain.TaskInput {
	return domain.TaskInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		DueDate:     c.PostForm("dueDate"),
		Status:      c.PostForm("status"),
		Priority:    c.PostForm("priority"),
	}
}

func (s *Server) addTaskPage(c *gin.Context) {
	s.render(c, http.StatusOK, "task_form", gin.H{
		"Form": TaskForm{Input: domain.TaskInput{Status: string(domain.StatusPending), Priority: string(domain.PriorityMedium)}},
	})
}

func (s *Server) addTask(c *gin.Context) {
	in := taskInputFrom(c)
	if _, err := s.api.CreateTask(c.Request.Context(), sessionOf(c).Token, in); err != nil {
		s.render(c, apiStatus(err), "task_form", gin.H{"Form": TaskForm{Input: in}, "Error": s.apiFailed(c, err)})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) editTaskPage(c *gin.Context) {
	t, err := s.api.GetTask(c.Request.Context(), sessionOf(c).Token, c.Param("id"))
	if err != nil {
		s.render(c, apiStatus(err), "task_form", gin.H{"Error": s.apiFailed(c, err), "Missing": true})
		return
	}
	s.render(c, http.StatusOK, "task_form", gin.H{"Form": taskFormFrom(t)})
}

func (s *Server) editTask(c *gin.Context) {
	id, in := c.Param("id"), taskInputFrom(c)
	if _, err := s.api.UpdateTask(c.Request.Context(), sessionOf(c).Token, id, in); err != nil {
		s.render(c, apiStatus(err), "task_form", gin.H{"Form": TaskForm{ID: id, Input: in}, "Error": s.apiFailed(c, err)})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.api.DeleteTask(c.Request.Context(), sessionOf(c).Token, c.Param("id")); err != nil {
		c.Redirect(http.StatusSeeOther, "/?msg="+url.QueryEscape(s.apiFailed(c, err)))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// usersPage lists users with a create form, or an edit form for ?edit=<id>.
func (s *Server) usersPage(c *gin.Context) {
	s.renderUsers(c, http.StatusOK, UserForm{Role: string(domain.RoleUser)}, "")
}

func (s *Server) renderUsers(c *gin.Context, status int, form UserForm, formErr string) {
	sess := sessionOf(c)
	if !sess.IsAdmin() {
		s.render(c, http.StatusForbidden, "users", nil)
		return
	}
	users, err := s.api.ListUsers(c.Request.Context(), sess.Token)
	if err != nil {
		s.render(c, apiStatus(err), "users", gin.H{"Error": s.apiFailed(c, err)})
		return
	}
	if editID := c.Query("edit"); editID != "" && !form.EditMode() && formErr == "" {
		for i := range users {
			if users[i].ID == editID {
				form = userFormFrom(&users[i])
				break
			}
		}
	}
	s.render(c, status, "users", gin.H{
		"Users": users,
		"Form":  form,
		"Error": formErr,
		"Flash": c.Query("msg"),
		"Roles": []domain.Role{domain.RoleUser, domain.RoleAdmin},
	})
}

func (s *Server) saveUser(c *gin.Context) {
	sess := sessionOf(c)
	if !sess.IsAdmin() {
		s.render(c, http.StatusForbidden, "users", nil)
		return
	}
	form := UserForm{
		ID:       c.PostForm("id"),
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Role:     c.PostForm("role"),
	}
	if msg := form.Validate(); msg != "" {
		s.renderUsers(c, http.StatusBadRequest, form, msg)
		return
	}
	var err error
	if form.EditMode() {
		_, err = s.api.UpdateUser(c.Request.Context(), sess.Token, form.ID, form.Payload())
	} else {
		_, err = s.api.CreateUser(c.Request.Context(), sess.Token, form.Payload())
	}
	if err != nil {
		form.Password = ""
		s.renderUsers(c, apiStatus(err), form, s.apiFailed(c, err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/users")
}

func (s *Server) deleteUser(c *gin.Context) {
	sess := sessionOf(c)
	if !sess.IsAdmin() {
		s.render(c, http.StatusForbidden, "users", nil)
		return
	}
	if err := s.api.DeleteUser(c.Request.Context(), sess.Token, c.Param("id")); err != nil {
		c.Redirect(http.StatusSeeOther, "/users?msg="+url.QueryEscape(s.apiFailed(c, err)))
		return
	}
	c.Redirect(http.StatusSeeOther, "/users")
}
