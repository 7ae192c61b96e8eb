package web

import (
	"strings"
	"time"

	"taskhub/internal/client"
	"taskhub/internal/domain"
)

type NumberedTask struct {
	N int
	domain.Task
}

type PriorityGroup struct {
	Priority domain.TaskPriority
	Tasks    []NumberedTask
}

// GroupByPriority buckets tasks high, medium, low; numbering restarts at 1
// in each bucket. Empty buckets are kept.
func GroupByPriority(tasks []domain.Task) []PriorityGroup {
	groups := make([]PriorityGroup, len(domain.Priorities))
	idx := make(map[domain.TaskPriority]int, len(domain.Priorities))
	for i, p := range domain.Priorities {
		groups[i].Priority = p
		idx[p] = i
	}
	for _, t := range tasks {
		i, ok := idx[t.Priority]
		if !ok {
			i = idx[domain.PriorityMedium]
		}
		g := &groups[i]
		g.Tasks = append(g.Tasks, NumberedTask{N: len(g.Tasks) + 1, Task: t})
	}
	return groups
}

// UserForm backs the admin create/edit form; ID set means edit mode.
type UserForm struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}

func (f UserForm) EditMode() bool { return f.ID != "" }

// Validate returns the first problem as a user-facing message, or "".
func (f UserForm) Validate() string {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return "Name is required"
	case strings.TrimSpace(f.Email) == "":
		return "Email is required"
	case !f.EditMode() && f.Password == "":
		return "Password is required"
	}
	return ""
}

// Payload omits the password in edit mode unless a new one was typed.
func (f UserForm) Payload() client.UserPayload {
	return client.UserPayload{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     f.Role,
	}
}

func userFormFrom(u *domain.User) UserForm {
	return UserForm{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// TaskForm backs the add/edit task page.
type TaskForm struct {
	ID    string
	Input domain.TaskInput
}

func taskFormFrom(t *domain.Task) TaskForm {
	return TaskForm{ID: t.ID, Input: domain.TaskInput{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     dateInput(t.DueDate),
		Status:      string(t.Status),
		Priority:    string(t.Priority),
	}}
}

func dateInput(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func dateShow(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("Jan 2, 2006")
}
