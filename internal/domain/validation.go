package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a rejected input field. The set of values is closed:
// callers compare against the exported variables with errors.Is.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrTitleRequired       = &ValidationError{Field: "title", Msg: "Title of task not found"}
	ErrDescriptionRequired = &ValidationError{Field: "description", Msg: "Description of task not found"}
	ErrInvalidStatus       = &ValidationError{Field: "status", Msg: "Invalid status value"}
	ErrInvalidPriority     = &ValidationError{Field: "priority", Msg: "Invalid priority value"}
	ErrInvalidDueDate      = &ValidationError{Field: "dueDate", Msg: "Invalid due date"}
	ErrInvalidTaskID       = &ValidationError{Field: "id", Msg: "Task id not valid"}

	ErrUserFieldsRequired   = &ValidationError{Msg: "Please fill all required fields"}
	ErrSignupFieldsRequired = &ValidationError{Msg: "Please fill all the fields"}
	ErrLoginFieldsRequired  = &ValidationError{Msg: "Please enter all details!!"}
	ErrInvalidEmail         = &ValidationError{Field: "email", Msg: "Invalid Email"}
	ErrPasswordTooShort     = &ValidationError{Field: "password", Msg: "Password length must be atleast 4 characters"}
	ErrInvalidRole          = &ValidationError{Field: "role", Msg: "Invalid role value"}
)

const MinPasswordLen = 4

// TaskInput is the client payload for create and update. Empty strings mean
// "not supplied".
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// TaskFields is a validated TaskInput. Zero Status/Priority and nil DueDate
// mean the client left them out.
type TaskFields struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      TaskStatus
	Priority    TaskPriority
}

func (in TaskInput) Validate() (TaskFields, error) {
	f := TaskFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      TaskStatus(strings.TrimSpace(in.Status)),
		Priority:    TaskPriority(strings.TrimSpace(in.Priority)),
	}
	if f.Title == "" {
		return TaskFields{}, ErrTitleRequired
	}
	if f.Description == "" {
		return TaskFields{}, ErrDescriptionRequired
	}
	if f.Status != "" && !f.Status.Valid() {
		return TaskFields{}, ErrInvalidStatus
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return TaskFields{}, ErrInvalidPriority
	}
	if s := strings.TrimSpace(in.DueDate); s != "" {
		d, err := ParseDueDate(s)
		if err != nil {
			return TaskFields{}, ErrInvalidDueDate
		}
		f.DueDate = &d
	}
	return f, nil
}

var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// ParseDueDate accepts RFC 3339 timestamps and plain dates (UTC midnight).
func ParseDueDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dueDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, err
}

var validate = validator.New()

// ValidEmail checks the address format only.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// NormalizeEmail is applied before every store write or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
