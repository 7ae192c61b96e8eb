package repo

import (
	"time"

	"taskhub/internal/domain"
)

type userModel struct {
	ID           string `gorm:"primaryKey;size:24"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Name         string `gorm:"size:128;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:16;not null;default:user"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (userModel) TableName() string { return "users" }

type taskModel struct {
	ID          string     `gorm:"primaryKey;size:24"`
	UserID      string     `gorm:"index;size:24;not null"`
	Title       string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text;not null"`
	DueDate     *time.Time `gorm:"index"`
	Status      string     `gorm:"size:16;not null;default:pending"`
	Priority    string     `gorm:"size:16;not null;default:medium"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (taskModel) TableName() string { return "tasks" }

// GormModels lists the tables AutoMigrate must create.
func GormModels() []any { return []any{&userModel{}, &taskModel{}} }

func toUserModel(u *domain.User) *userModel {
	return &userModel{
		ID: u.ID, Email: u.Email, Name: u.Name, PasswordHash: u.PasswordHash, Role: string(u.Role),
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID: m.ID, Email: m.Email, Name: m.Name, PasswordHash: m.PasswordHash, Role: domain.Role(m.Role),
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func toTaskModel(t *domain.Task) *taskModel {
	return &taskModel{
		ID: t.ID, UserID: t.UserID, Title: t.Title, Description: t.Description, DueDate: t.DueDate,
		Status: string(t.Status), Priority: string(t.Priority),
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

func (m *taskModel) toDomain() *domain.Task {
	return &domain.Task{
		ID: m.ID, UserID: m.UserID, Title: m.Title, Description: m.Description, DueDate: m.DueDate,
		Status: domain.TaskStatus(m.Status), Priority: domain.TaskPriority(m.Priority),
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}
