package service

import (
	"context"

	"taskhub/internal/domain"
	"taskhub/pkg/utils"
)

type TaskService struct {
	tasks domain.TaskRepository
}

func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, ownerID)
}

// Get hides other users' tasks behind ErrTaskNotFound.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if !utils.IsValidID(id) {
		return nil, domain.ErrInvalidTaskID
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.UserID != ownerID {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in domain.TaskInput) (*domain.Task, error) {
	f, err := in.Validate()
	if err != nil {
		return nil, err
	}
	t := &domain.Task{
		ID:          utils.NewID(),
		UserID:      ownerID,
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		Status:      domain.StatusPending,
		Priority:    domain.PriorityMedium,
	}
	if f.Status != "" {
		t.Status = f.Status
	}
	if f.Priority != "" {
		t.Priority = f.Priority
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces title and description; due date, status and priority
// change only when supplied.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, in domain.TaskInput) (*domain.Task, error) {
	f, err := in.Validate()
	if err != nil {
		return nil, err
	}
	t, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	t.Title = f.Title
	t.Description = f.Description
	if f.DueDate != nil {
		t.DueDate = f.DueDate
	}
	if f.Status != "" {
		t.Status = f.Status
	}
	if f.Priority != "" {
		t.Priority = f.Priority
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	ok, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskService) owned(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if !utils.IsValidID(id) {
		return nil, domain.ErrInvalidTaskID
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if t.UserID != ownerID {
		return nil, ErrNotTaskOwner
	}
	return t, nil
}
