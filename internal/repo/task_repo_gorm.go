package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskhub/internal/domain"
)

type TaskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	m := toTaskModel(t)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("TaskRepo.Create: %w", err)
	}
	t.CreatedAt, t.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *TaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var m taskModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("TaskRepo.FindByID: %w", err)
	}
	return m.toDomain(), nil
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	var ms []taskModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("TaskRepo.ListByUser: %w", err)
	}
	out := make([]domain.Task, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].toDomain())
	}
	return out, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	m := toTaskModel(t)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("TaskRepo.Update: %w", err)
	}
	t.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskModel{})
	if res.Error != nil {
		return false, fmt.Errorf("TaskRepo.Delete: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&taskModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("TaskRepo.DeleteByUser: %w", res.Error)
	}
	return res.RowsAffected, nil
}
