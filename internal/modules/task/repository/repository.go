package repository

import (
	"context"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	Save(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClassroom(ctx context.Context, classroomID uuid.UUID) ([]*entity.Task, error)
	ListActiveByClassroomIDs(ctx context.Context, classroomIDs []uuid.UUID) ([]*entity.Task, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	var task entity.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Save(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Task{}, "id = ?", id).Error
}

func (r *taskRepository) ListByClassroom(ctx context.Context, classroomID uuid.UUID) ([]*entity.Task, error) {
	var tasks []*entity.Task
	err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) ListActiveByClassroomIDs(ctx context.Context, classroomIDs []uuid.UUID) ([]*entity.Task, error) {
	if len(classroomIDs) == 0 {
		return nil, nil
	}

	var tasks []*entity.Task
	err := r.db.WithContext(ctx).
		Where("classroom_id IN ? AND status = ?", classroomIDs, entity.TaskStatusActive).
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Task, error) {
	var tasks []*entity.Task
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Find(&tasks).Error
	return tasks, err
}
