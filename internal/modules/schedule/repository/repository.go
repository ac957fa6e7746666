package repository

import (
	"context"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRepository interface {
	Create(ctx context.Context, entry *entity.ScheduleEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ScheduleEntry, error)
	Save(ctx context.Context, entry *entity.ScheduleEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.ScheduleEntry, error)
	ListByClassroomIDs(ctx context.Context, classroomIDs []uuid.UUID) ([]*entity.ScheduleEntry, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, entry *entity.ScheduleEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ScheduleEntry, error) {
	var entry entity.ScheduleEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleRepository) Save(ctx context.Context, entry *entity.ScheduleEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *scheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.ScheduleEntry{}, "id = ?", id).Error
}

func (r *scheduleRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.ScheduleEntry, error) {
	var entries []*entity.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleRepository) ListByClassroomIDs(ctx context.Context, classroomIDs []uuid.UUID) ([]*entity.ScheduleEntry, error) {
	if len(classroomIDs) == 0 {
		return nil, nil
	}

	var entries []*entity.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("classroom_id IN ?", classroomIDs).
		Order("start_time ASC").
		Find(&entries).Error
	return entries, err
}
