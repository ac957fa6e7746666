package repository

import (
	"context"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*entity.StudentProfile, error)
	SaveStudent(ctx context.Context, profile *entity.StudentProfile) error
	FindTeacherByUserID(ctx context.Context, userID uuid.UUID) (*entity.TeacherProfile, error)
	SaveTeacher(ctx context.Context, profile *entity.TeacherProfile) error
	DeleteTeacher(ctx context.Context, profile *entity.TeacherProfile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*entity.StudentProfile, error) {
	var profile entity.StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) SaveStudent(ctx context.Context, profile *entity.StudentProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepository) FindTeacherByUserID(ctx context.Context, userID uuid.UUID) (*entity.TeacherProfile, error) {
	var profile entity.TeacherProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) SaveTeacher(ctx context.Context, profile *entity.TeacherProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepository) DeleteTeacher(ctx context.Context, profile *entity.TeacherProfile) error {
	return r.db.WithContext(ctx).Delete(profile).Error
}
