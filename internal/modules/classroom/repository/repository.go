package repository

import (
	"context"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *entity.Classroom) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Classroom, error)
	FindByCode(ctx context.Context, code string) (*entity.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Classroom, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Classroom, error)

	AddMember(ctx context.Context, member *entity.ClassroomMember) error
	ListMembers(ctx context.Context, classroomID uuid.UUID) ([]entity.ClassroomMember, error)
	IsMember(ctx context.Context, classroomID, studentID uuid.UUID) (bool, error)
	CountMembers(ctx context.Context, classroomID uuid.UUID) (int64, error)
}

type classroomRepository struct {
	db *gorm.DB
}

func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *entity.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Classroom, error) {
	var classroom entity.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &classroom, nil
}

func (r *classroomRepository) FindByCode(ctx context.Context, code string) (*entity.Classroom, error) {
	var classroom entity.Classroom
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&classroom).Error; err != nil {
		return nil, err
	}
	return &classroom, nil
}

func (r *classroomRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Classroom, error) {
	var classrooms []*entity.Classroom
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classrooms).Error
	return classrooms, err
}

func (r *classroomRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Classroom, error) {
	var classrooms []*entity.Classroom
	err := r.db.WithContext(ctx).
		Joins("JOIN classroom_members ON classroom_members.classroom_id = classrooms.id").
		Where("classroom_members.student_id = ? AND classroom_members.status = ?", studentID, entity.MemberStatusActive).
		Order("classrooms.created_at DESC").
		Find(&classrooms).Error
	return classrooms, err
}

// AddMember relies on the (classroom_id, student_id) unique index; a
// concurrent duplicate join surfaces as gorm.ErrDuplicatedKey.
func (r *classroomRepository) AddMember(ctx context.Context, member *entity.ClassroomMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *classroomRepository) ListMembers(ctx context.Context, classroomID uuid.UUID) ([]entity.ClassroomMember, error) {
	var members []entity.ClassroomMember
	err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *classroomRepository) IsMember(ctx context.Context, classroomID, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ClassroomMember{}).
		Where("classroom_id = ? AND student_id = ? AND status = ?", classroomID, studentID, entity.MemberStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *classroomRepository) CountMembers(ctx context.Context, classroomID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ClassroomMember{}).
		Where("classroom_id = ?", classroomID).
		Count(&count).Error
	return count, err
}
