package classroom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/modules/classroom/dto"
	"github.com/DukeZhu95/classroom-backend/internal/modules/classroom/repository"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/DukeZhu95/classroom-backend/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ClassroomService interface {
	CreateClass(ctx context.Context, teacherID uuid.UUID, req dto.CreateClassRequest) (*dto.ClassroomResponse, error)
	JoinClass(ctx context.Context, studentID uuid.UUID, req dto.JoinClassRequest) (*dto.ClassroomResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ClassroomResponse, error)
	GetByCode(ctx context.Context, code string) (*dto.ClassroomResponse, error)
	ListTeacherClasses(ctx context.Context, teacherID uuid.UUID) ([]dto.ClassroomResponse, error)
	ListStudentClasses(ctx context.Context, studentID uuid.UUID) ([]dto.ClassroomResponse, error)
	Roster(ctx context.Context, classroomID, teacherID uuid.UUID) ([]dto.RosterEntryResponse, error)
}

type classroomService struct {
	repo        repository.ClassroomRepository
	redisClient *redis.Client
	joinLimit   time.Duration
}

func NewClassroomService(repo repository.ClassroomRepository, redisClient *redis.Client, joinLimit time.Duration) ClassroomService {
	return &classroomService{
		repo:        repo,
		redisClient: redisClient,
		joinLimit:   joinLimit,
	}
}

func (s *classroomService) CreateClass(ctx context.Context, teacherID uuid.UUID, req dto.CreateClassRequest) (*dto.ClassroomResponse, error) {
	if req.Code != "" {
		if err := ValidateCode(req.Code); err != nil {
			return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
		}

		classroom := &entity.Classroom{Code: req.Code, TeacherID: teacherID, Name: req.Name}
		if err := s.repo.Create(ctx, classroom); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.ErrDuplicateCode
			}
			return nil, err
		}
		return s.buildResponse(ctx, classroom), nil
	}

	// No code supplied: generate one, retrying on the unlikely collision.
	for attempt := 0; attempt < 5; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}

		classroom := &entity.Classroom{Code: code, TeacherID: teacherID, Name: req.Name}
		if err := s.repo.Create(ctx, classroom); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, err
		}
		return s.buildResponse(ctx, classroom), nil
	}

	return nil, fmt.Errorf("could not generate a unique class code: %w", apperror.ErrInternal)
}

func (s *classroomService) JoinClass(ctx context.Context, studentID uuid.UUID, req dto.JoinClassRequest) (*dto.ClassroomResponse, error) {
	allowed, err := ratelimit.CheckAndSet(ctx, s.redisClient, studentID, "join_class", s.joinLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.ErrRateLimitExceeded
	}

	classroom, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no classroom with code %s: %w", req.Code, apperror.ErrNotFound)
		}
		return nil, err
	}

	member := &entity.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   studentID,
		JoinedAt:    time.Now(),
		Status:      entity.MemberStatusActive,
	}

	// The unique (classroom_id, student_id) index makes this safe under
	// concurrent joins: exactly one insert wins, the rest land here.
	if err := s.repo.AddMember(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrAlreadyMember
		}
		return nil, err
	}

	return s.buildResponse(ctx, classroom), nil
}

func (s *classroomService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ClassroomResponse, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("classroom not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return s.buildResponse(ctx, classroom), nil
}

func (s *classroomService) GetByCode(ctx context.Context, code string) (*dto.ClassroomResponse, error) {
	classroom, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("classroom not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return s.buildResponse(ctx, classroom), nil
}

func (s *classroomService) ListTeacherClasses(ctx context.Context, teacherID uuid.UUID) ([]dto.ClassroomResponse, error) {
	classrooms, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.buildResponses(ctx, classrooms), nil
}

func (s *classroomService) ListStudentClasses(ctx context.Context, studentID uuid.UUID) ([]dto.ClassroomResponse, error) {
	classrooms, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.buildResponses(ctx, classrooms), nil
}

func (s *classroomService) Roster(ctx context.Context, classroomID, teacherID uuid.UUID) ([]dto.RosterEntryResponse, error) {
	classroom, err := s.repo.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("classroom not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if classroom.TeacherID != teacherID {
		return nil, fmt.Errorf("only the classroom teacher may view the roster: %w", apperror.ErrUnauthorized)
	}

	members, err := s.repo.ListMembers(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	roster := make([]dto.RosterEntryResponse, 0, len(members))
	for _, m := range members {
		roster = append(roster, dto.RosterEntryResponse{
			StudentID: m.StudentID,
			JoinedAt:  m.JoinedAt,
			Status:    m.Status,
		})
	}
	return roster, nil
}

func (s *classroomService) buildResponse(ctx context.Context, classroom *entity.Classroom) *dto.ClassroomResponse {
	count, err := s.repo.CountMembers(ctx, classroom.ID)
	if err != nil {
		count = 0
	}

	return &dto.ClassroomResponse{
		ID:           classroom.ID,
		Code:         classroom.Code,
		TeacherID:    classroom.TeacherID,
		Name:         classroom.Name,
		StudentCount: int(count),
		CreatedAt:    classroom.CreatedAt,
	}
}

func (s *classroomService) buildResponses(ctx context.Context, classrooms []*entity.Classroom) []dto.ClassroomResponse {
	responses := make([]dto.ClassroomResponse, 0, len(classrooms))
	for _, c := range classrooms {
		responses = append(responses, *s.buildResponse(ctx, c))
	}
	return responses
}
