package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	classroomRepo "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/repository"
	"github.com/DukeZhu95/classroom-backend/internal/modules/schedule/dto"
	"github.com/DukeZhu95/classroom-backend/internal/modules/schedule/repository"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScheduleService interface {
	CreateSchedule(ctx context.Context, teacherID uuid.UUID, req dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, teacherID, entryID uuid.UUID, req dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, teacherID, entryID uuid.UUID) error
	WeekCalendar(ctx context.Context, userID uuid.UUID, role string) ([]dto.CalendarDay, error)
}

type scheduleService struct {
	repo          repository.ScheduleRepository
	classroomRepo classroomRepo.ClassroomRepository
}

func NewScheduleService(repo repository.ScheduleRepository, classroomRepo classroomRepo.ClassroomRepository) ScheduleService {
	return &scheduleService{
		repo:          repo,
		classroomRepo: classroomRepo,
	}
}

func (s *scheduleService) CreateSchedule(ctx context.Context, teacherID uuid.UUID, req dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateDaysOfWeek(req.DaysOfWeek); err != nil {
		return nil, err
	}

	entry := &entity.ScheduleEntry{
		TeacherID:  teacherID,
		DaysOfWeek: datatypes.NewJSONSlice(req.DaysOfWeek),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Location:   req.Location,
		Color:      req.Color,
	}

	if req.ClassroomID != nil {
		classroomID, err := uuid.Parse(*req.ClassroomID)
		if err != nil {
			return nil, fmt.Errorf("invalid classroom id format: %w", apperror.ErrInvalidInput)
		}

		classroom, err := s.classroomRepo.FindByID(ctx, classroomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("classroom not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		if classroom.TeacherID != teacherID {
			return nil, fmt.Errorf("only the classroom teacher may add its schedule: %w", apperror.ErrUnauthorized)
		}

		entry.ClassroomID = &classroom.ID
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	resp := buildScheduleResponse(entry)
	return &resp, nil
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, teacherID, entryID uuid.UUID, req dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	entry, err := s.loadOwnedEntry(ctx, teacherID, entryID)
	if err != nil {
		return nil, err
	}

	if len(req.DaysOfWeek) > 0 {
		if err := validateDaysOfWeek(req.DaysOfWeek); err != nil {
			return nil, err
		}
		entry.DaysOfWeek = datatypes.NewJSONSlice(req.DaysOfWeek)
	}

	start, end := entry.StartTime, entry.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if err := validateTimeRange(start, end); err != nil {
		return nil, err
	}
	entry.StartTime = start
	entry.EndTime = end

	if req.Location != nil {
		entry.Location = req.Location
	}
	if req.Color != nil {
		entry.Color = req.Color
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	resp := buildScheduleResponse(entry)
	return &resp, nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, teacherID, entryID uuid.UUID) error {
	entry, err := s.loadOwnedEntry(ctx, teacherID, entryID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, entry.ID)
}

// WeekCalendar returns the caller's recurring week: teachers see the entries
// they own, students the entries of classrooms they joined.
func (s *scheduleService) WeekCalendar(ctx context.Context, userID uuid.UUID, role string) ([]dto.CalendarDay, error) {
	var entries []*entity.ScheduleEntry
	var err error

	if role == entity.RoleTeacher {
		entries, err = s.repo.ListByTeacher(ctx, userID)
	} else {
		var classrooms []*entity.Classroom
		classrooms, err = s.classroomRepo.ListByStudent(ctx, userID)
		if err != nil {
			return nil, err
		}

		ids := make([]uuid.UUID, 0, len(classrooms))
		for _, c := range classrooms {
			ids = append(ids, c.ID)
		}
		entries, err = s.repo.ListByClassroomIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}

	return buildWeekCalendar(entries), nil
}

func (s *scheduleService) loadOwnedEntry(ctx context.Context, teacherID, entryID uuid.UUID) (*entity.ScheduleEntry, error) {
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("schedule entry not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if entry.TeacherID != teacherID {
		return nil, fmt.Errorf("only the owning teacher may modify this schedule entry: %w", apperror.ErrUnauthorized)
	}

	return entry, nil
}
