package task

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	classroomRepo "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/repository"
	search "github.com/DukeZhu95/classroom-backend/internal/modules/search/service"
	submissionRepo "github.com/DukeZhu95/classroom-backend/internal/modules/submission/repository"
	taskDto "github.com/DukeZhu95/classroom-backend/internal/modules/task/dto"
	repo "github.com/DukeZhu95/classroom-backend/internal/modules/task/repository"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/DukeZhu95/classroom-backend/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskService interface {
	CreateTask(ctx context.Context, teacherID uuid.UUID, req taskDto.CreateTaskRequest) (*taskDto.TaskResponse, error)
	UpdateTask(ctx context.Context, teacherID, taskID uuid.UUID, req taskDto.UpdateTaskRequest) (*taskDto.TaskResponse, error)
	DeleteTask(ctx context.Context, teacherID, taskID uuid.UUID) error
	ArchiveTask(ctx context.Context, teacherID, taskID uuid.UUID) (*taskDto.TaskResponse, error)
	ListClassTasks(ctx context.Context, callerID uuid.UUID, role string, classroomID uuid.UUID) ([]taskDto.TaskResponse, error)
	ListStudentTasks(ctx context.Context, studentID uuid.UUID) ([]taskDto.StudentTaskResponse, error)
	ListTeacherTasks(ctx context.Context, teacherID uuid.UUID) ([]taskDto.TeacherTaskResponse, error)
}

type taskService struct {
	taskRepo       repo.TaskRepository
	classroomRepo  classroomRepo.ClassroomRepository
	submissionRepo submissionRepo.SubmissionRepository
	search         search.TaskSearchService
	fileStorage    storage.FileStorage
}

func NewTaskService(
	taskRepo repo.TaskRepository,
	classroomRepo classroomRepo.ClassroomRepository,
	submissionRepo submissionRepo.SubmissionRepository,
	searchSvc search.TaskSearchService,
	fileStorage storage.FileStorage,
) TaskService {
	return &taskService{
		taskRepo:       taskRepo,
		classroomRepo:  classroomRepo,
		submissionRepo: submissionRepo,
		search:         searchSvc,
		fileStorage:    fileStorage,
	}
}

func (s *taskService) CreateTask(ctx context.Context, teacherID uuid.UUID, req taskDto.CreateTaskRequest) (*taskDto.TaskResponse, error) {
	classroomID, err := uuid.Parse(req.ClassroomID)
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
		return nil, fmt.Errorf("only the classroom teacher may create tasks: %w", apperror.ErrUnauthorized)
	}

	task := &entity.Task{
		Title:       req.Title,
		Description: req.Description,
		ClassroomID: classroom.ID,
		TeacherID:   teacherID,
		DueDate:     req.DueDate,
		Status:      entity.TaskStatusActive,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.indexTask(task)

	resp := buildTaskResponse(task)
	return &resp, nil
}

func (s *taskService) UpdateTask(ctx context.Context, teacherID, taskID uuid.UUID, req taskDto.UpdateTaskRequest) (*taskDto.TaskResponse, error) {
	task, err := s.loadOwnedTask(ctx, teacherID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.indexTask(task)

	resp := buildTaskResponse(task)
	return &resp, nil
}

func (s *taskService) DeleteTask(ctx context.Context, teacherID, taskID uuid.UUID) error {
	task, err := s.loadOwnedTask(ctx, teacherID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteTask(task.ID.String()); err != nil {
			log.Printf("failed to remove task %s from search index: %v", task.ID, err)
		}
	}

	return nil
}

func (s *taskService) ArchiveTask(ctx context.Context, teacherID, taskID uuid.UUID) (*taskDto.TaskResponse, error) {
	task, err := s.loadOwnedTask(ctx, teacherID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = entity.TaskStatusArchived
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.indexTask(task)

	resp := buildTaskResponse(task)
	return &resp, nil
}

func (s *taskService) ListClassTasks(ctx context.Context, callerID uuid.UUID, role string, classroomID uuid.UUID) ([]taskDto.TaskResponse, error) {
	classroom, err := s.classroomRepo.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("classroom not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	switch role {
	case entity.RoleTeacher:
		if classroom.TeacherID != callerID {
			return nil, fmt.Errorf("not the classroom teacher: %w", apperror.ErrUnauthorized)
		}
	default:
		member, err := s.classroomRepo.IsMember(ctx, classroomID, callerID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, fmt.Errorf("not a member of this classroom: %w", apperror.ErrUnauthorized)
		}
	}

	tasks, err := s.taskRepo.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	responses := make([]taskDto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, buildTaskResponse(t))
	}
	return responses, nil
}

// ListStudentTasks is a computed view: every active task of every classroom
// the student joined, annotated with the student's own submission state.
// Overdue tasks come first (most overdue first), then upcoming by ascending
// due date, tasks without a due date last.
func (s *taskService) ListStudentTasks(ctx context.Context, studentID uuid.UUID) ([]taskDto.StudentTaskResponse, error) {
	classrooms, err := s.classroomRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]taskDto.StudentTaskResponse, 0)
	if len(classrooms) == 0 {
		return responses, nil
	}

	classroomIDs := make([]uuid.UUID, 0, len(classrooms))
	for _, c := range classrooms {
		classroomIDs = append(classroomIDs, c.ID)
	}

	tasks, err := s.taskRepo.ListActiveByClassroomIDs(ctx, classroomIDs)
	if err != nil {
		return nil, err
	}

	for _, t := range tasks {
		annotated := taskDto.StudentTaskResponse{TaskResponse: buildTaskResponse(t)}

		sub, err := s.submissionRepo.FindByTaskAndStudent(ctx, t.ID, studentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if sub != nil {
			annotated.IsSubmitted = true
			annotated.SubmissionStatus = &sub.Status
			annotated.Grade = sub.Grade
			annotated.Feedback = sub.Feedback
		}

		responses = append(responses, annotated)
	}

	sortStudentTasks(responses)
	return responses, nil
}

func (s *taskService) ListTeacherTasks(ctx context.Context, teacherID uuid.UUID) ([]taskDto.TeacherTaskResponse, error) {
	tasks, err := s.taskRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]taskDto.TeacherTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		subs, err := s.submissionRepo.ListByTask(ctx, t.ID)
		if err != nil {
			return nil, err
		}

		responses = append(responses, taskDto.TeacherTaskResponse{
			TaskResponse: buildTaskResponse(t),
			Submissions:  s.buildSubmissionResponses(subs),
		})
	}

	sortTeacherTasks(responses)
	return responses, nil
}

func (s *taskService) loadOwnedTask(ctx context.Context, teacherID, taskID uuid.UUID) (*entity.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	// Ownership is re-verified on every mutating operation, not just create.
	if task.TeacherID != teacherID {
		return nil, fmt.Errorf("only the owning teacher may modify this task: %w", apperror.ErrUnauthorized)
	}

	return task, nil
}

func (s *taskService) indexTask(task *entity.Task) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexTask(task); err != nil {
		log.Printf("failed to index task %s: %v", task.ID, err)
	}
}
