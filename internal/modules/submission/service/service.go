package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	classroomRepo "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/repository"
	"github.com/DukeZhu95/classroom-backend/internal/modules/submission/dto"
	repo "github.com/DukeZhu95/classroom-backend/internal/modules/submission/repository"
	taskRepo "github.com/DukeZhu95/classroom-backend/internal/modules/task/repository"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/DukeZhu95/classroom-backend/pkg/ratelimit"
	"github.com/DukeZhu95/classroom-backend/pkg/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AttachmentUpload carries an uploaded file from the handler into Submit.
type AttachmentUpload struct {
	Reader   io.Reader
	FileName string
}

type SubmissionService interface {
	Submit(ctx context.Context, studentID, taskID uuid.UUID, req dto.SubmitRequest, attachment *AttachmentUpload) (*dto.SubmissionResponse, error)
	Grade(ctx context.Context, teacherID, taskID, studentID uuid.UUID, req dto.GradeRequest) (*dto.SubmissionResponse, error)
	GetSubmission(ctx context.Context, taskID, studentID uuid.UUID) (*dto.SubmissionResponse, error)
	ListTaskSubmissions(ctx context.Context, teacherID, taskID uuid.UUID) ([]dto.SubmissionResponse, error)
	ListStudentSubmissions(ctx context.Context, studentID uuid.UUID) ([]dto.SubmissionResponse, error)
	ClassSubmissionStats(ctx context.Context, teacherID, classroomID uuid.UUID) ([]dto.TaskStatsResponse, error)
}

type submissionService struct {
	subRepo       repo.SubmissionRepository
	taskRepo      taskRepo.TaskRepository
	classroomRepo classroomRepo.ClassroomRepository
	fileStorage   storage.FileStorage
	redisClient   *redis.Client
	submitLimit   time.Duration
}

func NewSubmissionService(
	subRepo repo.SubmissionRepository,
	taskRepo taskRepo.TaskRepository,
	classroomRepo classroomRepo.ClassroomRepository,
	fileStorage storage.FileStorage,
	redisClient *redis.Client,
	submitLimit time.Duration,
) SubmissionService {
	return &submissionService{
		subRepo:       subRepo,
		taskRepo:      taskRepo,
		classroomRepo: classroomRepo,
		fileStorage:   fileStorage,
		redisClient:   redisClient,
		submitLimit:   submitLimit,
	}
}

// Submit upserts the student's submission for a task. Resubmission replaces
// the previous content and attachment; a graded submission can no longer be
// touched. A new attachment is uploaded before the row is written (upload
// failure aborts the submission), while deleting the replaced blob happens
// after and is best-effort.
func (s *submissionService) Submit(ctx context.Context, studentID, taskID uuid.UUID, req dto.SubmitRequest, attachment *AttachmentUpload) (*dto.SubmissionResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	member, err := s.classroomRepo.IsMember(ctx, task.ClassroomID, studentID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("not a member of this task's classroom: %w", apperror.ErrUnauthorized)
	}

	allowed, err := ratelimit.CheckAndSet(ctx, s.redisClient, studentID, "submit_task", s.submitLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.ErrRateLimitExceeded
	}

	existing, err := s.subRepo.FindByTaskAndStudent(ctx, taskID, studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == entity.SubmissionStatusGraded {
		return nil, apperror.ErrCannotModifyGraded
	}

	sub := &entity.Submission{
		TaskID:      taskID,
		StudentID:   studentID,
		Content:     req.Content,
		SubmittedAt: time.Now(),
		Status:      entity.SubmissionStatusSubmitted,
	}

	// Keep the previous attachment on content-only resubmission.
	var oldStorageID *string
	if existing != nil {
		sub.StorageID = existing.StorageID
		sub.AttachmentName = existing.AttachmentName
		oldStorageID = existing.StorageID
	}

	var newStorageID string
	if attachment != nil {
		if s.fileStorage == nil {
			return nil, fmt.Errorf("file storage is not configured: %w", apperror.ErrInternal)
		}
		newStorageID, err = s.fileStorage.Upload(ctx, attachment.Reader, "submissions", attachment.FileName)
		if err != nil {
			// The row must never reference a blob that was not stored.
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		sub.StorageID = &newStorageID
		sub.AttachmentName = &attachment.FileName
	}

	applied, err := s.subRepo.Upsert(ctx, sub)
	if err != nil {
		s.cleanupBlob(ctx, newStorageID)
		return nil, err
	}
	if !applied {
		// A grade landed between the read above and the write: the guard in
		// the upsert refused the overwrite.
		s.cleanupBlob(ctx, newStorageID)
		return nil, apperror.ErrCannotModifyGraded
	}

	// Replaced attachment cleanup is non-critical: a dangling blob is
	// acceptable, a row pointing at a deleted one is not.
	if attachment != nil && oldStorageID != nil && *oldStorageID != newStorageID {
		if err := s.fileStorage.Delete(ctx, *oldStorageID); err != nil {
			log.Printf("failed to delete replaced attachment %s: %v", *oldStorageID, err)
		}
	}

	stored, err := s.subRepo.FindByTaskAndStudent(ctx, taskID, studentID)
	if err != nil {
		return nil, err
	}

	resp := s.buildResponse(stored)
	return &resp, nil
}

// Grade records (or corrects) the grade for a student's submission. Only the
// teacher owning the task's classroom may grade, and grading requires an
// existing submission.
func (s *submissionService) Grade(ctx context.Context, teacherID, taskID, studentID uuid.UUID, req dto.GradeRequest) (*dto.SubmissionResponse, error) {
	if req.Grade < 0 || req.Grade > 100 {
		return nil, apperror.ErrInvalidGrade
	}

	if err := s.requireTaskOwner(ctx, teacherID, taskID); err != nil {
		return nil, err
	}

	sub, err := s.subRepo.FindByTaskAndStudent(ctx, taskID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, err
	}

	now := time.Now()
	grade := req.Grade
	sub.Status = entity.SubmissionStatusGraded
	sub.Grade = &grade
	sub.Feedback = req.Feedback
	sub.GradedAt = &now
	sub.GradedBy = &teacherID

	if err := s.subRepo.Save(ctx, sub); err != nil {
		return nil, err
	}

	resp := s.buildResponse(sub)
	return &resp, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, taskID, studentID uuid.UUID) (*dto.SubmissionResponse, error) {
	sub, err := s.subRepo.FindByTaskAndStudent(ctx, taskID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, err
	}

	resp := s.buildResponse(sub)
	return &resp, nil
}

func (s *submissionService) ListTaskSubmissions(ctx context.Context, teacherID, taskID uuid.UUID) ([]dto.SubmissionResponse, error) {
	if err := s.requireTaskOwner(ctx, teacherID, taskID); err != nil {
		return nil, err
	}

	subs, err := s.subRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, s.buildResponse(sub))
	}
	return responses, nil
}

func (s *submissionService) ListStudentSubmissions(ctx context.Context, studentID uuid.UUID) ([]dto.SubmissionResponse, error) {
	subs, err := s.subRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, s.buildResponse(sub))
	}
	return responses, nil
}

// ClassSubmissionStats recomputes, per task of the classroom, how many
// submissions exist and how many are graded.
func (s *submissionService) ClassSubmissionStats(ctx context.Context, teacherID, classroomID uuid.UUID) ([]dto.TaskStatsResponse, error) {
	classroom, err := s.classroomRepo.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("classroom not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if classroom.TeacherID != teacherID {
		return nil, fmt.Errorf("only the classroom teacher may view stats: %w", apperror.ErrUnauthorized)
	}

	tasks, err := s.taskRepo.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	taskIDs := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}

	stats, err := s.subRepo.StatsByTaskIDs(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	byTask := make(map[uuid.UUID]repo.TaskStats, len(stats))
	for _, st := range stats {
		byTask[st.TaskID] = st
	}

	responses := make([]dto.TaskStatsResponse, 0, len(tasks))
	for _, t := range tasks {
		st := byTask[t.ID]
		responses = append(responses, dto.TaskStatsResponse{
			TaskID:            t.ID,
			TotalSubmissions:  st.Total,
			GradedSubmissions: st.Graded,
		})
	}
	return responses, nil
}

func (s *submissionService) requireTaskOwner(ctx context.Context, teacherID, taskID uuid.UUID) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("task not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	classroom, err := s.classroomRepo.FindByID(ctx, task.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("classroom not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if classroom.TeacherID != teacherID {
		return fmt.Errorf("only the classroom teacher may grade or view submissions: %w", apperror.ErrUnauthorized)
	}

	return nil
}

func (s *submissionService) cleanupBlob(ctx context.Context, storageID string) {
	if storageID == "" || s.fileStorage == nil {
		return
	}
	if err := s.fileStorage.Delete(ctx, storageID); err != nil {
		log.Printf("failed to delete orphaned attachment %s: %v", storageID, err)
	}
}

func (s *submissionService) buildResponse(sub *entity.Submission) dto.SubmissionResponse {
	var url *string
	if sub.StorageID != nil && s.fileStorage != nil {
		resolved, err := s.fileStorage.ResolveURL(*sub.StorageID)
		if err != nil {
			log.Printf("failed to resolve attachment URL for submission %s: %v", sub.ID, err)
		} else {
			url = &resolved
		}
	}
	return dto.NewSubmissionResponse(sub, url)
}
