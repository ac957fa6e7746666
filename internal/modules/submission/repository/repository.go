package repository

import (
	"context"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStats is the per-task aggregation row behind classroom statistics.
type TaskStats struct {
	TaskID uuid.UUID
	Total  int
	Graded int
}

type SubmissionRepository interface {
	// Upsert writes the submission for its (task_id, student_id) pair. The
	// update half of the statement carries a status <> 'graded' guard, so a
	// graded row is never overwritten even under concurrent calls. It
	// returns false when the guard blocked the write.
	Upsert(ctx context.Context, sub *entity.Submission) (bool, error)
	Save(ctx context.Context, sub *entity.Submission) error
	FindByTaskAndStudent(ctx context.Context, taskID, studentID uuid.UUID) (*entity.Submission, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*entity.Submission, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error)
	StatsByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) ([]TaskStats, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Upsert(ctx context.Context, sub *entity.Submission) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task_id"}, {Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"content":         sub.Content,
			"submitted_at":    sub.SubmittedAt,
			"status":          sub.Status,
			"storage_id":      sub.StorageID,
			"attachment_name": sub.AttachmentName,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{
				Column: clause.Column{Table: "submissions", Name: "status"},
				Value:  entity.SubmissionStatusGraded,
			},
		}},
	}).Create(sub)

	if result.Error != nil {
		return false, result.Error
	}

	// Zero rows means the conflict target existed but the guard rejected
	// the update: the submission was graded in the meantime.
	return result.RowsAffected > 0, nil
}

func (r *submissionRepository) Save(ctx context.Context, sub *entity.Submission) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *submissionRepository) FindByTaskAndStudent(ctx context.Context, taskID, studentID uuid.UUID) (*entity.Submission, error) {
	var sub entity.Submission
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*entity.Submission, error) {
	var subs []*entity.Submission
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("submitted_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error) {
	var subs []*entity.Submission
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepository) StatsByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) ([]TaskStats, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	var stats []TaskStats
	err := r.db.WithContext(ctx).Model(&entity.Submission{}).
		Select("task_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS graded",
			entity.SubmissionStatusGraded).
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&stats).Error
	return stats, err
}
