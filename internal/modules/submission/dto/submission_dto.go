package dto

import (
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/google/uuid"
)

type SubmitRequest struct {
	Content string `form:"content" binding:"required,max=50000"`
}

type GradeRequest struct {
	Grade    int     `json:"grade" binding:"min=0,max=100"`
	Feedback *string `json:"feedback" binding:"omitempty,max=10000"`
}

type SubmissionResponse struct {
	ID             uuid.UUID  `json:"id"`
	TaskID         uuid.UUID  `json:"task_id"`
	StudentID      uuid.UUID  `json:"student_id"`
	Content        string     `json:"content"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Status         string     `json:"status"`
	Grade          *int       `json:"grade,omitempty"`
	Feedback       *string    `json:"feedback,omitempty"`
	GradedAt       *time.Time `json:"graded_at,omitempty"`
	GradedBy       *uuid.UUID `json:"graded_by,omitempty"`
	AttachmentName *string    `json:"attachment_name,omitempty"`
	AttachmentURL  *string    `json:"attachment_url,omitempty"`
}

type TaskStatsResponse struct {
	TaskID            uuid.UUID `json:"task_id"`
	TotalSubmissions  int       `json:"total_submissions"`
	GradedSubmissions int       `json:"graded_submissions"`
}

// NewSubmissionResponse maps an entity to its response shape. attachmentURL
// is resolved by the caller from the stored blob ID at read time.
func NewSubmissionResponse(sub *entity.Submission, attachmentURL *string) SubmissionResponse {
	return SubmissionResponse{
		ID:             sub.ID,
		TaskID:         sub.TaskID,
		StudentID:      sub.StudentID,
		Content:        sub.Content,
		SubmittedAt:    sub.SubmittedAt,
		Status:         sub.Status,
		Grade:          sub.Grade,
		Feedback:       sub.Feedback,
		GradedAt:       sub.GradedAt,
		GradedBy:       sub.GradedBy,
		AttachmentName: sub.AttachmentName,
		AttachmentURL:  attachmentURL,
	}
}
