package dto

import (
	"time"

	submissionDto "github.com/DukeZhu95/classroom-backend/internal/modules/submission/dto"
	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"omitempty,max=10000"`
	ClassroomID string     `json:"classroom_id" binding:"required,uuid"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=10000"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ClassroomID uuid.UUID  `json:"classroom_id"`
	TeacherID   uuid.UUID  `json:"teacher_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StudentTaskResponse annotates a task with the calling student's own
// submission state.
type StudentTaskResponse struct {
	TaskResponse
	IsSubmitted      bool    `json:"is_submitted"`
	SubmissionStatus *string `json:"submission_status,omitempty"`
	Grade            *int    `json:"grade,omitempty"`
	Feedback         *string `json:"feedback,omitempty"`
}

// TeacherTaskResponse carries the full submission list for grading views.
type TeacherTaskResponse struct {
	TaskResponse
	Submissions []submissionDto.SubmissionResponse `json:"submissions"`
}
