package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

// Submission holds the latest work per (task, student) pair. The composite
// unique index gives the pair upsert semantics at the database level; there
// is never more than one row per pair, resubmission overwrites in place.
// StorageID is the opaque blob-store public ID; the fetchable URL is resolved
// per read, never persisted.
type Submission struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID         uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_task_student;index;not null" json:"task_id"`
	StudentID      uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_task_student;index;not null" json:"student_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	SubmittedAt    time.Time  `gorm:"not null" json:"submitted_at"`
	Status         string     `gorm:"size:20;not null" json:"status"` // 'submitted', 'graded'
	Grade          *int       `json:"grade,omitempty"`
	Feedback       *string    `gorm:"type:text" json:"feedback,omitempty"`
	GradedAt       *time.Time `json:"graded_at,omitempty"`
	GradedBy       *uuid.UUID `gorm:"type:uuid" json:"graded_by,omitempty"`
	StorageID      *string    `gorm:"size:255" json:"-"`
	AttachmentName *string    `gorm:"size:255" json:"attachment_name,omitempty"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
