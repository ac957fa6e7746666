package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskStatusActive   = "active"
	TaskStatusArchived = "archived"
)

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ClassroomID uuid.UUID  `gorm:"type:uuid;index;not null" json:"classroom_id"`
	TeacherID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"teacher_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `gorm:"size:20;not null;default:active" json:"status"` // 'active', 'archived'
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// IsPastDue reports whether the task deadline has already passed.
// Tasks without a due date are never past due.
func (t Task) IsPastDue(reference time.Time) bool {
	return t.DueDate != nil && reference.After(*t.DueDate)
}
