package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

type Classroom struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string            `gorm:"size:6;uniqueIndex;not null" json:"code"`
	TeacherID uuid.UUID         `gorm:"type:uuid;index;not null" json:"teacher_id"`
	Name      *string           `gorm:"size:255" json:"name,omitempty"`
	Members   []ClassroomMember `gorm:"foreignKey:ClassroomID" json:"members,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Classroom) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// ClassroomMember is the normalized roster row. The composite unique index is
// what makes concurrent joins safe: the second insert for the same pair fails
// at the database instead of racing past a read-then-check.
type ClassroomMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassroomID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_classroom_student;not null" json:"classroom_id"`
	StudentID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_classroom_student;index;not null" json:"student_id"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`
	Status      string    `gorm:"size:20;not null;default:active" json:"status"` // 'active', 'inactive'
}
