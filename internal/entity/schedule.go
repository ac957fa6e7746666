package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScheduleEntry is a recurring weekly time slot. TeacherID is always the
// owning teacher; ClassroomID is set only for classroom-scoped entries.
// Days of week use time.Weekday numbering (0 = Sunday).
type ScheduleEntry struct {
	ID          uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID   uuid.UUID                `gorm:"type:uuid;index;not null" json:"teacher_id"`
	ClassroomID *uuid.UUID               `gorm:"type:uuid;index" json:"classroom_id,omitempty"`
	DaysOfWeek  datatypes.JSONSlice[int] `gorm:"not null" json:"days_of_week"`
	StartTime   string                   `gorm:"size:5;not null" json:"start_time"` // "15:04"
	EndTime     string                   `gorm:"size:5;not null" json:"end_time"`
	Location    *string                  `gorm:"size:255" json:"location,omitempty"`
	Color       *string                  `gorm:"size:20" json:"color,omitempty"`
	CreatedAt   time.Time                `gorm:"autoCreateTime" json:"created_at"`
}

func (e *ScheduleEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

// OccursOn reports whether the entry recurs on the given weekday.
func (e ScheduleEntry) OccursOn(day time.Weekday) bool {
	for _, d := range e.DaysOfWeek {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}
