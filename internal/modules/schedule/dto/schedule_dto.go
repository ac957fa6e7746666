package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateScheduleRequest struct {
	// ClassroomID scopes the entry to a classroom; omitted for personal
	// teacher entries.
	ClassroomID *string `json:"classroom_id" binding:"omitempty,uuid"`
	DaysOfWeek  []int   `json:"days_of_week" binding:"required,min=1,dive,min=0,max=6"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
	Color       *string `json:"color" binding:"omitempty,max=20"`
}

type UpdateScheduleRequest struct {
	DaysOfWeek []int   `json:"days_of_week" binding:"omitempty,min=1,dive,min=0,max=6"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Location   *string `json:"location" binding:"omitempty,max=255"`
	Color      *string `json:"color" binding:"omitempty,max=20"`
}

type ScheduleResponse struct {
	ID          uuid.UUID  `json:"id"`
	TeacherID   uuid.UUID  `json:"teacher_id"`
	ClassroomID *uuid.UUID `json:"classroom_id,omitempty"`
	DaysOfWeek  []int      `json:"days_of_week"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Location    *string    `json:"location,omitempty"`
	Color       *string    `json:"color,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CalendarDay groups the entries recurring on one weekday (0 = Sunday).
type CalendarDay struct {
	Day     int                `json:"day"`
	Entries []ScheduleResponse `json:"entries"`
}
