package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateClassRequest struct {
	// Code is optional; one is generated when omitted.
	Code string  `json:"code" binding:"omitempty,len=6"`
	Name *string `json:"name" binding:"omitempty,max=255"`
}

type JoinClassRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

type ClassroomResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	TeacherID    uuid.UUID `json:"teacher_id"`
	Name         *string   `json:"name,omitempty"`
	StudentCount int       `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type RosterEntryResponse struct {
	StudentID uuid.UUID `json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
	Status    string    `json:"status"`
}
