package dto

import (
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/google/uuid"
)

// Profile updates arrive as multipart form data so an avatar image can ride
// along with the text fields.

type UpdateStudentProfileRequest struct {
	FirstName  string  `form:"first_name" binding:"required,max=100"`
	LastName   string  `form:"last_name" binding:"required,max=100"`
	Bio        *string `form:"bio" binding:"omitempty,max=2000"`
	City       string  `form:"city" binding:"omitempty,max=100"`
	Country    string  `form:"country" binding:"omitempty,max=100"`
	GradeLevel *string `form:"grade_level" binding:"omitempty,max=50"`
	SchoolName *string `form:"school_name" binding:"omitempty,max=255"`
}

type UpdateTeacherProfileRequest struct {
	FirstName     string  `form:"first_name" binding:"required,max=100"`
	LastName      string  `form:"last_name" binding:"required,max=100"`
	Bio           *string `form:"bio" binding:"omitempty,max=2000"`
	City          string  `form:"city" binding:"omitempty,max=100"`
	Country       string  `form:"country" binding:"omitempty,max=100"`
	Subject       *string `form:"subject" binding:"omitempty,max=100"`
	Qualification *string `form:"qualification" binding:"omitempty,max=255"`
}

type StudentProfileResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Bio        *string   `json:"bio,omitempty"`
	City       string    `json:"city"`
	Country    string    `json:"country"`
	GradeLevel *string   `json:"grade_level,omitempty"`
	SchoolName *string   `json:"school_name,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TeacherProfileResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Bio           *string   `json:"bio,omitempty"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Subject       *string   `json:"subject,omitempty"`
	Qualification *string   `json:"qualification,omitempty"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewStudentProfileResponse(p *entity.StudentProfile, avatarURL *string) StudentProfileResponse {
	return StudentProfileResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Bio:        p.Bio,
		City:       p.City,
		Country:    p.Country,
		GradeLevel: p.GradeLevel,
		SchoolName: p.SchoolName,
		AvatarURL:  avatarURL,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func NewTeacherProfileResponse(p *entity.TeacherProfile, avatarURL *string) TeacherProfileResponse {
	return TeacherProfileResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Bio:           p.Bio,
		City:          p.City,
		Country:       p.Country,
		Subject:       p.Subject,
		Qualification: p.Qualification,
		AvatarURL:     avatarURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
