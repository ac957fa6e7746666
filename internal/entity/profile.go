package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profiles are created lazily on first edit and upserted by user ID.
// AvatarID holds the blob-store public ID only.

type StudentProfile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	FirstName  string    `gorm:"size:100;not null" json:"first_name"`
	LastName   string    `gorm:"size:100;not null" json:"last_name"`
	Bio        *string   `gorm:"type:text" json:"bio,omitempty"`
	City       string    `gorm:"size:100" json:"city"`
	Country    string    `gorm:"size:100" json:"country"`
	GradeLevel *string   `gorm:"size:50" json:"grade_level,omitempty"`
	SchoolName *string   `gorm:"size:255" json:"school_name,omitempty"`
	AvatarID   *string   `gorm:"size:255" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type TeacherProfile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	FirstName     string    `gorm:"size:100;not null" json:"first_name"`
	LastName      string    `gorm:"size:100;not null" json:"last_name"`
	Bio           *string   `gorm:"type:text" json:"bio,omitempty"`
	City          string    `gorm:"size:100" json:"city"`
	Country       string    `gorm:"size:100" json:"country"`
	Subject       *string   `gorm:"size:100" json:"subject,omitempty"`
	Qualification *string   `gorm:"size:255" json:"qualification,omitempty"`
	AvatarID      *string   `gorm:"size:255" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *TeacherProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
