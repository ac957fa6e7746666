package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values are assigned once at registration and never mutated afterwards;
// every request carries the role as a verified token claim.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null" json:"role"` // 'teacher', 'student'
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}
