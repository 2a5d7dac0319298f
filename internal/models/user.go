package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the authentication identity. PasswordHash stays empty until an
// invited user accepts their invite.
type Account struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// Profile holds the studio-facing data for an account and shares its ID.
type Profile struct {
	ID         uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	Email      string     `gorm:"type:varchar(255);not null" json:"email"`
	Role       Role       `gorm:"type:varchar(20);not null;default:'Employee'" json:"role"`
	Department Department `gorm:"type:varchar(20);not null;default:'developer'" json:"department"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// assignID fills a zero UUID before insert.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
