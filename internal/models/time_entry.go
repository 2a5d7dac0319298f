package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeEntry struct {
	ID              uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ProjectID       *uuid.UUID `gorm:"type:varchar(36);index" json:"project_id"`
	TaskID          *uuid.UUID `gorm:"type:varchar(36);index" json:"task_id"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	IsActive        bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	User    *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL" json:"project,omitempty"`
	Task    *Task    `gorm:"foreignKey:TaskID;constraint:OnDelete:SET NULL" json:"task,omitempty"`
}

func (e *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// DurationMinutesBetween rounds the elapsed time to whole minutes.
func DurationMinutesBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
