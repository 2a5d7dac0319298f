package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectMember struct {
	ID        uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	ProjectID uuid.UUID   `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_members_project_user" json:"project_id"`
	UserID    uuid.UUID   `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_members_project_user;index" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relations
	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
