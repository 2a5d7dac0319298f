package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectType string

const (
	ProjectTypeClient   ProjectType = "Client"
	ProjectTypeInternal ProjectType = "Internal"
)

func ParseProjectType(s string) (ProjectType, bool) {
	switch {
	case strings.EqualFold(s, string(ProjectTypeClient)):
		return ProjectTypeClient, true
	case strings.EqualFold(s, string(ProjectTypeInternal)):
		return ProjectTypeInternal, true
	default:
		return "", false
	}
}

type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "Planning"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusReview     ProjectStatus = "Review"
	ProjectStatusCompleted  ProjectStatus = "Completed"
	ProjectStatusOnHold     ProjectStatus = "On Hold"
)

var ProjectStatuses = []ProjectStatus{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusReview,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

// ParseProjectStatus matches case-insensitively and ignores spaces, so both
// "In Progress" and the filter form "inprogress" are accepted.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	key := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	for _, st := range ProjectStatuses {
		if strings.ToLower(strings.ReplaceAll(string(st), " ", "")) == key {
			return st, true
		}
	}
	return "", false
}

type Project struct {
	ID          uuid.UUID     `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Type        ProjectType   `gorm:"type:varchar(20);not null;default:'Client'" json:"type"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'Planning';index" json:"status"`
	ClientID    *uuid.UUID    `gorm:"type:varchar(36);index" json:"client_id"`
	Progress    int           `gorm:"not null;default:0" json:"progress"`
	DueDate     *time.Time    `json:"due_date"`
	CreatedBy   uuid.UUID     `gorm:"type:varchar(36);not null;index" json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	Client  *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	Creator *Profile        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
