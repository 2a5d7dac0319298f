package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus doubles as the kanban bucket a task is shown in.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusReview,
	TaskStatusDone,
}

func ParseTaskStatus(s string) (TaskStatus, bool) {
	key := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range TaskStatuses {
		if st == key {
			return st, true
		}
	}
	return "", false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch p := TaskPriority(strings.ToLower(strings.TrimSpace(s))); p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return p, true
	default:
		return "", false
	}
}

type Task struct {
	ID          uuid.UUID    `gorm:"type:varchar(36);primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time   `gorm:"index" json:"due_date"`
	Position    int          `gorm:"not null;uniqueIndex:idx_tasks_project_position" json:"position"`
	ProjectID   uuid.UUID    `gorm:"type:varchar(36);not null;uniqueIndex:idx_tasks_project_position" json:"project_id"`
	AssigneeID  *uuid.UUID   `gorm:"type:varchar(36);index" json:"assignee_id"`
	CreatedBy   uuid.UUID    `gorm:"type:varchar(36);not null" json:"created_by"`
	Tags        Tags         `json:"tags"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Project  *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	Assignee *Profile `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	Creator  *Profile `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}
