package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/kanban"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	Position    int                 `json:"position"`
	Tags        []string            `json:"tags"`
	ProjectID   uuid.UUID           `json:"project_id"`
	Project     *ProjectSummaryDTO  `json:"project,omitempty"`
	AssigneeID  *uuid.UUID          `json:"assignee_id"`
	Assignee    *UserSummaryDTO     `json:"assignee,omitempty"`
	CreatedBy   uuid.UUID           `json:"created_by"`
	Creator     *UserSummaryDTO     `json:"creator,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// BucketDTO is one kanban column
type BucketDTO struct {
	Status models.TaskStatus `json:"status"`
	Title  string            `json:"title"`
	Count  int               `json:"count"`
	Tasks  []TaskDTO         `json:"tasks"`
}

// BoardDTO represents the kanban board of a project
type BoardDTO struct {
	ProjectID uuid.UUID   `json:"project_id"`
	Total     int         `json:"total"`
	Buckets   []BucketDTO `json:"buckets"`
}

// DragStateDTO reports the drag state kept in the session
type DragStateDTO struct {
	State  kanban.DragState `json:"state"`
	TaskID *uuid.UUID       `json:"task_id,omitempty"`
}

// DropResultDTO is returned after a drop. Moved is false when the drop did
// not change the task's bucket.
type DropResultDTO struct {
	Moved bool         `json:"moved"`
	Task  *TaskDTO     `json:"task,omitempty"`
	Drag  DragStateDTO `json:"drag"`
}

// GeneratedTaskDTO is an AI suggestion that has not been saved
type GeneratedTaskDTO struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"due_date"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := []string(task.Tags)
	if tags == nil {
		tags = []string{}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Position:    task.Position,
		Tags:        tags,
		ProjectID:   task.ProjectID,
		Project:     toProjectSummary(task.Project),
		AssigneeID:  task.AssigneeID,
		Assignee:    toUserSummary(task.Assignee),
		CreatedBy:   task.CreatedBy,
		Creator:     toUserSummary(task.Creator),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToBoardDTO converts a kanban board, keeping the fixed bucket order
func ToBoardDTO(board *kanban.Board) BoardDTO {
	buckets := make([]BucketDTO, len(board.Buckets))
	for i, bucket := range board.Buckets {
		buckets[i] = BucketDTO{
			Status: bucket.Status,
			Title:  bucket.Title,
			Count:  len(bucket.Tasks),
			Tasks:  ToTaskDTOs(bucket.Tasks),
		}
	}

	return BoardDTO{
		ProjectID: board.ProjectID,
		Total:     board.Total(),
		Buckets:   buckets,
	}
}

func ToDragStateDTO(drag *kanban.Drag) DragStateDTO {
	dto := DragStateDTO{State: drag.State()}
	if taskID, ok := drag.TaskID(); ok {
		dto.TaskID = &taskID
	}
	return dto
}

func ToGeneratedTaskDTOs(tasks []services.GeneratedTask) []GeneratedTaskDTO {
	items := make([]GeneratedTaskDTO, len(tasks))
	for i, task := range tasks {
		tags := task.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = GeneratedTaskDTO{
			Title:       task.Title,
			Description: task.Description,
			Priority:    task.Priority,
			Tags:        tags,
			DueDate:     task.DueDate,
		}
	}
	return items
}
