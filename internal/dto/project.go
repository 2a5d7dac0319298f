package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Type        models.ProjectType   `json:"type"`
	Status      models.ProjectStatus `json:"status"`
	Progress    int                  `json:"progress"`
	DueDate     *time.Time           `json:"due_date"`
	ClientID    *uuid.UUID           `json:"client_id"`
	Client      *ClientSummaryDTO    `json:"client,omitempty"`
	CreatedBy   uuid.UUID            `json:"created_by"`
	Creator     *UserSummaryDTO      `json:"creator,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProjectSummaryDTO is the short form embedded in tasks and time entries
type ProjectSummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ProjectMemberDTO represents a project membership
type ProjectMemberDTO struct {
	ID        uuid.UUID          `json:"id"`
	ProjectID uuid.UUID          `json:"project_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Role      models.ProjectRole `json:"role"`
	User      *UserSummaryDTO    `json:"user,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Type:        project.Type,
		Status:      project.Status,
		Progress:    project.Progress,
		DueDate:     project.DueDate,
		ClientID:    project.ClientID,
		CreatedBy:   project.CreatedBy,
		Creator:     toUserSummary(project.Creator),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	// Include client if preloaded
	if project.Client != nil && project.Client.ID != uuid.Nil {
		dto.Client = &ClientSummaryDTO{
			ID:   project.Client.ID,
			Name: project.Client.Name,
		}
	}

	return dto
}

func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}
	return items
}

func toProjectSummary(project *models.Project) *ProjectSummaryDTO {
	if project == nil || project.ID == uuid.Nil {
		return nil
	}
	return &ProjectSummaryDTO{
		ID:   project.ID,
		Name: project.Name,
	}
}

func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      member.Role,
		User:      toUserSummary(member.Profile),
		CreatedAt: member.CreatedAt,
	}
}

func ToProjectMemberDTOs(members []models.ProjectMember) []ProjectMemberDTO {
	items := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		items[i] = ToProjectMemberDTO(member)
	}
	return items
}
