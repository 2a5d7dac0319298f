package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// TimeEntryDTO represents a time entry in API responses
type TimeEntryDTO struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	ProjectID       *uuid.UUID         `json:"project_id"`
	Project         *ProjectSummaryDTO `json:"project,omitempty"`
	TaskID          *uuid.UUID         `json:"task_id"`
	TaskTitle       *string            `json:"task_title,omitempty"`
	Description     string             `json:"description"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         *time.Time         `json:"end_time"`
	DurationMinutes *int               `json:"duration_minutes"`
	IsActive        bool               `json:"is_active"`
}

// TimeEntryListResponse represents a paginated list of time entries
type TimeEntryListResponse struct {
	Entries    []TimeEntryDTO `json:"entries"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
}

// DashboardDTO is the dashboard summary
type DashboardDTO struct {
	ActiveProjects  int64         `json:"active_projects"`
	PendingTasks    int64         `json:"pending_tasks"`
	TeamMembers     int64         `json:"team_members"`
	MinutesThisWeek int64         `json:"minutes_this_week"`
	RecentProjects  []ProjectDTO  `json:"recent_projects"`
	RecentTasks     []TaskDTO     `json:"recent_tasks"`
	ActiveTimeEntry *TimeEntryDTO `json:"active_time_entry"`
}

func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID:              entry.ID,
		UserID:          entry.UserID,
		ProjectID:       entry.ProjectID,
		Project:         toProjectSummary(entry.Project),
		TaskID:          entry.TaskID,
		Description:     entry.Description,
		StartTime:       entry.StartTime,
		EndTime:         entry.EndTime,
		DurationMinutes: entry.DurationMinutes,
		IsActive:        entry.IsActive,
	}
	if entry.Task != nil && entry.Task.ID != uuid.Nil {
		title := entry.Task.Title
		dto.TaskTitle = &title
	}
	return dto
}

func ToTimeEntryListResponse(entries []models.TimeEntry, page, pageSize int, totalCount int64) TimeEntryListResponse {
	items := make([]TimeEntryDTO, len(entries))
	for i, entry := range entries {
		items[i] = ToTimeEntryDTO(entry)
	}
	return TimeEntryListResponse{
		Entries:    items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}

func ToDashboardDTO(d *services.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		ActiveProjects:  d.ActiveProjects,
		PendingTasks:    d.PendingTasks,
		TeamMembers:     d.TeamMembers,
		MinutesThisWeek: d.MinutesThisWeek,
		RecentProjects:  ToProjectDTOs(d.RecentProjects),
		RecentTasks:     ToTaskDTOs(d.RecentTasks),
	}
	if d.ActiveTimeEntry != nil {
		entry := ToTimeEntryDTO(*d.ActiveTimeEntry)
		dto.ActiveTimeEntry = &entry
	}
	return dto
}
