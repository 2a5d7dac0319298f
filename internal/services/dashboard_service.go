package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/cache"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"gorm.io/gorm"
)

// Dashboard summarises the studio from the point of view of one profile.
type Dashboard struct {
	ActiveProjects  int64
	PendingTasks    int64
	TeamMembers     int64
	MinutesThisWeek int64
	RecentProjects  []models.Project
	RecentTasks     []models.Task
	ActiveTimeEntry *models.TimeEntry
}

// DashboardService aggregates counts over projects, tasks and time entries.
type DashboardService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	entryRepo   repository.TimeEntryRepository
	cache       *cache.QueryCache
	now         func() time.Time
}

func NewDashboardService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository, entryRepo repository.TimeEntryRepository, queryCache *cache.QueryCache) *DashboardService {
	return &DashboardService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		entryRepo:   entryRepo,
		cache:       queryCache,
		now:         time.Now,
	}
}

type dashboardKey struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Scoped    bool      `json:"scoped"`
}

// Get builds the dashboard for actor. Admins and managers see studio-wide
// numbers; everyone else sees the projects they belong to.
func (s *DashboardService) Get(ctx context.Context, actor *models.Profile) (*Dashboard, error) {
	scope := visibilityScope(actor)
	key := dashboardKey{ProfileID: actor.ID, Scoped: scope != nil}

	dashboard, err := cache.Fetch(s.cache, cache.EntityDashboard, key, func() (*Dashboard, error) {
		return s.load(ctx, actor.ID, scope)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return dashboard, nil
}

func (s *DashboardService) load(ctx context.Context, profileID uuid.UUID, scope *uuid.UUID) (*Dashboard, error) {
	completed := models.ProjectStatusCompleted
	done := models.TaskStatusDone

	projectFilter := repository.ProjectFilter{ExcludeStatus: &completed, MemberID: scope}
	activeProjects, err := s.projectRepo.Count(ctx, projectFilter)
	if err != nil {
		return nil, err
	}

	projectFilter.Limit = constants.DashboardRecentProjects
	recentProjects, err := s.projectRepo.List(ctx, projectFilter)
	if err != nil {
		return nil, err
	}

	taskFilter := repository.TaskFilter{ExcludeStatus: &done, MemberID: scope}
	pendingTasks, err := s.taskRepo.Count(ctx, taskFilter)
	if err != nil {
		return nil, err
	}
	recentTasks, err := s.taskRepo.List(ctx, taskFilter)
	if err != nil {
		return nil, err
	}
	if len(recentTasks) > constants.DashboardRecentProjects {
		recentTasks = recentTasks[:constants.DashboardRecentProjects]
	}

	teamMembers, err := s.projectRepo.CountDistinctMembers(ctx, scope)
	if err != nil {
		return nil, err
	}

	minutes, err := s.entryRepo.SumMinutesSince(ctx, profileID, startOfWeek(s.now()))
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		ActiveProjects:  activeProjects,
		PendingTasks:    pendingTasks,
		TeamMembers:     teamMembers,
		MinutesThisWeek: minutes,
		RecentProjects:  recentProjects,
		RecentTasks:     recentTasks,
	}

	if active, err := s.entryRepo.FindActive(ctx, profileID); err == nil {
		dashboard.ActiveTimeEntry = active
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return dashboard, nil
}

// startOfWeek returns Monday 00:00 UTC of the week containing t.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
