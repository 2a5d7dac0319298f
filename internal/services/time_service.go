package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/cache"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/metrics"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrActiveEntryExists = errors.New("a time entry is already running")
	ErrEntryNotActive    = errors.New("time entry is not running")
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrTaskNotInProject  = errors.New("task does not belong to the project")
)

// TimeService runs the per-user timer.
type TimeService struct {
	entryRepo repository.TimeEntryRepository
	taskRepo  repository.TaskRepository
	projects  *ProjectService
	cache     *cache.QueryCache
	now       func() time.Time
}

func NewTimeService(entryRepo repository.TimeEntryRepository, taskRepo repository.TaskRepository, projects *ProjectService, queryCache *cache.QueryCache) *TimeService {
	return &TimeService{
		entryRepo: entryRepo,
		taskRepo:  taskRepo,
		projects:  projects,
		cache:     queryCache,
		now:       time.Now,
	}
}

// Active returns the running entry of the user or nil when none runs.
func (s *TimeService) Active(ctx context.Context, userID uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active time entry: %w", err)
	}
	return entry, nil
}

type timeEntryPage struct {
	Entries []models.TimeEntry
	Total   int64
}

type timeEntryFilter struct {
	UserID   uuid.UUID `json:"user_id"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// List returns the user's entries newest first.
func (s *TimeService) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.TimeEntry, int64, error) {
	filter := timeEntryFilter{UserID: userID, Page: page, PageSize: pageSize}
	result, err := cache.Fetch(s.cache, cache.EntityTimeEntries, filter, func() (timeEntryPage, error) {
		entries, total, err := s.entryRepo.ListByUser(ctx, userID, page, pageSize)
		return timeEntryPage{Entries: entries, Total: total}, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time entries: %w", err)
	}
	return result.Entries, result.Total, nil
}

// StartInput optionally links the entry to a project and task.
type StartInput struct {
	ProjectID   *uuid.UUID
	TaskID      *uuid.UUID
	Description string
}

// Start begins a timer for actor. A second running timer is refused with
// ErrActiveEntryExists.
func (s *TimeService) Start(ctx context.Context, actor *models.Profile, input StartInput) (*models.TimeEntry, error) {
	entry, err := s.start(ctx, actor, input)
	metrics.TimeTrackingEvents.WithLabelValues("start", metrics.Result(err)).Inc()
	return entry, err
}

func (s *TimeService) start(ctx context.Context, actor *models.Profile, input StartInput) (*models.TimeEntry, error) {
	if input.TaskID != nil {
		task, err := s.taskRepo.FindByID(ctx, *input.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("failed to find task: %w", err)
		}
		if input.ProjectID == nil {
			projectID := task.ProjectID
			input.ProjectID = &projectID
		} else if *input.ProjectID != task.ProjectID {
			return nil, ErrTaskNotInProject
		}
	}
	if input.ProjectID != nil {
		if err := s.projects.EnsureAccess(ctx, actor, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = constants.DefaultTimeEntryDescription
	}

	entry := &models.TimeEntry{
		UserID:      actor.ID,
		ProjectID:   input.ProjectID,
		TaskID:      input.TaskID,
		Description: description,
		StartTime:   s.now().UTC(),
	}
	if err := s.entryRepo.Start(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrActiveEntryExists) {
			return nil, ErrActiveEntryExists
		}
		slog.Error("failed to start time entry", "user_id", actor.ID, "error", err)
		return nil, fmt.Errorf("failed to start time entry: %w", err)
	}
	s.cache.Invalidate(cache.EntityTimeEntries, cache.EntityDashboard)

	return s.get(ctx, entry.ID)
}

// Stop ends the user's running entry and records its duration in whole
// minutes.
func (s *TimeService) Stop(ctx context.Context, userID, entryID uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.stop(ctx, userID, entryID)
	metrics.TimeTrackingEvents.WithLabelValues("stop", metrics.Result(err)).Inc()
	return entry, err
}

func (s *TimeService) stop(ctx context.Context, userID, entryID uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	// Other users' entries are reported as missing.
	if entry.UserID != userID {
		return nil, ErrTimeEntryNotFound
	}
	if !entry.IsActive {
		return nil, ErrEntryNotActive
	}

	end := s.now().UTC()
	duration := models.DurationMinutesBetween(entry.StartTime, end)
	if err := s.entryRepo.Stop(ctx, entry.ID, end, duration); err != nil {
		if errors.Is(err, repository.ErrEntryNotActive) {
			return nil, ErrEntryNotActive
		}
		return nil, fmt.Errorf("failed to stop time entry: %w", err)
	}
	s.cache.Invalidate(cache.EntityTimeEntries, cache.EntityDashboard)

	return s.get(ctx, entry.ID)
}

func (s *TimeService) get(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}
	return entry, nil
}
