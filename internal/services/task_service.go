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
	"github.com/yukikurage/studio-manager-api/internal/kanban"
	"github.com/yukikurage/studio-manager-api/internal/metrics"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidTaskStatus      = errors.New("invalid task status")
	ErrInvalidTaskPriority    = errors.New("invalid task priority")
	ErrInvalidTaskAssignee    = errors.New("assignee does not exist")
	ErrTooManyTags            = errors.New("too many tags")
	ErrTaskMoveConflict       = errors.New("task was moved by someone else")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// Move sources recorded in metrics.
const (
	MoveSourceMenu = "menu"
	MoveSourceDrag = "drag"
)

// createAttempts bounds retries when two creates race for the same position.
const createAttempts = 3

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	profileRepo repository.ProfileRepository
	projects    *ProjectService
	generator   TaskGenerator
	cache       *cache.QueryCache
}

// NewTaskService creates a new TaskService. generator may be nil when no AI
// backend is configured.
func NewTaskService(taskRepo repository.TaskRepository, profileRepo repository.ProfileRepository, projects *ProjectService, generator TaskGenerator, queryCache *cache.QueryCache) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		profileRepo: profileRepo,
		projects:    projects,
		generator:   generator,
		cache:       queryCache,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID  *uuid.UUID
	Status     *models.TaskStatus
	AssigneeID *uuid.UUID
}

// ListTasks returns tasks visible to actor ordered by position.
func (s *TaskService) ListTasks(ctx context.Context, actor *models.Profile, input ListTasksInput) ([]models.Task, error) {
	if input.ProjectID != nil {
		if err := s.projects.EnsureAccess(ctx, actor, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	filter := repository.TaskFilter{
		ProjectID:  input.ProjectID,
		Status:     input.Status,
		AssigneeID: input.AssigneeID,
	}
	if input.ProjectID == nil {
		filter.MemberID = visibilityScope(actor)
	}

	return s.listTasks(ctx, filter)
}

func (s *TaskService) listTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	tasks, err := cache.Fetch(s.cache, cache.EntityTasks, filter, func() ([]models.Task, error) {
		return s.taskRepo.List(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Assignee", "Project", "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// TaskInput carries task fields. On update nil pointers are left unchanged;
// ClearAssignee and ClearDueDate remove the optional values.
type TaskInput struct {
	ProjectID     uuid.UUID
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *uuid.UUID
	ClearAssignee bool
	Tags          []string
	SetTags       bool
}

// CreateTask creates a task at the end of its project's ordering.
func (s *TaskService) CreateTask(ctx context.Context, actor *models.Profile, input TaskInput) (*models.Task, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if err := s.projects.EnsureAccess(ctx, actor, input.ProjectID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		ProjectID: input.ProjectID,
		CreatedBy: actor.ID,
	}
	if input.Status != nil {
		status, ok := models.ParseTaskStatus(string(*input.Status))
		if !ok {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = status
	}
	if err := s.applyTaskInput(ctx, task, input); err != nil {
		return nil, err
	}

	var err error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		err = s.taskRepo.Create(ctx, task)
		if err == nil || !repository.IsDuplicateKey(err) {
			break
		}
		slog.Warn("task position taken, retrying", "project_id", task.ProjectID, "attempt", attempt)
		task.ID = uuid.Nil
	}
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, ErrInvalidTaskAssignee
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.invalidateTasks()

	return s.GetTask(ctx, task.ID)
}

// UpdateTask updates an existing task. A status change goes through the same
// conditional move as the board does.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uuid.UUID, input TaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleEmpty
	}

	var target models.TaskStatus
	if input.Status != nil {
		status, ok := models.ParseTaskStatus(string(*input.Status))
		if !ok {
			return nil, ErrInvalidTaskStatus
		}
		target = status
	}

	if err := s.applyTaskInput(ctx, task, input); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, ErrInvalidTaskAssignee
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	s.invalidateTasks()

	if target != "" {
		return s.SetStatus(ctx, task.ID, target, MoveSourceMenu)
	}
	return s.GetTask(ctx, task.ID)
}

func (s *TaskService) applyTaskInput(ctx context.Context, task *models.Task, input TaskInput) error {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = optionalString(*input.Description)
	}
	if input.Priority != nil {
		priority, ok := models.ParseTaskPriority(string(*input.Priority))
		if !ok {
			return ErrInvalidTaskPriority
		}
		task.Priority = priority
	}

	switch {
	case input.ClearDueDate:
		task.DueDate = nil
	case input.DueDate != nil:
		task.DueDate = input.DueDate
	}

	switch {
	case input.ClearAssignee:
		task.AssigneeID = nil
	case input.AssigneeID != nil:
		if _, err := s.profileRepo.FindByID(ctx, *input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidTaskAssignee
			}
			return fmt.Errorf("failed to find assignee: %w", err)
		}
		assigneeID := *input.AssigneeID
		task.AssigneeID = &assigneeID
	}
	task.Assignee = nil

	if input.SetTags {
		tags := models.NormalizeTags(input.Tags)
		if len(tags) > constants.MaxTagsPerTask {
			return ErrTooManyTags
		}
		task.Tags = tags
	}

	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.invalidateTasks()
	return nil
}

// SetStatus moves a task to status. Moving into the current status changes
// nothing.
func (s *TaskService) SetStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus, source string) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	cmd, ok, err := kanban.NewMove(*task, status)
	if err != nil {
		return nil, ErrInvalidTaskStatus
	}
	if !ok {
		return task, nil
	}

	if err := s.Move(ctx, task.ProjectID, cmd, source); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, taskID)
}

// Move persists a move command as one conditional update and invalidates the
// cached lists so the board is rebuilt from the store.
func (s *TaskService) Move(ctx context.Context, projectID uuid.UUID, cmd kanban.MoveCommand, source string) error {
	err := s.taskRepo.MoveStatus(ctx, projectID, cmd.TaskID, cmd.From, cmd.To)
	metrics.KanbanMoves.WithLabelValues(source, metrics.Result(err)).Inc()
	if err != nil {
		slog.Error("task move failed",
			"task_id", cmd.TaskID,
			"from", cmd.From,
			"to", cmd.To,
			"source", source,
			"error", err,
		)
		if errors.Is(err, repository.ErrStaleMove) {
			return ErrTaskMoveConflict
		}
		return fmt.Errorf("failed to move task: %w", err)
	}

	s.invalidateTasks()
	return nil
}

// Board builds the kanban board of a project from a fresh task list.
func (s *TaskService) Board(ctx context.Context, projectID uuid.UUID) (*kanban.Board, error) {
	tasks, err := s.listTasks(ctx, repository.TaskFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	return kanban.NewBoard(projectID, tasks), nil
}

// invalidateTasks drops every list that embeds a task, time entries included.
func (s *TaskService) invalidateTasks() {
	s.cache.Invalidate(cache.EntityTasks, cache.EntityProjects, cache.EntityTimeEntries, cache.EntityDashboard)
}

// GenerateTasksInput represents input for AI task suggestions
type GenerateTasksInput struct {
	ProjectName string
	Text        string
}

// GenerateTasks asks the AI backend for task suggestions. Nothing is saved.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, input.ProjectName, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if priority, ok := models.ParseTaskPriority(aiTask.Priority); ok {
			aiTask.Priority = string(priority)
		} else {
			aiTask.Priority = string(models.TaskPriorityMedium)
		}
		aiTask.Tags = models.NormalizeTags(aiTask.Tags)

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}
