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
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound         = errors.New("project not found")
	ErrProjectNameRequired     = errors.New("project name is required")
	ErrInvalidProjectType      = errors.New("invalid project type")
	ErrInvalidProjectStatus    = errors.New("invalid project status")
	ErrInvalidProgress         = errors.New("progress must be between 0 and 100")
	ErrInvalidClient           = errors.New("client does not exist")
	ErrProjectPermissionDenied = errors.New("insufficient permissions for this project")
	ErrAlreadyProjectMember    = errors.New("user is already a member of this project")
	ErrProjectMemberNotFound   = errors.New("project member not found")
	ErrInvalidProjectRole      = errors.New("invalid project role")
)

// ProjectService provides business logic for projects and their members.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	clientRepo  repository.ClientRepository
	profileRepo repository.ProfileRepository
	cache       *cache.QueryCache
}

func NewProjectService(projectRepo repository.ProjectRepository, clientRepo repository.ClientRepository, profileRepo repository.ProfileRepository, queryCache *cache.QueryCache) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		profileRepo: profileRepo,
		cache:       queryCache,
	}
}

// visibilityScope returns nil for profiles that see every project and the
// profile ID for everyone else.
func visibilityScope(actor *models.Profile) *uuid.UUID {
	if actor.Role.IsAdminOrManager() {
		return nil
	}
	id := actor.ID
	return &id
}

// EnsureAccess returns ErrProjectNotFound when the project is missing or actor
// may not see it, so that existence is not leaked.
func (s *ProjectService) EnsureAccess(ctx context.Context, actor *models.Profile, projectID uuid.UUID) error {
	if actor.Role.IsAdminOrManager() {
		if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("failed to find project: %w", err)
		}
		return nil
	}
	if _, err := s.projectRepo.FindMember(ctx, projectID, actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	return nil
}

// CanManage reports whether actor may administer the project: studio admins
// and managers always can, other profiles only as project admins.
func (s *ProjectService) CanManage(ctx context.Context, actor *models.Profile, projectID uuid.UUID) (bool, error) {
	if actor.Role.IsAdminOrManager() {
		return true, nil
	}
	member, err := s.projectRepo.FindMember(ctx, projectID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify project membership: %w", err)
	}
	return member.Role == models.ProjectRoleAdmin, nil
}

func (s *ProjectService) ensureManage(ctx context.Context, actor *models.Profile, projectID uuid.UUID) error {
	ok, err := s.CanManage(ctx, actor, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProjectPermissionDenied
	}
	return nil
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	Search string
	Type   *models.ProjectType
	Status *models.ProjectStatus
}

func (s *ProjectService) ListProjects(ctx context.Context, actor *models.Profile, input ListProjectsInput) ([]models.Project, error) {
	filter := repository.ProjectFilter{
		Search:   strings.TrimSpace(input.Search),
		Type:     input.Type,
		Status:   input.Status,
		MemberID: visibilityScope(actor),
	}

	projects, err := cache.Fetch(s.cache, cache.EntityProjects, filter, func() ([]models.Project, error) {
		return s.projectRepo.List(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project with its client and creator
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id, "Client", "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ProjectInput carries project fields. On update nil pointers are left
// unchanged; ClearClientID and ClearDueDate remove the optional references.
type ProjectInput struct {
	Name          *string
	Description   *string
	Type          *models.ProjectType
	Status        *models.ProjectStatus
	ClientID      *uuid.UUID
	ClearClientID bool
	Progress      *int
	DueDate       *time.Time
	ClearDueDate  bool
}

// CreateProject creates a project and makes the actor its admin.
func (s *ProjectService) CreateProject(ctx context.Context, actor *models.Profile, input ProjectInput) (*models.Project, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	project := &models.Project{
		Type:      models.ProjectTypeClient,
		Status:    models.ProjectStatusPlanning,
		CreatedBy: actor.ID,
	}
	if err := s.applyProjectInput(ctx, project, input); err != nil {
		return nil, err
	}

	creator := &models.ProjectMember{
		UserID: actor.ID,
		Role:   models.ProjectRoleAdmin,
	}
	if err := s.projectRepo.Create(ctx, project, creator); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.cache.Invalidate(cache.EntityProjects, cache.EntityProjectMembers, cache.EntityDashboard)

	return s.GetProject(ctx, project.ID)
}

func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, input ProjectInput) (*models.Project, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.applyProjectInput(ctx, project, input); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	s.cache.Invalidate(cache.EntityProjects, cache.EntityTasks, cache.EntityTimeEntries, cache.EntityDashboard)

	return s.GetProject(ctx, project.ID)
}

// DeleteProject removes a project with its tasks. Only project admins,
// studio admins and managers may do this.
func (s *ProjectService) DeleteProject(ctx context.Context, actor *models.Profile, id uuid.UUID) error {
	if err := s.ensureManage(ctx, actor, id); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.cache.Invalidate(
		cache.EntityProjects,
		cache.EntityProjectMembers,
		cache.EntityTasks,
		cache.EntityTimeEntries,
		cache.EntityDashboard,
	)

	slog.Info("project deleted", "actor_id", actor.ID, "project_id", id)
	return nil
}

func (s *ProjectService) applyProjectInput(ctx context.Context, project *models.Project, input ProjectInput) error {
	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.Type != nil {
		projectType, ok := models.ParseProjectType(string(*input.Type))
		if !ok {
			return ErrInvalidProjectType
		}
		project.Type = projectType
	}
	if input.Status != nil {
		status, ok := models.ParseProjectStatus(string(*input.Status))
		if !ok {
			return ErrInvalidProjectStatus
		}
		project.Status = status
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return ErrInvalidProgress
		}
		project.Progress = *input.Progress
	}

	switch {
	case input.ClearClientID:
		project.ClientID = nil
	case input.ClientID != nil:
		if _, err := s.clientRepo.FindByID(ctx, *input.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidClient
			}
			return fmt.Errorf("failed to find client: %w", err)
		}
		clientID := *input.ClientID
		project.ClientID = &clientID
	}
	project.Client = nil

	switch {
	case input.ClearDueDate:
		project.DueDate = nil
	case input.DueDate != nil:
		project.DueDate = input.DueDate
	}

	return nil
}

// ListMembers lists all members of a project with their profiles.
func (s *ProjectService) ListMembers(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error) {
	members, err := cache.Fetch(s.cache, cache.EntityProjectMembers, projectID, func() ([]models.ProjectMember, error) {
		return s.projectRepo.ListMembers(ctx, projectID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// AddMemberInput names the profile to add and its project role.
type AddMemberInput struct {
	UserID uuid.UUID
	Role   models.ProjectRole
}

func (s *ProjectService) AddMember(ctx context.Context, actor *models.Profile, projectID uuid.UUID, input AddMemberInput) (*models.ProjectMember, error) {
	if err := s.ensureManage(ctx, actor, projectID); err != nil {
		return nil, err
	}

	if input.Role == "" {
		input.Role = models.ProjectRoleMember
	}
	role, ok := models.ParseProjectRole(string(input.Role))
	if !ok {
		return nil, ErrInvalidProjectRole
	}

	if _, err := s.profileRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    input.UserID,
		Role:      role,
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrAlreadyProjectMember
		}
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}
	s.cache.Invalidate(cache.EntityProjectMembers, cache.EntityProjects, cache.EntityTasks, cache.EntityDashboard)

	return member, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, actor *models.Profile, projectID, userID uuid.UUID) error {
	if err := s.ensureManage(ctx, actor, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.RemoveMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	s.cache.Invalidate(cache.EntityProjectMembers, cache.EntityProjects, cache.EntityTasks, cache.EntityDashboard)

	return nil
}
