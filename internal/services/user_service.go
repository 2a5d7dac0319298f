package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/cache"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCannotManageUser   = errors.New("insufficient permissions to manage this user")
	ErrCannotAssignRole   = errors.New("insufficient permissions to assign this role")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrUserInUse          = errors.New("user still owns projects or tasks")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidDepartment  = errors.New("invalid department")
	ErrInviteNotAvailable = errors.New("invites are not configured")
)

// UserService manages studio profiles and invitations.
type UserService struct {
	accountRepo repository.AccountRepository
	profileRepo repository.ProfileRepository
	invites     *InviteIssuer
	cache       *cache.QueryCache
}

func NewUserService(accountRepo repository.AccountRepository, profileRepo repository.ProfileRepository, invites *InviteIssuer, queryCache *cache.QueryCache) *UserService {
	return &UserService{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		invites:     invites,
		cache:       queryCache,
	}
}

type profilePage struct {
	Profiles []models.Profile
	Total    int64
}

// ListUsers lists profiles matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter repository.ProfileFilter) ([]models.Profile, int64, error) {
	page, err := cache.Fetch(s.cache, cache.EntityProfiles, filter, func() (profilePage, error) {
		profiles, total, err := s.profileRepo.List(ctx, filter)
		return profilePage{Profiles: profiles, Total: total}, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return page.Profiles, page.Total, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return profile, nil
}

// InviteUserInput describes the user to invite.
type InviteUserInput struct {
	Email      string
	Role       models.Role
	Department models.Department
}

// InviteResult is the created profile and the token the invitee uses to set
// a password.
type InviteResult struct {
	Profile   *models.Profile
	Token     string
	ExpiresAt time.Time
}

// InviteUser creates a password-less account and its profile. The actor may
// only hand out roles it could manage.
func (s *UserService) InviteUser(ctx context.Context, actor *models.Profile, input InviteUserInput) (*InviteResult, error) {
	if s.invites == nil {
		return nil, ErrInviteNotAvailable
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = models.RoleEmployee
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if input.Department == "" {
		input.Department = models.DepartmentDeveloper
	}
	if _, ok := models.ParseDepartment(string(input.Department)); !ok {
		return nil, ErrInvalidDepartment
	}
	if !models.CanManage(actor.Role, input.Role) {
		return nil, ErrCannotAssignRole
	}

	if _, err := s.accountRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	account := &models.Account{Email: email}
	profile := &models.Profile{
		Email:      email,
		Role:       input.Role,
		Department: input.Department,
	}
	if err := s.accountRepo.CreateWithProfile(ctx, account, profile); err != nil {
		return nil, mapCreateAccountError(err)
	}
	s.cache.Invalidate(cache.EntityProfiles)

	token, expiresAt, err := s.invites.Issue(account.ID, email)
	if err != nil {
		return nil, err
	}

	slog.Info("user invited", "actor_id", actor.ID, "user_id", profile.ID, "role", profile.Role)
	return &InviteResult{Profile: profile, Token: token, ExpiresAt: expiresAt}, nil
}

// UpdateUserInput holds the optional profile changes.
type UpdateUserInput struct {
	Role       *models.Role
	Department *models.Department
}

// UpdateUser changes role and department. The actor must be able to manage
// both the target's current role and the role being assigned.
func (s *UserService) UpdateUser(ctx context.Context, actor *models.Profile, id uuid.UUID, input UpdateUserInput) (*models.Profile, error) {
	profile, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.CanManage(actor.Role, profile.Role) {
		return nil, ErrCannotManageUser
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if !models.CanManage(actor.Role, *input.Role) {
			return nil, ErrCannotAssignRole
		}
		profile.Role = *input.Role
	}
	if input.Department != nil {
		if _, ok := models.ParseDepartment(string(*input.Department)); !ok {
			return nil, ErrInvalidDepartment
		}
		profile.Department = *input.Department
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	// Tasks and projects embed the assignee and creator profiles.
	s.cache.Invalidate(
		cache.EntityProfiles,
		cache.EntityProjectMembers,
		cache.EntityProjects,
		cache.EntityTasks,
		cache.EntityDashboard,
	)

	return profile, nil
}

// DeleteUser removes the profile and then the account.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.Profile, id uuid.UUID) error {
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}

	profile, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanManage(actor.Role, profile.Role) {
		return ErrCannotManageUser
	}

	if err := s.accountRepo.DeleteWithProfile(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case repository.IsForeignKeyViolation(err):
			return ErrUserInUse
		default:
			return fmt.Errorf("failed to delete user: %w", err)
		}
	}
	s.cache.Invalidate(
		cache.EntityProfiles,
		cache.EntityProjectMembers,
		cache.EntityProjects,
		cache.EntityTasks,
		cache.EntityTimeEntries,
		cache.EntityDashboard,
	)

	slog.Info("user deleted", "actor_id", actor.ID, "user_id", id)
	return nil
}
