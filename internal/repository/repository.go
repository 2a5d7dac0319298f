package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

var (
	// ErrStaleMove is returned when a task is no longer in the status a move
	// command expected.
	ErrStaleMove = errors.New("task repository: task status changed since the move was issued")
	// ErrActiveEntryExists is returned when a user already has a running timer.
	ErrActiveEntryExists = errors.New("time entry repository: user already has an active entry")
	// ErrEntryNotActive is returned when stopping an entry that is not running.
	ErrEntryNotActive = errors.New("time entry repository: entry is not active")
	// ErrClientInUse is returned when deleting a client that projects still reference.
	ErrClientInUse = errors.New("client repository: client is referenced by projects")
)

// AccountRepository defines the interface for account (auth identity) data access
type AccountRepository interface {
	// CreateWithProfile creates an account and its profile in one transaction.
	CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	// DeleteWithProfile removes the profile and then the account.
	DeleteWithProfile(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)

	// List retrieves profiles with filtering and pagination
	List(ctx context.Context, filter ProfileFilter) ([]models.Profile, int64, error)

	Update(ctx context.Context, profile *models.Profile) error
}

// ProfileFilter holds filtering options for listing profiles
type ProfileFilter struct {
	Search     string             `json:"search,omitempty"`
	Role       *models.Role       `json:"role,omitempty"`
	Department *models.Department `json:"department,omitempty"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)

	// List returns clients whose name, email or website contains search.
	List(ctx context.Context, search string) ([]models.Client, error)

	Update(ctx context.Context, client *models.Client) error

	// Delete fails with ErrClientInUse while a project references the client.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// Create creates a project and adds its creator as a project admin.
	Create(ctx context.Context, project *models.Project, creator *models.ProjectMember) error

	// FindByID finds a project by ID with optional preloading
	FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Project, error)

	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)

	Count(ctx context.Context, filter ProjectFilter) (int64, error)

	Update(ctx context.Context, project *models.Project) error

	// Delete removes the project with its tasks and members
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, member *models.ProjectMember) error

	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error

	FindMember(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error)

	ListMembers(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error)

	// CountDistinctMembers counts distinct users across projects; when
	// memberID is set only projects that user belongs to are considered.
	CountDistinctMembers(ctx context.Context, memberID *uuid.UUID) (int64, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	// Search matches the project name or its client's name.
	Search        string                `json:"search,omitempty"`
	Type          *models.ProjectType   `json:"type,omitempty"`
	Status        *models.ProjectStatus `json:"status,omitempty"`
	ExcludeStatus *models.ProjectStatus `json:"exclude_status,omitempty"`
	// MemberID restricts results to projects the user is a member of.
	MemberID *uuid.UUID `json:"member_id,omitempty"`
	Limit    int        `json:"limit,omitempty"`
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create assigns the next position in the project and inserts the task.
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Task, error)

	// List retrieves tasks ordered by position
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	Count(ctx context.Context, filter TaskFilter) (int64, error)

	Update(ctx context.Context, task *models.Task) error

	Delete(ctx context.Context, id uuid.UUID) error

	// MoveStatus changes the status of a task that is still in from and puts
	// it at the end of the project's ordering. It returns ErrStaleMove when
	// the task left from in the meantime.
	MoveStatus(ctx context.Context, projectID, taskID uuid.UUID, from, to models.TaskStatus) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID     *uuid.UUID         `json:"project_id,omitempty"`
	Status        *models.TaskStatus `json:"status,omitempty"`
	ExcludeStatus *models.TaskStatus `json:"exclude_status,omitempty"`
	AssigneeID    *uuid.UUID         `json:"assignee_id,omitempty"`
	// MemberID restricts results to tasks of projects the user is a member of.
	MemberID *uuid.UUID `json:"member_id,omitempty"`
}

// TimeEntryRepository defines the interface for time entry data access
type TimeEntryRepository interface {
	// Start inserts an active entry unless the user already has one.
	Start(ctx context.Context, entry *models.TimeEntry) error

	// Stop closes an active entry. It returns ErrEntryNotActive when the
	// entry was already stopped.
	Stop(ctx context.Context, id uuid.UUID, end time.Time, durationMinutes int) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error)

	FindActive(ctx context.Context, userID uuid.UUID) (*models.TimeEntry, error)

	// ListByUser lists entries newest first
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.TimeEntry, int64, error)

	SumMinutesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}
