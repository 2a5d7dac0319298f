package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/cache"
	"github.com/yukikurage/studio-manager-api/internal/database"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	cache *cache.QueryCache

	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	clients  repository.ClientRepository
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	entries  repository.TimeEntryRepository

	invites   *InviteIssuer
	auth      *AuthService
	users     *UserService
	clientSvc *ClientService
	projSvc   *ProjectService
	taskSvc   *TaskService
	timeSvc   *TimeService
	dashSvc   *DashboardService
}

// newTestEnv wires every service against a fresh in-memory database. The
// query cache is live so tests also cover invalidation.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	invites, err := NewInviteIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		cache:    cache.New(time.Minute),
		accounts: repository.NewAccountRepository(db),
		profiles: repository.NewProfileRepository(db),
		clients:  repository.NewClientRepository(db),
		projects: repository.NewProjectRepository(db),
		tasks:    repository.NewTaskRepository(db),
		entries:  repository.NewTimeEntryRepository(db),
		invites:  invites,
	}

	env.auth = NewAuthService(env.accounts, env.profiles, invites)
	env.users = NewUserService(env.accounts, env.profiles, invites, env.cache)
	env.clientSvc = NewClientService(env.clients, env.cache)
	env.projSvc = NewProjectService(env.projects, env.clients, env.profiles, env.cache)
	env.taskSvc = NewTaskService(env.tasks, env.profiles, env.projSvc, nil, env.cache)
	env.timeSvc = NewTimeService(env.entries, env.tasks, env.projSvc, env.cache)
	env.dashSvc = NewDashboardService(env.projects, env.tasks, env.entries, env.cache)

	return env
}

func (env *testEnv) profile(t *testing.T, email string, role models.Role) *models.Profile {
	t.Helper()

	account := &models.Account{Email: email, PasswordHash: "hashed"}
	profile := &models.Profile{Role: role, Department: models.DepartmentDeveloper}
	require.NoError(t, env.accounts.CreateWithProfile(context.Background(), account, profile))
	return profile
}

func (env *testEnv) project(t *testing.T, actor *models.Profile, name string) *models.Project {
	t.Helper()

	project, err := env.projSvc.CreateProject(context.Background(), actor, ProjectInput{Name: &name})
	require.NoError(t, err)
	return project
}

func (env *testEnv) task(t *testing.T, actor *models.Profile, project *models.Project, title string) *models.Task {
	t.Helper()

	task, err := env.taskSvc.CreateTask(context.Background(), actor, TaskInput{
		ProjectID: project.ID,
		Title:     &title,
	})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}
