package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

func TestProjectService_CreateMakesCreatorAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	employee := env.profile(t, "employee@studio.test", models.RoleEmployee)

	project := env.project(t, employee, "Brand book")
	assert.Equal(t, models.ProjectTypeClient, project.Type)
	assert.Equal(t, models.ProjectStatusPlanning, project.Status)

	members, err := env.projSvc.ListMembers(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, employee.ID, members[0].UserID)
	assert.Equal(t, models.ProjectRoleAdmin, members[0].Role)

	ok, err := env.projSvc.CanManage(ctx, employee, project.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProjectService_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)

	_, err := env.projSvc.CreateProject(ctx, admin, ProjectInput{})
	assert.ErrorIs(t, err, ErrProjectNameRequired)

	_, err = env.projSvc.CreateProject(ctx, admin, ProjectInput{Name: ptr("X"), Progress: ptr(101)})
	assert.ErrorIs(t, err, ErrInvalidProgress)

	_, err = env.projSvc.CreateProject(ctx, admin, ProjectInput{Name: ptr("X"), Type: ptr(models.ProjectType("Side"))})
	assert.ErrorIs(t, err, ErrInvalidProjectType)

	missing := uuid.New()
	_, err = env.projSvc.CreateProject(ctx, admin, ProjectInput{Name: ptr("X"), ClientID: &missing})
	assert.ErrorIs(t, err, ErrInvalidClient)

	project, err := env.projSvc.CreateProject(ctx, admin, ProjectInput{
		Name:   ptr("Site"),
		Type:   ptr(models.ProjectType("internal")),
		Status: ptr(models.ProjectStatus("inprogress")),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectTypeInternal, project.Type)
	assert.Equal(t, models.ProjectStatusInProgress, project.Status)
}

func TestProjectService_VisibilityFollowsMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.profile(t, "manager@studio.test", models.RoleManager)
	employee := env.profile(t, "employee@studio.test", models.RoleEmployee)
	outsider := env.profile(t, "outsider@studio.test", models.RoleIntern)

	project := env.project(t, manager, "Redesign")

	assert.ErrorIs(t, env.projSvc.EnsureAccess(ctx, outsider, project.ID), ErrProjectNotFound)
	list, err := env.projSvc.ListProjects(ctx, outsider, ListProjectsInput{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = env.projSvc.AddMember(ctx, manager, project.ID, AddMemberInput{UserID: outsider.ID})
	require.NoError(t, err)

	assert.NoError(t, env.projSvc.EnsureAccess(ctx, outsider, project.ID))
	list, err = env.projSvc.ListProjects(ctx, outsider, ListProjectsInput{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Redesign", list[0].Name)

	// Managers see everything without membership.
	assert.NoError(t, env.projSvc.EnsureAccess(ctx, manager, project.ID))
	list, err = env.projSvc.ListProjects(ctx, employee, ListProjectsInput{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectService_MemberManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.profile(t, "owner@studio.test", models.RoleEmployee)
	member := env.profile(t, "member@studio.test", models.RoleEmployee)
	other := env.profile(t, "other@studio.test", models.RoleIntern)

	project := env.project(t, owner, "Campaign")

	_, err := env.projSvc.AddMember(ctx, owner, project.ID, AddMemberInput{UserID: member.ID, Role: "contributor"})
	require.NoError(t, err)

	_, err = env.projSvc.AddMember(ctx, owner, project.ID, AddMemberInput{UserID: member.ID})
	assert.ErrorIs(t, err, ErrAlreadyProjectMember)

	_, err = env.projSvc.AddMember(ctx, owner, project.ID, AddMemberInput{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.projSvc.AddMember(ctx, owner, project.ID, AddMemberInput{UserID: other.ID, Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidProjectRole)

	// Plain members cannot manage the project.
	_, err = env.projSvc.AddMember(ctx, member, project.ID, AddMemberInput{UserID: other.ID})
	assert.ErrorIs(t, err, ErrProjectPermissionDenied)
	assert.ErrorIs(t, env.projSvc.DeleteProject(ctx, member, project.ID), ErrProjectPermissionDenied)

	members, err := env.projSvc.ListMembers(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	require.NoError(t, env.projSvc.RemoveMember(ctx, owner, project.ID, member.ID))
	assert.ErrorIs(t, env.projSvc.RemoveMember(ctx, owner, project.ID, member.ID), ErrProjectMemberNotFound)

	members, err = env.projSvc.ListMembers(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestProjectService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)

	client, err := env.clientSvc.CreateClient(ctx, ClientInput{Name: ptr("Acme")})
	require.NoError(t, err)
	project := env.project(t, admin, "Redesign")
	env.task(t, admin, project, "Draft logo")

	updated, err := env.projSvc.UpdateProject(ctx, project.ID, ProjectInput{
		ClientID: &client.ID,
		Progress: ptr(40),
		Status:   ptr(models.ProjectStatusReview),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Client)
	assert.Equal(t, "Acme", updated.Client.Name)
	assert.Equal(t, 40, updated.Progress)
	assert.Equal(t, "Redesign", updated.Name)

	list, err := env.projSvc.ListProjects(ctx, admin, ListProjectsInput{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err = env.projSvc.UpdateProject(ctx, project.ID, ProjectInput{ClearClientID: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ClientID)

	require.NoError(t, env.projSvc.DeleteProject(ctx, admin, project.ID))
	_, err = env.projSvc.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	tasks, err := env.taskSvc.ListTasks(ctx, admin, ListTasksInput{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestProjectService_RenameReachesCachedTasksAndEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)
	project := env.project(t, admin, "Redesign")
	task := env.task(t, admin, project, "Draft logo")

	_, err := env.timeSvc.Start(ctx, admin, StartInput{TaskID: &task.ID})
	require.NoError(t, err)

	input := ListTasksInput{ProjectID: &project.ID}
	tasks, err := env.taskSvc.ListTasks(ctx, admin, input)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Project)
	assert.Equal(t, "Redesign", tasks[0].Project.Name)

	entries, _, err := env.timeSvc.List(ctx, admin.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = env.projSvc.UpdateProject(ctx, project.ID, ProjectInput{Name: ptr("Rebrand")})
	require.NoError(t, err)

	tasks, err = env.taskSvc.ListTasks(ctx, admin, input)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Project)
	assert.Equal(t, "Rebrand", tasks[0].Project.Name)

	entries, _, err = env.timeSvc.List(ctx, admin.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Project)
	assert.Equal(t, "Rebrand", entries[0].Project.Name)
}
