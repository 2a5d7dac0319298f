package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
)

func TestUserService_InviteRespectsCapabilities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.profile(t, "manager@studio.test", models.RoleManager)
	employee := env.profile(t, "employee@studio.test", models.RoleEmployee)

	_, err := env.users.InviteUser(ctx, manager, InviteUserInput{Email: "a@studio.test", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrCannotAssignRole)

	_, err = env.users.InviteUser(ctx, manager, InviteUserInput{Email: "m@studio.test", Role: models.RoleManager})
	assert.ErrorIs(t, err, ErrCannotAssignRole)

	_, err = env.users.InviteUser(ctx, employee, InviteUserInput{Email: "e@studio.test", Role: models.RoleIntern})
	assert.ErrorIs(t, err, ErrCannotAssignRole)

	result, err := env.users.InviteUser(ctx, manager, InviteUserInput{
		Email:      "designer@studio.test",
		Department: models.DepartmentDesigner,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, result.Profile.Role)
	assert.Equal(t, models.DepartmentDesigner, result.Profile.Department)
	assert.NotEmpty(t, result.Token)

	_, err = env.users.InviteUser(ctx, manager, InviteUserInput{Email: "designer@studio.test"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_ListSeesNewInvites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)

	filter := repository.ProfileFilter{Page: 1, PageSize: 20}
	profiles, total, err := env.users.ListUsers(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, int64(1), total)

	_, err = env.users.InviteUser(ctx, admin, InviteUserInput{Email: "second@studio.test"})
	require.NoError(t, err)

	// The cached first page must have been invalidated.
	profiles, total, err = env.users.ListUsers(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, int64(2), total)

	designer := models.DepartmentDesigner
	profiles, _, err = env.users.ListUsers(ctx, repository.ProfileFilter{Department: &designer, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestUserService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)
	manager := env.profile(t, "manager@studio.test", models.RoleManager)
	intern := env.profile(t, "intern@studio.test", models.RoleIntern)

	_, err := env.users.UpdateUser(ctx, manager, admin.ID, UpdateUserInput{Department: ptr(models.DepartmentDesigner)})
	assert.ErrorIs(t, err, ErrCannotManageUser)

	_, err = env.users.UpdateUser(ctx, manager, intern.ID, UpdateUserInput{Role: ptr(models.RoleManager)})
	assert.ErrorIs(t, err, ErrCannotAssignRole)

	_, err = env.users.UpdateUser(ctx, admin, intern.ID, UpdateUserInput{Role: ptr(models.Role("Owner"))})
	assert.ErrorIs(t, err, ErrInvalidRole)

	updated, err := env.users.UpdateUser(ctx, manager, intern.ID, UpdateUserInput{
		Role:       ptr(models.RoleEmployee),
		Department: ptr(models.DepartmentDesigner),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, updated.Role)
	assert.Equal(t, models.DepartmentDesigner, updated.Department)

	promoted, err := env.users.UpdateUser(ctx, admin, manager.ID, UpdateUserInput{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)
	manager := env.profile(t, "manager@studio.test", models.RoleManager)
	employee := env.profile(t, "employee@studio.test", models.RoleEmployee)

	assert.ErrorIs(t, env.users.DeleteUser(ctx, admin, admin.ID), ErrCannotDeleteSelf)
	assert.ErrorIs(t, env.users.DeleteUser(ctx, manager, admin.ID), ErrCannotManageUser)

	require.NoError(t, env.users.DeleteUser(ctx, manager, employee.ID))
	_, err := env.users.GetUser(ctx, employee.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_DeleteUserClearsCachedAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)
	employee := env.profile(t, "employee@studio.test", models.RoleEmployee)
	project := env.project(t, admin, "Redesign")
	task := env.task(t, admin, project, "Draft logo")

	_, err := env.taskSvc.UpdateTask(ctx, task.ID, TaskInput{AssigneeID: &employee.ID})
	require.NoError(t, err)

	input := ListTasksInput{ProjectID: &project.ID}
	tasks, err := env.taskSvc.ListTasks(ctx, admin, input)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Assignee)
	assert.Equal(t, employee.ID, tasks[0].Assignee.ID)

	require.NoError(t, env.users.DeleteUser(ctx, admin, employee.ID))

	tasks, err = env.taskSvc.ListTasks(ctx, admin, input)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].AssigneeID)
	assert.Nil(t, tasks[0].Assignee)
}

func TestUserService_UpdateUserRefreshesCachedAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)
	employee := env.profile(t, "employee@studio.test", models.RoleEmployee)
	project := env.project(t, admin, "Redesign")
	task := env.task(t, admin, project, "Draft logo")

	_, err := env.taskSvc.UpdateTask(ctx, task.ID, TaskInput{AssigneeID: &employee.ID})
	require.NoError(t, err)

	input := ListTasksInput{ProjectID: &project.ID}
	_, err = env.taskSvc.ListTasks(ctx, admin, input)
	require.NoError(t, err)

	_, err = env.users.UpdateUser(ctx, admin, employee.ID, UpdateUserInput{Role: ptr(models.RoleManager)})
	require.NoError(t, err)

	tasks, err := env.taskSvc.ListTasks(ctx, admin, input)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Assignee)
	assert.Equal(t, models.RoleManager, tasks[0].Assignee.Role)
}
