package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

// clock returns a now func that yields the given instants in turn and then
// keeps returning the last one.
func clock(instants ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := instants[i]
		if i < len(instants)-1 {
			i++
		}
		return t
	}
}

func TestTimeService_StartAndStop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.profile(t, "dev@studio.test", models.RoleEmployee)

	start := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	env.timeSvc.now = clock(start, start.Add(95*time.Minute+20*time.Second))

	active, err := env.timeSvc.Active(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	entry, err := env.timeSvc.Start(ctx, user, StartInput{})
	require.NoError(t, err)
	assert.True(t, entry.IsActive)
	assert.Equal(t, constants.DefaultTimeEntryDescription, entry.Description)
	assert.Nil(t, entry.ProjectID)

	active, err = env.timeSvc.Active(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, entry.ID, active.ID)

	stopped, err := env.timeSvc.Stop(ctx, user.ID, entry.ID)
	require.NoError(t, err)
	assert.False(t, stopped.IsActive)
	require.NotNil(t, stopped.EndTime)
	require.NotNil(t, stopped.DurationMinutes)
	assert.Equal(t, 95, *stopped.DurationMinutes)

	_, err = env.timeSvc.Stop(ctx, user.ID, entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotActive)

	active, err = env.timeSvc.Active(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestTimeService_OneRunningEntryPerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.profile(t, "dev@studio.test", models.RoleEmployee)
	other := env.profile(t, "other@studio.test", models.RoleEmployee)

	_, err := env.timeSvc.Start(ctx, user, StartInput{Description: "Standup"})
	require.NoError(t, err)

	_, err = env.timeSvc.Start(ctx, user, StartInput{Description: "Second"})
	assert.ErrorIs(t, err, ErrActiveEntryExists)

	var running int64
	require.NoError(t, env.db.Model(&models.TimeEntry{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&running).Error)
	assert.Equal(t, int64(1), running)

	// Timers are per user.
	_, err = env.timeSvc.Start(ctx, other, StartInput{})
	assert.NoError(t, err)
}

func TestTimeService_StopForeignEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.profile(t, "owner@studio.test", models.RoleEmployee)
	other := env.profile(t, "other@studio.test", models.RoleAdmin)

	entry, err := env.timeSvc.Start(ctx, owner, StartInput{})
	require.NoError(t, err)

	_, err = env.timeSvc.Stop(ctx, other.ID, entry.ID)
	assert.ErrorIs(t, err, ErrTimeEntryNotFound)

	_, err = env.timeSvc.Stop(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTimeEntryNotFound)
}

func TestTimeService_StartOnTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)
	intern := env.profile(t, "intern@studio.test", models.RoleIntern)
	project := env.project(t, admin, "Redesign")
	other := env.project(t, admin, "Other")
	task := env.task(t, admin, project, "Draft logo")

	entry, err := env.timeSvc.Start(ctx, admin, StartInput{TaskID: &task.ID, Description: "  Sketching "})
	require.NoError(t, err)
	require.NotNil(t, entry.ProjectID)
	assert.Equal(t, project.ID, *entry.ProjectID)
	assert.Equal(t, "Sketching", entry.Description)
	require.NotNil(t, entry.Task)
	assert.Equal(t, "Draft logo", entry.Task.Title)

	_, err = env.timeSvc.Start(ctx, intern, StartInput{ProjectID: &other.ID, TaskID: &task.ID})
	assert.ErrorIs(t, err, ErrTaskNotInProject)

	_, err = env.timeSvc.Start(ctx, intern, StartInput{ProjectID: &project.ID})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = env.timeSvc.Start(ctx, intern, StartInput{TaskID: ptr(uuid.New())})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTimeService_ListPaginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.profile(t, "dev@studio.test", models.RoleEmployee)

	base := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		startAt := base.Add(time.Duration(i) * time.Hour)
		env.timeSvc.now = clock(startAt, startAt.Add(30*time.Minute))
		entry, err := env.timeSvc.Start(ctx, user, StartInput{})
		require.NoError(t, err)
		_, err = env.timeSvc.Stop(ctx, user.ID, entry.ID)
		require.NoError(t, err)
	}

	entries, total, err := env.timeSvc.List(ctx, user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 2)

	entries, _, err = env.timeSvc.List(ctx, user.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
