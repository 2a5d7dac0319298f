package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	profile, err := env.auth.Signup(ctx, SignupInput{Email: "  Mia@Studio.test ", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "mia@studio.test", profile.Email)
	assert.Equal(t, models.RoleEmployee, profile.Role)
	assert.Equal(t, models.DepartmentDeveloper, profile.Department)

	account, err := env.auth.Login(ctx, LoginInput{Email: "mia@studio.test", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, account.ID)

	_, err = env.auth.Login(ctx, LoginInput{Email: "mia@studio.test", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginInput{Email: "nobody@studio.test", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SignupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, SignupInput{Email: "not-an-email", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = env.auth.Signup(ctx, SignupInput{Email: "short@studio.test", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = env.auth.Signup(ctx, SignupInput{Email: "dup@studio.test", Password: "supersecret"})
	require.NoError(t, err)
	_, err = env.auth.Signup(ctx, SignupInput{Email: "DUP@studio.test", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_ResolveProfileProvisionsMissingProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := &models.Account{Email: "legacy@studio.test", PasswordHash: "hashed"}
	require.NoError(t, env.db.Create(account).Error)

	profile, err := env.auth.ResolveProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, profile.ID)
	assert.Equal(t, models.RoleEmployee, profile.Role)
	assert.Equal(t, models.DepartmentDeveloper, profile.Department)

	again, err := env.auth.ResolveProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestAuthService_AcceptInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)

	invite, err := env.users.InviteUser(ctx, admin, InviteUserInput{Email: "new@studio.test", Role: models.RoleIntern})
	require.NoError(t, err)

	// No password until the invite is accepted.
	_, err = env.auth.Login(ctx, LoginInput{Email: "new@studio.test", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	account, err := env.auth.AcceptInvite(ctx, AcceptInviteInput{Token: invite.Token, Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, invite.Profile.ID, account.ID)

	_, err = env.auth.Login(ctx, LoginInput{Email: "new@studio.test", Password: "supersecret"})
	require.NoError(t, err)

	_, err = env.auth.AcceptInvite(ctx, AcceptInviteInput{Token: invite.Token, Password: "anothersecret"})
	assert.ErrorIs(t, err, ErrInviteAlreadyUsed)

	_, err = env.auth.AcceptInvite(ctx, AcceptInviteInput{Token: "garbage", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidInviteToken)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.auth.EnsureAdmin(ctx, "boss@studio.test", "supersecret"))
	account, err := env.auth.Login(ctx, LoginInput{Email: "boss@studio.test", Password: "supersecret"})
	require.NoError(t, err)
	profile, err := env.auth.ResolveProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, profile.Role)

	// Running again is a no-op.
	require.NoError(t, env.auth.EnsureAdmin(ctx, "boss@studio.test", "ignored-password"))

	existing := env.profile(t, "promote@studio.test", models.RoleEmployee)
	require.NoError(t, env.auth.EnsureAdmin(ctx, "promote@studio.test", "supersecret"))
	promoted, err := env.auth.ResolveProfile(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}
