package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

func TestClientService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.clientSvc.CreateClient(ctx, ClientInput{Name: ptr("   ")})
	assert.ErrorIs(t, err, ErrClientNameRequired)

	client, err := env.clientSvc.CreateClient(ctx, ClientInput{
		Name:    ptr("Acme"),
		Email:   ptr("hello@acme.test"),
		Website: ptr("acme.test"),
	})
	require.NoError(t, err)

	clients, err := env.clientSvc.ListClients(ctx, "ACME.TEST")
	require.NoError(t, err)
	require.Len(t, clients, 1)

	// Blank clears an optional field, nil leaves it alone.
	updated, err := env.clientSvc.UpdateClient(ctx, client.ID, ClientInput{Email: ptr(""), Phone: ptr("+1 555 0100")})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "+1 555 0100", *updated.Phone)
	require.NotNil(t, updated.Website)
	assert.Equal(t, "Acme", updated.Name)

	clients, err = env.clientSvc.ListClients(ctx, "hello@")
	require.NoError(t, err)
	assert.Empty(t, clients)

	require.NoError(t, env.clientSvc.DeleteClient(ctx, client.ID))
	_, err = env.clientSvc.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.ErrorIs(t, env.clientSvc.DeleteClient(ctx, client.ID), ErrClientNotFound)
}

func TestClientService_DeleteReferencedClientKeepsProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.profile(t, "admin@studio.test", models.RoleAdmin)

	client, err := env.clientSvc.CreateClient(ctx, ClientInput{Name: ptr("Acme")})
	require.NoError(t, err)
	project, err := env.projSvc.CreateProject(ctx, admin, ProjectInput{Name: ptr("Redesign"), ClientID: &client.ID})
	require.NoError(t, err)

	err = env.clientSvc.DeleteClient(ctx, client.ID)
	assert.ErrorIs(t, err, ErrClientInUse)

	kept, err := env.projSvc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, kept.ClientID)
	assert.Equal(t, client.ID, *kept.ClientID)

	_, err = env.clientSvc.GetClient(ctx, client.ID)
	assert.NoError(t, err)
}
