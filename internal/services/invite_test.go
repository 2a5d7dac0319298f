package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewInviteIssuer("secret", time.Hour)
	require.NoError(t, err)

	accountID := uuid.New()
	token, expiresAt, err := issuer.Issue(accountID, "invitee@studio.test")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	got, claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)
	assert.Equal(t, "invitee@studio.test", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestInviteIssuer_RejectsExpiredToken(t *testing.T) {
	issuer, err := NewInviteIssuer("secret", time.Hour)
	require.NoError(t, err)

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }
	token, _, err := issuer.Issue(uuid.New(), "late@studio.test")
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, _, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidInviteToken)
}

func TestInviteIssuer_RejectsForeignSignature(t *testing.T) {
	issuer, err := NewInviteIssuer("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewInviteIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	token, _, err := other.Issue(uuid.New(), "x@studio.test")
	require.NoError(t, err)

	_, _, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidInviteToken)
}

func TestNewInviteIssuer_RequiresSecret(t *testing.T) {
	_, err := NewInviteIssuer("", time.Hour)
	assert.Error(t, err)
}
