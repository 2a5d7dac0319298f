package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/utils"
)

const (
	inviteIssuer  = "studio-manager"
	invitePurpose = "invite"
)

var ErrInvalidInviteToken = errors.New("invalid or expired invite token")

// InviteClaims are the claims of an invite token. Subject is the account ID.
type InviteClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// InviteIssuer signs and verifies HS256 invite tokens.
type InviteIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewInviteIssuer(secret string, ttl time.Duration) (*InviteIssuer, error) {
	if secret == "" {
		return nil, errors.New("invite secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &InviteIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for accountID and its expiry.
func (i *InviteIssuer) Issue(accountID uuid.UUID, email string) (string, time.Time, error) {
	tokenID, err := utils.GenerateTokenID()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token ID: %w", err)
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := InviteClaims{
		Email:   email,
		Purpose: invitePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ID:        tokenID,
			Issuer:    inviteIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign invite token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, expiry and purpose and returns the account ID.
func (i *InviteIssuer) Verify(tokenString string) (uuid.UUID, *InviteClaims, error) {
	claims := &InviteClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(inviteIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %v", ErrInvalidInviteToken, err)
	}
	if claims.Purpose != invitePurpose {
		return uuid.Nil, nil, ErrInvalidInviteToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, ErrInvalidInviteToken
	}
	return accountID, claims, nil
}
