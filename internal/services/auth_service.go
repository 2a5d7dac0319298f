package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrPasswordTooShort      = errors.New("password too short")
	ErrUserNotFound          = errors.New("user not found")
	ErrInviteAlreadyUsed     = errors.New("invite has already been accepted")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateUser    = errors.New("failed to create user")
	ErrFailedToCreateProfile = errors.New("failed to create profile")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	accountRepo repository.AccountRepository
	profileRepo repository.ProfileRepository
	invites     *InviteIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(accountRepo repository.AccountRepository, profileRepo repository.ProfileRepository, invites *InviteIssuer) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		invites:     invites,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Password string
}

// normalizeEmail lowercases and validates an address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

// Signup creates an account together with an Employee/developer profile.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.Profile, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: hashedPassword,
	}
	profile := &models.Profile{
		Email:      email,
		Role:       models.RoleEmployee,
		Department: models.DepartmentDeveloper,
	}

	if err := s.accountRepo.CreateWithProfile(ctx, account, profile); err != nil {
		return nil, mapCreateAccountError(err)
	}

	return profile, nil
}

func mapCreateAccountError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCreateAccount) && repository.IsDuplicateKey(err):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrCreateAccount):
		return ErrFailedToCreateUser
	case errors.Is(err, repository.ErrCreateProfile):
		return ErrFailedToCreateProfile
	default:
		return fmt.Errorf("failed to complete signup: %w", err)
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated account. Invited
// accounts have no password until the invite is accepted and cannot log in.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *AuthService) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return account, nil
}

// ResolveProfile returns the profile of an authenticated account. An account
// without a profile gets one provisioned as Employee/developer.
func (s *AuthService) ResolveProfile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, accountID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	profile = &models.Profile{
		ID:         account.ID,
		Email:      account.Email,
		Role:       models.RoleEmployee,
		Department: models.DepartmentDeveloper,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Another request provisioned it first.
		if repository.IsDuplicateKey(err) {
			return s.profileRepo.FindByID(ctx, accountID)
		}
		return nil, fmt.Errorf("failed to provision profile: %w", err)
	}

	slog.Info("provisioned missing profile", "user_id", account.ID, "email", account.Email)
	return profile, nil
}

// AcceptInviteInput carries the invite token and the password to set.
type AcceptInviteInput struct {
	Token    string
	Password string
}

// AcceptInvite sets the password of an invited account.
func (s *AuthService) AcceptInvite(ctx context.Context, input AcceptInviteInput) (*models.Account, error) {
	accountID, _, err := s.invites.Verify(input.Token)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.PasswordHash != "" {
		return nil, ErrInviteAlreadyUsed
	}

	if err := s.accountRepo.UpdatePasswordHash(ctx, account.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to set password: %w", err)
	}
	account.PasswordHash = hashedPassword

	return account, nil
}

// EnsureAdmin makes sure an Admin account exists for email. An existing
// account keeps its password and has its profile promoted to Admin.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	account, err := s.accountRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		profile, err := s.ResolveProfile(ctx, account.ID)
		if err != nil {
			return err
		}
		if profile.Role == models.RoleAdmin {
			return nil
		}
		profile.Role = models.RoleAdmin
		if err := s.profileRepo.Update(ctx, profile); err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
		slog.Info("promoted bootstrap admin", "email", email)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	account = &models.Account{Email: email, PasswordHash: hashedPassword}
	profile := &models.Profile{Email: email, Role: models.RoleAdmin, Department: models.DepartmentDeveloper}
	if err := s.accountRepo.CreateWithProfile(ctx, account, profile); err != nil {
		return mapCreateAccountError(err)
	}

	slog.Info("created bootstrap admin", "email", email)
	return nil
}
