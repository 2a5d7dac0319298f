package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

// UserDTO represents a profile in API responses
type UserDTO struct {
	ID         uuid.UUID         `json:"id"`
	Email      string            `json:"email"`
	Role       models.Role       `json:"role"`
	Department models.Department `json:"department"`
	CreatedAt  time.Time         `json:"created_at"`
}

// UserSummaryDTO is the short form embedded in other resources
type UserSummaryDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// InviteDTO is returned when a user is invited
type InviteDTO struct {
	User        UserDTO   `json:"user"`
	InviteToken string    `json:"invite_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func ToUserDTO(profile models.Profile) UserDTO {
	return UserDTO{
		ID:         profile.ID,
		Email:      profile.Email,
		Role:       profile.Role,
		Department: profile.Department,
		CreatedAt:  profile.CreatedAt,
	}
}

// toUserSummary returns nil when the relation was not preloaded
func toUserSummary(profile *models.Profile) *UserSummaryDTO {
	if profile == nil || profile.ID == uuid.Nil {
		return nil
	}
	return &UserSummaryDTO{
		ID:    profile.ID,
		Email: profile.Email,
	}
}

// ToUserListResponse converts a page of profiles to UserListResponse
func ToUserListResponse(profiles []models.Profile, page, pageSize int, totalCount int64) UserListResponse {
	items := make([]UserDTO, len(profiles))
	for i, profile := range profiles {
		items[i] = ToUserDTO(profile)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return UserListResponse{
		Users:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
