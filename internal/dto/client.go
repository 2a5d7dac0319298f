package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

// ClientDTO represents a studio client in API responses
type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Website   *string   `json:"website"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientSummaryDTO is the short form embedded in projects
type ClientSummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func ToClientDTO(client models.Client) ClientDTO {
	return ClientDTO{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Website:   client.Website,
		Notes:     client.Notes,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

func ToClientDTOs(clients []models.Client) []ClientDTO {
	items := make([]ClientDTO, len(clients))
	for i, client := range clients {
		items[i] = ToClientDTO(client)
	}
	return items
}
