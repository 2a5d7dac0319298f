package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/cache"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientNameRequired = errors.New("client name is required")
	ErrClientInUse        = errors.New("client is referenced by projects")
)

// ClientService provides CRUD for studio clients.
type ClientService struct {
	clientRepo repository.ClientRepository
	cache      *cache.QueryCache
}

func NewClientService(clientRepo repository.ClientRepository, queryCache *cache.QueryCache) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		cache:      queryCache,
	}
}

// ClientInput carries client fields. Nil pointers are left unchanged on update
// and an empty string clears an optional field.
type ClientInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Website *string
	Notes   *string
}

type clientFilter struct {
	Search string `json:"search"`
}

func (s *ClientService) ListClients(ctx context.Context, search string) ([]models.Client, error) {
	search = strings.TrimSpace(search)
	clients, err := cache.Fetch(s.cache, cache.EntityClients, clientFilter{Search: search}, func() ([]models.Client, error) {
		return s.clientRepo.List(ctx, search)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (*models.Client, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, ErrClientNameRequired
	}

	client := &models.Client{}
	applyClientInput(client, input)

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.cache.Invalidate(cache.EntityClients)

	return client, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input ClientInput) (*models.Client, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrClientNameRequired
	}

	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClientInput(client, input)

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	// Project lists embed the client name.
	s.cache.Invalidate(cache.EntityClients, cache.EntityProjects)

	return client, nil
}

// DeleteClient refuses to orphan projects: a referenced client is kept and
// ErrClientInUse returned.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrClientNotFound
		case errors.Is(err, repository.ErrClientInUse):
			return ErrClientInUse
		default:
			return fmt.Errorf("failed to delete client: %w", err)
		}
	}
	s.cache.Invalidate(cache.EntityClients)
	return nil
}

func applyClientInput(client *models.Client, input ClientInput) {
	if input.Name != nil {
		client.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		client.Email = optionalString(*input.Email)
	}
	if input.Phone != nil {
		client.Phone = optionalString(*input.Phone)
	}
	if input.Website != nil {
		client.Website = optionalString(*input.Website)
	}
	if input.Notes != nil {
		client.Notes = optionalString(*input.Notes)
	}
}

// optionalString maps blank input to NULL.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
