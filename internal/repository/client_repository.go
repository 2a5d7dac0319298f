package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/database"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormClientRepository is a GORM implementation of ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *GormClientRepository) List(ctx context.Context, search string) ([]models.Client, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{})

	if search != "" {
		pattern := database.ContainsFold(search)
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ? OR LOWER(COALESCE(website, '')) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var clients []models.Client
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *GormClientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete checks for referencing projects inside the transaction and relies on
// the RESTRICT foreign key for writers that race the check.
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projects int64
		if err := tx.Model(&models.Project{}).Where("client_id = ?", id).Count(&projects).Error; err != nil {
			return err
		}
		if projects > 0 {
			return ErrClientInUse
		}

		result := tx.Where("id = ?", id).Delete(&models.Client{})
		if result.Error != nil {
			if IsForeignKeyViolation(result.Error) {
				return ErrClientInUse
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
