package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/database"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts the project and the creator membership in one transaction.
// A project table missing a newer column is migrated and the insert retried.
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project, creator *models.ProjectMember) error {
	db := r.db.WithContext(ctx)
	return WithSchemaRetry(db, &models.Project{}, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(project).Error; err != nil {
				return err
			}

			if creator == nil {
				return nil
			}
			creator.ProjectID = project.ID
			return tx.Create(creator).Error
		})
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *GormProjectRepository) filtered(ctx context.Context, filter ProjectFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Project{})

	if filter.Search != "" {
		pattern := database.ContainsFold(filter.Search)
		clientMatch := r.db.Model(&models.Client{}).
			Select("1").
			Where("clients.id = projects.client_id").
			Where("LOWER(clients.name) LIKE ?", pattern)
		query = query.Where("LOWER(projects.name) LIKE ? OR EXISTS (?)", pattern, clientMatch)
	}
	if filter.Type != nil {
		query = query.Where("projects.type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if filter.ExcludeStatus != nil {
		query = query.Where("projects.status <> ?", *filter.ExcludeStatus)
	}
	if filter.MemberID != nil {
		memberSubQuery := r.db.Model(&models.ProjectMember{}).
			Select("1").
			Where("project_members.project_id = projects.id").
			Where("project_members.user_id = ?", *filter.MemberID)
		query = query.Where("EXISTS (?)", memberSubQuery)
	}

	return query
}

// List retrieves projects newest first with their client preloaded
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	query := r.filtered(ctx, filter).Preload("Client").Order("projects.created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *GormProjectRepository) Count(ctx context.Context, filter ProjectFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Update saves every column. A project table missing a newer column is
// migrated and the update retried.
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	db := r.db.WithContext(ctx)
	return WithSchemaRetry(db, &models.Project{}, func() error {
		return db.Omit("Client", "Creator", "Members").Save(project).Error
	})
}

// Delete deletes the project and all related data in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TimeEntry{}).
			Where("project_id = ?", id).
			Updates(map[string]any{"project_id": nil, "task_id": nil}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormProjectRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *GormProjectRepository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormProjectRepository) FindMember(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project with their profiles
func (r *GormProjectRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *GormProjectRepository) CountDistinctMembers(ctx context.Context, memberID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectMember{})

	if memberID != nil {
		visible := r.db.Model(&models.ProjectMember{}).
			Select("project_id").
			Where("user_id = ?", *memberID)
		query = query.Where("project_id IN (?)", visible)
	}

	var total int64
	if err := query.Distinct("user_id").Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
