package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/database"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormTimeEntryRepository is a GORM implementation of TimeEntryRepository
type GormTimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// Start checks for a running entry and inserts the new one in a transaction.
// The partial unique index on (user_id) WHERE is_active catches the race the
// check cannot see.
func (r *GormTimeEntryRepository) Start(ctx context.Context, entry *models.TimeEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.TimeEntry{}).
			Where("user_id = ? AND is_active = ?", entry.UserID, true).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveEntryExists
		}

		entry.IsActive = true
		entry.EndTime = nil
		entry.DurationMinutes = nil
		return tx.Create(entry).Error
	})
	if err != nil && IsDuplicateKey(err) {
		return ErrActiveEntryExists
	}
	return err
}

func (r *GormTimeEntryRepository) Stop(ctx context.Context, id uuid.UUID, end time.Time, durationMinutes int) error {
	result := r.db.WithContext(ctx).Model(&models.TimeEntry{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{
			"end_time":         end,
			"duration_minutes": durationMinutes,
			"is_active":        false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotActive
	}
	return nil
}

func (r *GormTimeEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Task").
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *GormTimeEntryRepository) FindActive(ctx context.Context, userID uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Task").
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *GormTimeEntryRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.TimeEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TimeEntry{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.TimeEntry
	if err := query.Preload("Project").
		Preload("Task").
		Order("start_time DESC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SumMinutesSince adds up the recorded minutes of the user's stopped entries
// that started at or after since.
func (r *GormTimeEntryRepository) SumMinutesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.TimeEntry{}).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Where("user_id = ? AND start_time >= ? AND is_active = ?", userID, since, false).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
