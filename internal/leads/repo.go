package leads

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

// Repository handles lead persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, lead *models.Lead) error {
	if lead == nil {
		return fmt.Errorf("lead is required")
	}
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByIDForUpdate loads a lead and, on Postgres, locks the row until the
// surrounding transaction ends so concurrent appends are serialized.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id string) (*models.Lead, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if r.db.Dialector != nil && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var lead models.Lead
	if err := q.First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// List returns every lead, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Lead, error) {
	var rows []models.Lead
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListQuotedBefore returns QUOTED leads created before cutoff, oldest first.
func (r *Repository) ListQuotedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Lead, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.LeadStatusQuoted, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Lead
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).Count(&count).Error
	return count, err
}

// UpdateThread persists a new message list and status for the lead.
func (r *Repository) UpdateThread(ctx context.Context, lead *models.Lead) error {
	if lead == nil {
		return fmt.Errorf("lead is required")
	}
	lead.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", lead.ID).
		Updates(map[string]any{
			"messages":   lead.Messages,
			"status":     lead.Status,
			"updated_at": lead.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}
