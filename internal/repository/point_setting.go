package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/gemmarket/internal/models"
)

// PointSettingRepository is the key-value store of loyalty settings.
type PointSettingRepository struct {
	db *gorm.DB
}

// NewPointSettingRepository constructs PointSettingRepository.
func NewPointSettingRepository(db *gorm.DB) *PointSettingRepository {
	return &PointSettingRepository{db: db}
}

// Get returns the setting stored under key, or nil when it was never saved.
func (r *PointSettingRepository) Get(ctx context.Context, key string) (*models.PointSetting, error) {
	var setting models.PointSetting
	err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert writes one setting.
func (r *PointSettingRepository) Upsert(ctx context.Context, key string, value int, text *string) error {
	setting := models.PointSetting{Key: key, Value: value, TextValue: text, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "text_value", "updated_at"}),
	}).Create(&setting).Error
}
