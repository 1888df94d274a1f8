package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StorageSlot struct {
	Name      string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GormRepo struct {
	DB *gorm.DB
}

func NewGormRepo(ctx context.Context, db *gorm.DB) (*GormRepo, error) {
	if err := db.WithContext(ctx).AutoMigrate(&StorageSlot{}); err != nil {
		return nil, err
	}
	return &GormRepo{DB: db}, nil
}

func (r *GormRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var slot StorageSlot
	if err := r.DB.WithContext(ctx).Where("name = ?", key).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return slot.Value, true, nil
}

func (r *GormRepo) Set(ctx context.Context, key, value string) error {
	slot := StorageSlot{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}
