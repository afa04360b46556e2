package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/taskledger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is a GORM implementation of RecordStore. Each collection is one
// row of the collections table holding the same indented JSON document the
// FileStore writes.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new RecordStore backed by db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, collection string) ([]Record, error) {
	var rows []models.CollectionRow
	if err := s.db.WithContext(ctx).
		Where("name = ?", collection).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	records, err := decodeCollection([]byte(rows[0].Body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}
	return records, nil
}

func (s *GormStore) Save(ctx context.Context, collection string, records []Record) error {
	body, err := encodeCollection(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	row := models.CollectionRow{
		Name: collection,
		Body: string(body),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save collection %s: %w", collection, err)
	}
	return nil
}

func (s *GormStore) Drop(ctx context.Context, collection string) error {
	if err := s.db.WithContext(ctx).
		Where("name = ?", collection).
		Delete(&models.CollectionRow{}).Error; err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", collection, err)
	}
	return nil
}
