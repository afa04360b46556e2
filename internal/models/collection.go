package models

import "time"

// CollectionRow backs the gorm record store: one row per named collection,
// Body holding the indented JSON array of its records.
type CollectionRow struct {
	Name      string `gorm:"primarykey;type:varchar(64)"`
	Body      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (CollectionRow) TableName() string {
	return "collections"
}
