package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVRecord backs the postgres record store. Value holds the raw JSON document.
type KVRecord struct {
	Key       string         `gorm:"primaryKey;size:255" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}
