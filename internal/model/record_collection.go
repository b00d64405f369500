package model

import "time"

// RecordCollection one stored collection: a whole JSON array under a key
type RecordCollection struct {
	CollectionKey string    `gorm:"primaryKey;column:collection_key;type:varchar(64)" json:"collection_key"`
	Payload       string    `gorm:"type:jsonb;not null;default:'[]'"                 json:"payload"`
	Version       int       `gorm:"not null;default:1"                                json:"version"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"updated_at"`
}

// TableName maps the model to its table.
func (RecordCollection) TableName() string {
	return "record_collections"
}
