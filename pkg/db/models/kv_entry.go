package models

import "time"

// KVEntry is one durable key of the storefront's key-value store.
type KVEntry struct {
	Key       string     `gorm:"column:key;primaryKey;size:255"`
	Value     []byte     `gorm:"column:value;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index:kv_entries_expires_at_idx"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table created by the kv_entries migration.
func (KVEntry) TableName() string {
	return "kv_entries"
}

// Expired reports whether the entry is past its TTL at now.
func (e KVEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}
