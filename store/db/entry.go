package db

import "time"

// Entry 键值表中的一行
type Entry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}
