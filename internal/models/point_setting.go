package models

import "time"

// PointSetting is one row of the loyalty configuration key-value store.
type PointSetting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     int       `json:"value"`
	TextValue *string   `json:"text_value"`
	UpdatedAt time.Time `json:"updated_at"`
}
