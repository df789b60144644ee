package model

import "time"

// BaseModel holds the audit fields shared by stored records.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
