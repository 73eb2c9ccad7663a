package models

import (
	"time"
)

type LoginTracking struct {
	Base
	UserID    uint      `gorm:"index" json:"userId"`
	IPAddress string    `json:"ipAddress"`
	Device    string    `json:"device"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}
