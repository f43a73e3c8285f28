// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol represents one exchange-listed ticker in the symbol master.
// The universe of symbols is loaded once at process start and treated as
// read-only for the lifetime of the process.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"` // Exchange ticker (e.g., "AXISBANK")
	Name      string    `gorm:"size:255;not null"`            // Company name
	Exchange  string    `gorm:"size:16;not null;default:NSE"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
