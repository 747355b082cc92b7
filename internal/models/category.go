package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category represents income/expense category. A category's type must match
// the type of every transaction that references it; transfers never carry a
// category.
type Category struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:64;not null"`
	Type      string `gorm:"size:16;index;not null"` // INCOME / EXPENSE
	Icon      string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cat *Category) BeforeCreate(tx *gorm.DB) error {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	return nil
}
