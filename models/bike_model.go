package models

import (
	"time"

	"github.com/google/uuid"
)

// Bike is the equipment an appointment refers to. Inventory management
// lives in another service; this table only mirrors what appointments need.
type Bike struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID uuid.UUID `gorm:"not null" json:"owner_id"`
	Brand   string    `gorm:"size:100" json:"brand"`
	Model   string    `gorm:"size:100" json:"model"`
	Kind    string    `gorm:"size:50" json:"kind"`
	Notes   *string   `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
