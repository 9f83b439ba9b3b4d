package models

import (
	"time"
)

// LevelRecord is a stored level description
type LevelRecord struct {
	Name      string    `db:"name" json:"name"`
	Document  []byte    `db:"document" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

