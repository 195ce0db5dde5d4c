package models

import "time"

// User represents a registered account holder
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"user@example.com"`
	Name      string    `json:"name" db:"name" example:"Sara Ahmadi"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
