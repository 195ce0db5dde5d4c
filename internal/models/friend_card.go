package models

import "time"

// FriendCard is a third-party payee card. It carries no balance.
type FriendCard struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	CardTitle   string    `json:"card_title" db:"card_title"`
	CardNumber  string    `json:"card_number" db:"card_number"`
	ShebaNumber string    `json:"sheba_number" db:"sheba_number"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
