package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card represents a bank card owned by one user. Balance is only written
// by the ledger service after the card is created.
type Card struct {
	ID             int64           `json:"id" db:"id"`
	UserID         int64           `json:"user_id" db:"user_id"`
	CardNumber     string          `json:"card_number" db:"card_number"`
	MaskedNumber   string          `json:"masked_number"`
	BankName       string          `json:"bank_name" db:"bank_name"`
	CardHolderName string          `json:"card_holder_name" db:"card_holder_name"`
	CardTitle      string          `json:"card_title,omitempty" db:"card_title"`
	CVV2           string          `json:"cvv2,omitempty" db:"cvv2"`
	ShebaNumber    string          `json:"sheba_number,omitempty" db:"sheba_number"`
	ExpiryDate     string          `json:"expiry_date,omitempty" db:"expiry_date"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// MaskCardNumber keeps the first six and last four digits
func MaskCardNumber(number string) string {
	if len(number) != 16 {
		return number
	}
	return number[:6] + "******" + number[12:]
}
