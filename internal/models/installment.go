package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentPlan is a recurring payment schedule. PaidCount, TotalPaid and
// RemainingAmount are derived from its payments, never stored.
type InstallmentPlan struct {
	ID                int64           `json:"id" db:"id"`
	UserID            int64           `json:"user_id" db:"user_id"`
	Title             string          `json:"installment_title" db:"installment_title"`
	StartDate         string          `json:"start_date" db:"start_date"`
	EndDate           string          `json:"end_date" db:"end_date"`
	PaymentDayOfMonth int             `json:"payment_day_of_month" db:"payment_day_of_month"`
	TotalAmount       decimal.Decimal `json:"total_amount" db:"total_amount"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	Description       string          `json:"description,omitempty" db:"description"`
	PaidCount         int             `json:"paid_count"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// InstallmentPayment records one payment made against a plan
type InstallmentPayment struct {
	ID            int64           `json:"id" db:"id"`
	InstallmentID int64           `json:"installment_id" db:"installment_id"`
	PaymentDate   string          `json:"payment_date" db:"payment_date"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Note          string          `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
