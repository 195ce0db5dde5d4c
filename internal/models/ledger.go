package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// EntryKind is the direction of a ledger entry
type EntryKind string

const (
	KindDeposit    EntryKind = "deposit"
	KindWithdrawal EntryKind = "withdrawal"
)

// Valid reports whether k is a known entry kind
func (k EntryKind) Valid() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// DateLayout is the wire and storage format for calendar dates
const DateLayout = "2006-01-02"

// LedgerEntry is an immutable deposit or withdrawal against a card.
// Amount is always positive; the sign comes from Kind.
type LedgerEntry struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	CardID          int64           `json:"card_id" db:"card_id"`
	Kind            EntryKind       `json:"transaction_type" db:"transaction_type"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Title           string          `json:"title" db:"title"`
	Note            string          `json:"description,omitempty" db:"description"`
	TransactionDate string          `json:"transaction_date" db:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`

	// Card metadata joined on list views
	CardNumber     string `json:"card_number,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
}

// LedgerSummary aggregates an owner's ledger for the dashboard
type LedgerSummary struct {
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	Net              decimal.Decimal `json:"net"`
	DepositCount     int             `json:"deposit_count"`
	WithdrawalCount  int             `json:"withdrawal_count"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
}
