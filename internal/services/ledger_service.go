package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/audit"
	"github.com/cardledger/backend/internal/models"
)

const (
	insertEntryQuery = `
		INSERT INTO transactions (user_id, card_id, transaction_type, amount, title, description, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	creditCardQuery = `
		UPDATE bank_cards SET balance = balance + $1, updated_at = now()
		WHERE id = $2 AND user_id = $3
		RETURNING balance`

	// the balance check and the debit are one statement, so two concurrent
	// withdrawals can never both pass against the same stale balance
	debitCardQuery = `
		UPDATE bank_cards SET balance = balance - $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND balance >= $1
		RETURNING balance`

	cardBalanceQuery = `SELECT balance FROM bank_cards WHERE id = $1 AND user_id = $2`

	summaryQuery = `
		SELECT COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'deposit'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'withdrawal'), 0),
		       COUNT(*) FILTER (WHERE transaction_type = 'deposit'),
		       COUNT(*) FILTER (WHERE transaction_type = 'withdrawal'),
		       (SELECT COALESCE(SUM(balance), 0) FROM bank_cards WHERE user_id = $1)
		FROM transactions
		WHERE user_id = $1`

	pqForeignKeyViolation = "23503"
)

// TransactionInput is a deposit or withdrawal request against one card
type TransactionInput struct {
	CardID int64            `json:"card_id" validate:"required,gt=0"`
	Kind   models.EntryKind `json:"transaction_type" validate:"required,oneof=deposit withdrawal"`
	Amount decimal.Decimal  `json:"amount" validate:"gt=0,money"`
	Title  string           `json:"title" validate:"required,max=255"`
	Note   string           `json:"description,omitempty" validate:"max=1000"`
	Date   string           `json:"transaction_date" validate:"required,datetime=2006-01-02"`
}

// PaymentInput is one payment against an installment plan
type PaymentInput struct {
	CardID int64           `json:"card_id" validate:"required,gt=0"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Date   string          `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Note   string          `json:"note,omitempty" validate:"max=1000"`
}

type TransactionResult struct {
	Entry      models.LedgerEntry `json:"transaction"`
	NewBalance decimal.Decimal    `json:"new_balance"`
}

type PaymentResult struct {
	Payment    models.InstallmentPayment `json:"payment"`
	EntryID    int64                     `json:"transaction_id"`
	NewBalance decimal.Decimal           `json:"new_balance"`
}

// TransactionFilter narrows ListTransactions. Zero values mean "any".
type TransactionFilter struct {
	Kind   models.EntryKind
	CardID int64
	Search string
}

// LedgerService is the only writer of card balances. Every operation that
// moves money inserts its ledger rows and adjusts the balance inside one
// database transaction.
type LedgerService struct {
	db        *sql.DB
	validator *ValidationHelper
	cache     *SummaryCache
	audit     *audit.Logger
	money     MoneyFormatter
}

func NewLedgerService(db *sql.DB, cache *SummaryCache, auditLogger *audit.Logger, money MoneyFormatter) *LedgerService {
	if money == nil {
		money = NewLocaleFormatter("en", "")
	}
	return &LedgerService{
		db:        db,
		validator: NewValidationHelper(),
		cache:     cache,
		audit:     auditLogger,
		money:     money,
	}
}

// RecordTransaction stores a deposit or withdrawal and applies it to the
// card balance. A withdrawal larger than the balance is rejected with
// KindInsufficientFunds and leaves nothing behind.
func (s *LedgerService) RecordTransaction(ctx context.Context, ownerID int64, in TransactionInput) (*TransactionResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Note = strings.TrimSpace(in.Note)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.fail("record_transaction", ownerID, err)
	}
	defer tx.Rollback()

	entry := models.LedgerEntry{
		UserID:          ownerID,
		CardID:          in.CardID,
		Kind:            in.Kind,
		Amount:          in.Amount,
		Title:           in.Title,
		Note:            in.Note,
		TransactionDate: in.Date,
	}
	if err := insertEntry(ctx, tx, &entry); err != nil {
		return nil, s.fail("record_transaction", ownerID, err)
	}

	balance, err := s.applyBalance(ctx, tx, ownerID, in.CardID, in.Kind, in.Amount)
	if err != nil {
		return nil, s.fail("record_transaction", ownerID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.fail("record_transaction", ownerID, fmt.Errorf("commit: %w", err))
	}

	s.cache.Invalidate(ctx, ownerID)
	event := audit.EventDeposit
	if in.Kind == models.KindWithdrawal {
		event = audit.EventWithdrawal
	}
	s.audit.LogMovement(event, ownerID, in.CardID, entry.ID, in.Amount.String(), balance.String())
	log.Printf("[LEDGER] %s of %s on card %d for user %d, balance now %s",
		in.Kind, in.Amount, in.CardID, ownerID, balance)

	return &TransactionResult{Entry: entry, NewBalance: balance}, nil
}

// RecordInstallmentPayment records a payment against a plan and the
// matching withdrawal entry, debiting the chosen card.
func (s *LedgerService) RecordInstallmentPayment(ctx context.Context, ownerID, planID int64, in PaymentInput) (*PaymentResult, error) {
	in.Note = strings.TrimSpace(in.Note)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.fail("installment_payment", ownerID, err)
	}
	defer tx.Rollback()

	var planTitle string
	err = tx.QueryRowContext(ctx,
		`SELECT installment_title FROM installments WHERE id = $1 AND user_id = $2`,
		planID, ownerID,
	).Scan(&planTitle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, s.fail("installment_payment", ownerID, fmt.Errorf("load plan: %w", err))
	}

	payment := models.InstallmentPayment{
		InstallmentID: planID,
		PaymentDate:   in.Date,
		Amount:        in.Amount,
		Note:          in.Note,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO installment_payments (installment_id, payment_date, amount, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		planID, in.Date, in.Amount, nullString(in.Note),
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, s.fail("installment_payment", ownerID, fmt.Errorf("insert payment: %w", err))
	}

	entry := models.LedgerEntry{
		UserID:          ownerID,
		CardID:          in.CardID,
		Kind:            models.KindWithdrawal,
		Amount:          in.Amount,
		Title:           "Payment for installment: " + planTitle,
		Note:            in.Note,
		TransactionDate: in.Date,
	}
	if err := insertEntry(ctx, tx, &entry); err != nil {
		return nil, s.fail("installment_payment", ownerID, err)
	}

	balance, err := s.applyBalance(ctx, tx, ownerID, in.CardID, models.KindWithdrawal, in.Amount)
	if err != nil {
		return nil, s.fail("installment_payment", ownerID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.fail("installment_payment", ownerID, fmt.Errorf("commit: %w", err))
	}

	s.cache.Invalidate(ctx, ownerID)
	s.audit.LogMovement(audit.EventInstallmentPayment, ownerID, in.CardID, entry.ID, in.Amount.String(), balance.String())
	log.Printf("[LEDGER] installment %d paid %s from card %d for user %d", planID, in.Amount, in.CardID, ownerID)

	return &PaymentResult{Payment: payment, EntryID: entry.ID, NewBalance: balance}, nil
}

// DeleteTransaction removes a ledger entry. The card balance is left as
// it is: deletion is a record removal, not a reversal.
func (s *LedgerService) DeleteTransaction(ctx context.Context, ownerID, entryID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, entryID, ownerID)
	if err != nil {
		return s.fail("delete_transaction", ownerID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return s.fail("delete_transaction", ownerID, err)
	}
	if rows == 0 {
		return ErrTransactionNotFound
	}

	s.cache.Invalidate(ctx, ownerID)
	s.audit.LogDelete(ownerID, entryID)
	return nil
}

// ListTransactions returns the owner's entries, newest event first
func (s *LedgerService) ListTransactions(ctx context.Context, ownerID int64, filter TransactionFilter) ([]models.LedgerEntry, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, NewValidationError("invalid transaction type", map[string]string{"type": "must be one of: deposit withdrawal"})
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT t.id, t.user_id, t.card_id, t.transaction_type, t.amount, t.title,
		       COALESCE(t.description, ''), to_char(t.transaction_date, 'YYYY-MM-DD'), t.created_at,
		       c.card_number, c.bank_name, c.card_holder_name
		FROM transactions t
		JOIN bank_cards c ON c.id = t.card_id
		WHERE t.user_id = $1`)
	args := []any{ownerID}

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		fmt.Fprintf(&sb, " AND t.transaction_type = $%d", len(args))
	}
	if filter.CardID > 0 {
		args = append(args, filter.CardID)
		fmt.Fprintf(&sb, " AND t.card_id = $%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		fmt.Fprintf(&sb, " AND (t.title ILIKE $%d OR t.description ILIKE $%d)", len(args), len(args))
	}
	sb.WriteString(" ORDER BY t.transaction_date DESC, t.created_at DESC")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, s.fail("list_transactions", ownerID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		var cardNumber string
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.CardID, &e.Kind, &e.Amount, &e.Title,
			&e.Note, &e.TransactionDate, &e.CreatedAt,
			&cardNumber, &e.BankName, &e.CardHolderName,
		); err != nil {
			return nil, s.fail("list_transactions", ownerID, err)
		}
		e.CardNumber = models.MaskCardNumber(strings.TrimSpace(cardNumber))
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list_transactions", ownerID, err)
	}
	return entries, nil
}

// Summary aggregates the owner's ledger and card balances, served from
// the cache when possible. Both aggregates come from one statement so
// they describe the same snapshot.
func (s *LedgerService) Summary(ctx context.Context, ownerID int64) (*models.LedgerSummary, error) {
	cached, gen := s.cache.Get(ctx, ownerID)
	if cached != nil {
		return cached, nil
	}

	var summary models.LedgerSummary
	err := s.db.QueryRowContext(ctx, summaryQuery, ownerID).Scan(
		&summary.TotalDeposits, &summary.TotalWithdrawals,
		&summary.DepositCount, &summary.WithdrawalCount, &summary.TotalBalance,
	)
	if err != nil {
		return nil, s.fail("summary", ownerID, err)
	}
	summary.Net = summary.TotalDeposits.Sub(summary.TotalWithdrawals)

	s.cache.Set(ctx, ownerID, gen, &summary)
	return &summary, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry *models.LedgerEntry) error {
	err := tx.QueryRowContext(ctx, insertEntryQuery,
		entry.UserID, entry.CardID, string(entry.Kind), entry.Amount,
		entry.Title, nullString(entry.Note), entry.TransactionDate,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return ErrCardNotFound
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// applyBalance moves the card balance by amount. When the conditional
// update matches no row, a read inside the same transaction decides
// between a missing card and insufficient funds.
func (s *LedgerService) applyBalance(ctx context.Context, tx *sql.Tx, ownerID, cardID int64, kind models.EntryKind, amount decimal.Decimal) (decimal.Decimal, error) {
	query := creditCardQuery
	if kind == models.KindWithdrawal {
		query = debitCardQuery
	}

	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx, query, amount, cardID, ownerID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("update card balance: %w", err)
	}

	var current decimal.Decimal
	err = tx.QueryRowContext(ctx, cardBalanceQuery, cardID, ownerID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrCardNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read card balance: %w", err)
	}

	return decimal.Zero, NewInsufficientFundsError(
		fmt.Sprintf("insufficient balance, current balance: %s", s.money.Format(current)))
}

// fail passes tagged errors through and wraps everything else as
// unexpected, recording it in the audit trail
func (s *LedgerService) fail(operation string, ownerID int64, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	log.Printf("[LEDGER] %s failed for user %d: %v", operation, ownerID, err)
	s.audit.LogError(operation, ownerID, err)
	return NewUnexpectedError("failed to "+strings.ReplaceAll(operation, "_", " "), err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

