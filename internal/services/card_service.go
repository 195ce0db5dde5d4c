package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/vault"
)

// CardInput is the registration form for an owned bank card
type CardInput struct {
	CardNumber     string          `json:"card_number" validate:"required,cardnumber"`
	BankName       string          `json:"bank_name" validate:"required,max=100"`
	CardHolderName string          `json:"card_holder_name" validate:"required,max=100"`
	CardTitle      string          `json:"card_title,omitempty" validate:"max=100"`
	CVV2           string          `json:"cvv2,omitempty" validate:"omitempty,cvv2"`
	ShebaNumber    string          `json:"sheba_number,omitempty" validate:"omitempty,iban"`
	ExpiryDate     string          `json:"expiry_date,omitempty" validate:"omitempty,expiry"`
	InitialBalance decimal.Decimal `json:"initial_balance" validate:"gte=0,money"`
}

type CardService struct {
	db        *sql.DB
	vault     vault.Sealer
	cache     *SummaryCache
	banks     *BankService
	validator *ValidationHelper
}

// NewCardService wires the card store. banks may be nil, in which case
// the bank name is never inferred from the card number.
func NewCardService(db *sql.DB, sealer vault.Sealer, cache *SummaryCache, banks *BankService) *CardService {
	return &CardService{
		db:        db,
		vault:     sealer,
		cache:     cache,
		banks:     banks,
		validator: NewValidationHelper(),
	}
}

// CreateCard registers a card with its opening balance. This is the only
// place a balance is written outside the ledger service.
func (s *CardService) CreateCard(ctx context.Context, ownerID int64, in CardInput) (*models.Card, error) {
	in.CardNumber = stripCardNumber(in.CardNumber)
	in.BankName = strings.TrimSpace(in.BankName)
	in.CardHolderName = strings.TrimSpace(in.CardHolderName)
	in.CardTitle = strings.TrimSpace(in.CardTitle)
	in.CVV2 = strings.TrimSpace(in.CVV2)
	in.ShebaNumber = strings.TrimSpace(in.ShebaNumber)
	in.ExpiryDate = strings.TrimSpace(in.ExpiryDate)
	if in.BankName == "" && s.banks != nil {
		if bank, ok := s.banks.Detect(in.CardNumber); ok {
			in.BankName = bank.Name
		}
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	sealedCVV2, err := s.vault.Encrypt(in.CVV2)
	if err != nil {
		return nil, NewUnexpectedError("failed to create card", err)
	}

	card := &models.Card{
		UserID:         ownerID,
		CardNumber:     in.CardNumber,
		MaskedNumber:   models.MaskCardNumber(in.CardNumber),
		BankName:       in.BankName,
		CardHolderName: in.CardHolderName,
		CardTitle:      in.CardTitle,
		CVV2:           in.CVV2,
		ShebaNumber:    NormalizeIBAN(in.ShebaNumber),
		ExpiryDate:     in.ExpiryDate,
		Balance:        in.InitialBalance,
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO bank_cards (user_id, card_number, bank_name, card_holder_name, card_title, cvv2, sheba_number, balance, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		ownerID, card.CardNumber, card.BankName, card.CardHolderName,
		nullString(card.CardTitle), nullString(sealedCVV2), nullString(card.ShebaNumber),
		card.Balance, nullString(card.ExpiryDate),
	).Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		log.Printf("[CARDS] create failed for user %d: %v", ownerID, err)
		return nil, NewUnexpectedError("failed to create card", err)
	}

	s.cache.Invalidate(ctx, ownerID)
	log.Printf("[CARDS] card %d registered for user %d", card.ID, ownerID)
	return card, nil
}

const cardColumns = `id, user_id, card_number, bank_name, card_holder_name, COALESCE(card_title, ''),
	COALESCE(cvv2, ''), COALESCE(sheba_number, ''), balance, COALESCE(expiry_date, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*models.Card, error) {
	var c models.Card
	if err := row.Scan(
		&c.ID, &c.UserID, &c.CardNumber, &c.BankName, &c.CardHolderName, &c.CardTitle,
		&c.CVV2, &c.ShebaNumber, &c.Balance, &c.ExpiryDate, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.CardNumber = strings.TrimSpace(c.CardNumber)
	c.MaskedNumber = models.MaskCardNumber(c.CardNumber)
	return &c, nil
}

// ListCards returns the owner's cards, newest first. CVV2 is not
// included in list views.
func (s *CardService) ListCards(ctx context.Context, ownerID int64) ([]models.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM bank_cards WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, NewUnexpectedError("failed to list cards", err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, NewUnexpectedError("failed to list cards", err)
		}
		card.CVV2 = ""
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, NewUnexpectedError("failed to list cards", err)
	}
	return cards, nil
}

func (s *CardService) GetCard(ctx context.Context, ownerID, cardID int64) (*models.Card, error) {
	card, err := scanCard(s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM bank_cards WHERE id = $1 AND user_id = $2`, cardID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, NewUnexpectedError("failed to load card", err)
	}

	card.CVV2, err = s.vault.Decrypt(card.CVV2)
	if err != nil {
		return nil, NewUnexpectedError("failed to load card", fmt.Errorf("decrypt cvv2: %w", err))
	}
	return card, nil
}

// DeleteCard removes a card together with its ledger entries
func (s *CardService) DeleteCard(ctx context.Context, ownerID, cardID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM bank_cards WHERE id = $1 AND user_id = $2`, cardID, ownerID)
	if err != nil {
		return NewUnexpectedError("failed to delete card", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return NewUnexpectedError("failed to delete card", err)
	}
	if rows == 0 {
		return ErrCardNotFound
	}

	s.cache.Invalidate(ctx, ownerID)
	log.Printf("[CARDS] card %d deleted for user %d", cardID, ownerID)
	return nil
}

func stripCardNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
}
