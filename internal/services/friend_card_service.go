package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"log"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/cardledger/backend/internal/models"
)

// FriendCardInput describes a payee card. Unlike owned cards the IBAN is
// mandatory here.
type FriendCardInput struct {
	CardTitle   string `json:"card_title" validate:"required,max=100"`
	CardNumber  string `json:"card_number" validate:"required,cardnumber"`
	ShebaNumber string `json:"sheba_number" validate:"required,iban"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// ShareCode is a scannable rendering of a payee's transfer details
type ShareCode struct {
	Payload string `json:"payload"`
	Image   string `json:"image"` // base64 PNG
}

type FriendCardService struct {
	db        *sql.DB
	validator *ValidationHelper
}

func NewFriendCardService(db *sql.DB) *FriendCardService {
	return &FriendCardService{db: db, validator: NewValidationHelper()}
}

func (s *FriendCardService) normalize(in *FriendCardInput) error {
	in.CardTitle = strings.TrimSpace(in.CardTitle)
	in.CardNumber = stripCardNumber(in.CardNumber)
	in.ShebaNumber = strings.TrimSpace(in.ShebaNumber)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validator.Validate(*in); err != nil {
		return err
	}
	in.ShebaNumber = NormalizeIBAN(in.ShebaNumber)
	return nil
}

func (s *FriendCardService) Create(ctx context.Context, ownerID int64, in FriendCardInput) (*models.FriendCard, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}

	card := &models.FriendCard{
		UserID:      ownerID,
		CardTitle:   in.CardTitle,
		CardNumber:  in.CardNumber,
		ShebaNumber: in.ShebaNumber,
		Description: in.Description,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO friend_cards (user_id, card_title, card_number, sheba_number, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		ownerID, in.CardTitle, in.CardNumber, in.ShebaNumber, nullString(in.Description),
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		log.Printf("[FRIEND_CARDS] create failed for user %d: %v", ownerID, err)
		return nil, NewUnexpectedError("failed to create friend card", err)
	}
	return card, nil
}

func (s *FriendCardService) Update(ctx context.Context, ownerID, id int64, in FriendCardInput) (*models.FriendCard, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}

	card := &models.FriendCard{
		ID:          id,
		UserID:      ownerID,
		CardTitle:   in.CardTitle,
		CardNumber:  in.CardNumber,
		ShebaNumber: in.ShebaNumber,
		Description: in.Description,
	}
	err := s.db.QueryRowContext(ctx, `
		UPDATE friend_cards
		SET card_title = $1, card_number = $2, sheba_number = $3, description = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6
		RETURNING created_at, updated_at`,
		in.CardTitle, in.CardNumber, in.ShebaNumber, nullString(in.Description), id, ownerID,
	).Scan(&card.CreatedAt, &card.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFriendCardNotFound
	}
	if err != nil {
		return nil, NewUnexpectedError("failed to update friend card", err)
	}
	return card, nil
}

func (s *FriendCardService) Delete(ctx context.Context, ownerID, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM friend_cards WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return NewUnexpectedError("failed to delete friend card", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return NewUnexpectedError("failed to delete friend card", err)
	}
	if rows == 0 {
		return ErrFriendCardNotFound
	}
	return nil
}

const friendCardColumns = `id, user_id, card_title, card_number, sheba_number, COALESCE(description, ''), created_at, updated_at`

func scanFriendCard(row rowScanner) (*models.FriendCard, error) {
	var c models.FriendCard
	if err := row.Scan(&c.ID, &c.UserID, &c.CardTitle, &c.CardNumber, &c.ShebaNumber,
		&c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CardNumber = strings.TrimSpace(c.CardNumber)
	return &c, nil
}

func (s *FriendCardService) List(ctx context.Context, ownerID int64) ([]models.FriendCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+friendCardColumns+` FROM friend_cards WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, NewUnexpectedError("failed to list friend cards", err)
	}
	defer rows.Close()

	cards := []models.FriendCard{}
	for rows.Next() {
		card, err := scanFriendCard(rows)
		if err != nil {
			return nil, NewUnexpectedError("failed to list friend cards", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, NewUnexpectedError("failed to list friend cards", err)
	}
	return cards, nil
}

func (s *FriendCardService) Get(ctx context.Context, ownerID, id int64) (*models.FriendCard, error) {
	card, err := scanFriendCard(s.db.QueryRowContext(ctx,
		`SELECT `+friendCardColumns+` FROM friend_cards WHERE id = $1 AND user_id = $2`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFriendCardNotFound
	}
	if err != nil {
		return nil, NewUnexpectedError("failed to load friend card", err)
	}
	return card, nil
}

// ShareQR renders the payee's title, card number and IBAN as a QR code
func (s *FriendCardService) ShareQR(ctx context.Context, ownerID, id int64) (*ShareCode, error) {
	card, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"title":        card.CardTitle,
		"card_number":  card.CardNumber,
		"sheba_number": card.ShebaNumber,
	})
	if err != nil {
		return nil, NewUnexpectedError("failed to encode share code", err)
	}

	qr, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		return nil, NewUnexpectedError("failed to encode share code", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return nil, NewUnexpectedError("failed to encode share code", err)
	}

	return &ShareCode{
		Payload: string(payload),
		Image:   base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
