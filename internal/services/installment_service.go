package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardledger/backend/internal/models"
)

// PlanInput holds the terms of an installment plan
type PlanInput struct {
	Title             string          `json:"installment_title" validate:"required,max=255"`
	StartDate         string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	PaymentDayOfMonth int             `json:"payment_day_of_month" validate:"required,min=1,max=31"`
	TotalAmount       decimal.Decimal `json:"total_amount" validate:"gt=0,money"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" validate:"gt=0,money"`
	Description       string          `json:"description,omitempty" validate:"max=1000"`
}

type InstallmentService struct {
	db        *sql.DB
	validator *ValidationHelper
}

func NewInstallmentService(db *sql.DB) *InstallmentService {
	return &InstallmentService{db: db, validator: NewValidationHelper()}
}

func (s *InstallmentService) validate(in *PlanInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validator.Validate(*in); err != nil {
		return err
	}

	start, _ := time.Parse(models.DateLayout, in.StartDate)
	end, _ := time.Parse(models.DateLayout, in.EndDate)
	if end.Before(start) {
		return NewValidationError("validation failed", map[string]string{"end_date": "must not be before start_date"})
	}
	return nil
}

func (s *InstallmentService) CreatePlan(ctx context.Context, ownerID int64, in PlanInput) (*models.InstallmentPlan, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	plan := planFromInput(ownerID, in)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO installments (user_id, installment_title, start_date, end_date, payment_day_of_month,
		                          total_amount, installment_amount, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		ownerID, in.Title, in.StartDate, in.EndDate, in.PaymentDayOfMonth,
		in.TotalAmount, in.InstallmentAmount, nullString(in.Description),
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		log.Printf("[INSTALLMENTS] create failed for user %d: %v", ownerID, err)
		return nil, NewUnexpectedError("failed to create installment plan", err)
	}

	log.Printf("[INSTALLMENTS] plan %d created for user %d", plan.ID, ownerID)
	return plan, nil
}

func (s *InstallmentService) UpdatePlan(ctx context.Context, ownerID, planID int64, in PlanInput) (*models.InstallmentPlan, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	plan := planFromInput(ownerID, in)
	plan.ID = planID
	err := s.db.QueryRowContext(ctx, `
		UPDATE installments
		SET installment_title = $1, start_date = $2, end_date = $3, payment_day_of_month = $4,
		    total_amount = $5, installment_amount = $6, description = $7, updated_at = now()
		WHERE id = $8 AND user_id = $9
		RETURNING created_at, updated_at`,
		in.Title, in.StartDate, in.EndDate, in.PaymentDayOfMonth,
		in.TotalAmount, in.InstallmentAmount, nullString(in.Description),
		planID, ownerID,
	).Scan(&plan.CreatedAt, &plan.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, NewUnexpectedError("failed to update installment plan", err)
	}
	return plan, nil
}

// DeletePlan removes a plan and its payment history. Ledger entries
// created by those payments stay.
func (s *InstallmentService) DeletePlan(ctx context.Context, ownerID, planID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM installments WHERE id = $1 AND user_id = $2`, planID, ownerID)
	if err != nil {
		return NewUnexpectedError("failed to delete installment plan", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return NewUnexpectedError("failed to delete installment plan", err)
	}
	if rows == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// ListInstallments returns plans with their payment progress, latest
// start date first
func (s *InstallmentService) ListInstallments(ctx context.Context, ownerID int64) ([]models.InstallmentPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.user_id, i.installment_title,
		       to_char(i.start_date, 'YYYY-MM-DD'), to_char(i.end_date, 'YYYY-MM-DD'),
		       i.payment_day_of_month, i.total_amount, i.installment_amount,
		       COALESCE(i.description, ''), i.created_at, i.updated_at,
		       COUNT(p.id) AS paid_count,
		       COALESCE(SUM(p.amount), 0) AS total_paid
		FROM installments i
		LEFT JOIN installment_payments p ON p.installment_id = i.id
		WHERE i.user_id = $1
		GROUP BY i.id
		ORDER BY i.start_date DESC`, ownerID)
	if err != nil {
		return nil, NewUnexpectedError("failed to list installment plans", err)
	}
	defer rows.Close()

	plans := []models.InstallmentPlan{}
	for rows.Next() {
		var p models.InstallmentPlan
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Title, &p.StartDate, &p.EndDate,
			&p.PaymentDayOfMonth, &p.TotalAmount, &p.InstallmentAmount,
			&p.Description, &p.CreatedAt, &p.UpdatedAt,
			&p.PaidCount, &p.TotalPaid,
		); err != nil {
			return nil, NewUnexpectedError("failed to list installment plans", err)
		}
		p.RemainingAmount = decimal.Max(p.TotalAmount.Sub(p.TotalPaid), decimal.Zero)
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, NewUnexpectedError("failed to list installment plans", err)
	}
	return plans, nil
}

// ListPayments returns a plan's payments, most recent first
func (s *InstallmentService) ListPayments(ctx context.Context, ownerID, planID int64) ([]models.InstallmentPayment, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM installments WHERE id = $1 AND user_id = $2)`, planID, ownerID,
	).Scan(&exists)
	if err != nil {
		return nil, NewUnexpectedError("failed to list payments", err)
	}
	if !exists {
		return nil, ErrPlanNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, installment_id, to_char(payment_date, 'YYYY-MM-DD'), amount, COALESCE(note, ''), created_at
		FROM installment_payments
		WHERE installment_id = $1
		ORDER BY payment_date DESC, created_at DESC`, planID)
	if err != nil {
		return nil, NewUnexpectedError("failed to list payments", err)
	}
	defer rows.Close()

	payments := []models.InstallmentPayment{}
	for rows.Next() {
		var p models.InstallmentPayment
		if err := rows.Scan(&p.ID, &p.InstallmentID, &p.PaymentDate, &p.Amount, &p.Note, &p.CreatedAt); err != nil {
			return nil, NewUnexpectedError("failed to list payments", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, NewUnexpectedError("failed to list payments", err)
	}
	return payments, nil
}

func planFromInput(ownerID int64, in PlanInput) *models.InstallmentPlan {
	return &models.InstallmentPlan{
		UserID:            ownerID,
		Title:             in.Title,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		PaymentDayOfMonth: in.PaymentDayOfMonth,
		TotalAmount:       in.TotalAmount,
		InstallmentAmount: in.InstallmentAmount,
		Description:       in.Description,
		TotalPaid:         decimal.Zero,
		RemainingAmount:   in.TotalAmount,
	}
}
