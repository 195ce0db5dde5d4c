package handlers

import (
	"context"
	"net/http"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/services"
)

type Installments interface {
	CreatePlan(ctx context.Context, ownerID int64, in services.PlanInput) (*models.InstallmentPlan, error)
	UpdatePlan(ctx context.Context, ownerID, planID int64, in services.PlanInput) (*models.InstallmentPlan, error)
	DeletePlan(ctx context.Context, ownerID, planID int64) error
	ListInstallments(ctx context.Context, ownerID int64) ([]models.InstallmentPlan, error)
	ListPayments(ctx context.Context, ownerID, planID int64) ([]models.InstallmentPayment, error)
}

// InstallmentHandler serves plans and their payments. Payments go
// through the ledger because they debit a card.
type InstallmentHandler struct {
	plans  Installments
	ledger Ledger
}

func NewInstallmentHandler(plans Installments, ledger Ledger) *InstallmentHandler {
	return &InstallmentHandler{plans: plans, ledger: ledger}
}

// ListInstallments returns plans with paid and remaining amounts
// @Summary List installment plans
// @Tags Installments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.InstallmentPlan
// @Router /installments [get]
func (h *InstallmentHandler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	plans, err := h.plans.ListInstallments(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// CreatePlan adds an installment plan
// @Summary Create installment plan
// @Tags Installments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.PlanInput true "Plan details"
// @Success 201 {object} models.InstallmentPlan
// @Failure 400 {object} services.ErrorResponse
// @Router /installments [post]
func (h *InstallmentHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req services.PlanInput
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := h.plans.CreatePlan(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// UpdatePlan replaces a plan's details
// @Summary Update installment plan
// @Tags Installments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Param request body services.PlanInput true "Plan details"
// @Success 200 {object} models.InstallmentPlan
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /installments/{id} [put]
func (h *InstallmentHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.PlanInput
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := h.plans.UpdatePlan(r.Context(), userID, planID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DeletePlan removes a plan and its payment records
// @Summary Delete installment plan
// @Tags Installments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /installments/{id} [delete]
func (h *InstallmentHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.plans.DeletePlan(r.Context(), userID, planID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "installment deleted"})
}

// ListPayments returns a plan's payment history
// @Summary List installment payments
// @Tags Installments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Success 200 {array} models.InstallmentPayment
// @Failure 404 {object} services.ErrorResponse
// @Router /installments/{id}/payments [get]
func (h *InstallmentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.plans.ListPayments(r.Context(), userID, planID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// RecordPayment pays toward a plan from one of the user's cards
// @Summary Pay installment
// @Description Record the payment, its withdrawal entry and the card debit atomically
// @Tags Installments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Param request body services.PaymentInput true "Payment details"
// @Success 201 {object} services.PaymentResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /installments/{id}/payments [post]
func (h *InstallmentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.PaymentInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.ledger.RecordInstallmentPayment(r.Context(), userID, planID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
