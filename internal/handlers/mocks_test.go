package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/services"
)

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAccounts) Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAccounts) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAccounts) Me(ctx context.Context, ownerID int64) (*models.User, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccounts) UpdateProfile(ctx context.Context, ownerID int64, name string) (*models.User, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccounts) ChangePassword(ctx context.Context, ownerID int64, in services.ChangePasswordInput) error {
	return m.Called(ctx, ownerID, in).Error(0)
}

type MockCards struct {
	mock.Mock
}

func (m *MockCards) CreateCard(ctx context.Context, ownerID int64, in services.CardInput) (*models.Card, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCards) ListCards(ctx context.Context, ownerID int64) ([]models.Card, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCards) GetCard(ctx context.Context, ownerID, cardID int64) (*models.Card, error) {
	args := m.Called(ctx, ownerID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCards) DeleteCard(ctx context.Context, ownerID, cardID int64) error {
	return m.Called(ctx, ownerID, cardID).Error(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordTransaction(ctx context.Context, ownerID int64, in services.TransactionInput) (*services.TransactionResult, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TransactionResult), args.Error(1)
}

func (m *MockLedger) RecordInstallmentPayment(ctx context.Context, ownerID, planID int64, in services.PaymentInput) (*services.PaymentResult, error) {
	args := m.Called(ctx, ownerID, planID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentResult), args.Error(1)
}

func (m *MockLedger) DeleteTransaction(ctx context.Context, ownerID, entryID int64) error {
	return m.Called(ctx, ownerID, entryID).Error(0)
}

func (m *MockLedger) ListTransactions(ctx context.Context, ownerID int64, filter services.TransactionFilter) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *MockLedger) Summary(ctx context.Context, ownerID int64) (*models.LedgerSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerSummary), args.Error(1)
}

type MockInstallments struct {
	mock.Mock
}

func (m *MockInstallments) CreatePlan(ctx context.Context, ownerID int64, in services.PlanInput) (*models.InstallmentPlan, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InstallmentPlan), args.Error(1)
}

func (m *MockInstallments) UpdatePlan(ctx context.Context, ownerID, planID int64, in services.PlanInput) (*models.InstallmentPlan, error) {
	args := m.Called(ctx, ownerID, planID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InstallmentPlan), args.Error(1)
}

func (m *MockInstallments) DeletePlan(ctx context.Context, ownerID, planID int64) error {
	return m.Called(ctx, ownerID, planID).Error(0)
}

func (m *MockInstallments) ListInstallments(ctx context.Context, ownerID int64) ([]models.InstallmentPlan, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InstallmentPlan), args.Error(1)
}

func (m *MockInstallments) ListPayments(ctx context.Context, ownerID, planID int64) ([]models.InstallmentPayment, error) {
	args := m.Called(ctx, ownerID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InstallmentPayment), args.Error(1)
}

type MockFriendCards struct {
	mock.Mock
}

func (m *MockFriendCards) Create(ctx context.Context, ownerID int64, in services.FriendCardInput) (*models.FriendCard, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendCard), args.Error(1)
}

func (m *MockFriendCards) Update(ctx context.Context, ownerID, id int64, in services.FriendCardInput) (*models.FriendCard, error) {
	args := m.Called(ctx, ownerID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendCard), args.Error(1)
}

func (m *MockFriendCards) Delete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockFriendCards) List(ctx context.Context, ownerID int64) ([]models.FriendCard, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendCard), args.Error(1)
}

func (m *MockFriendCards) ShareQR(ctx context.Context, ownerID, id int64) (*services.ShareCode, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ShareCode), args.Error(1)
}
