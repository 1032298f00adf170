package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
)

func pendingPayment(id int64, amount, responseCode, invoice string) *model.PaymentTransaction {
	return &model.PaymentTransaction{
		ID:                 id,
		TransactionID:      "TXN",
		Amount:             decimal.RequireFromString(amount),
		ResponseCode:       responseCode,
		InvoiceNumber:      invoice,
		CompanyCode:        "TRN001",
		ProcessingStatus:   model.ProcessingPendingVerification,
		VerificationStatus: model.VerificationUnverified,
	}
}

func expectFinish(repo *MockPaymentRepository, id int64, check func(repository.ReconciliationResult) bool) {
	repo.On("FinishReconciliation", mock.Anything, id, mock.MatchedBy(check), mock.AnythingOfType("time.Time")).Return(nil)
	repo.On("GetByID", mock.Anything, id).Return(pendingPayment(id, "1.00", "0", ""), nil)
}

func TestReconcileService_Declined(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	ticketRepo := new(MockTicketRepository)
	svc := NewReconcileService(paymentRepo, ticketRepo)

	payment := pendingPayment(1, "45.00", "05", "000123")
	paymentRepo.On("GetByID", ctx, int64(1)).Return(payment, nil).Once()
	expectFinish(paymentRepo, 1, func(res repository.ReconciliationResult) bool {
		return res.Status == model.ReconciliationNone && res.Error != ""
	})

	_, err := svc.Reconcile(ctx, 1)
	require.NoError(t, err)

	paymentRepo.AssertNotCalled(t, "SetProcessingStatus", mock.Anything, mock.Anything, mock.Anything)
	ticketRepo.AssertNotCalled(t, "FindByTicketNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileService_MissingInvoice(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	svc := NewReconcileService(paymentRepo, new(MockTicketRepository))

	payment := pendingPayment(2, "45.00", "00", "")
	paymentRepo.On("GetByID", ctx, int64(2)).Return(payment, nil).Once()
	paymentRepo.On("SetProcessingStatus", ctx, int64(2), model.ProcessingReconciling).Return(nil)
	expectFinish(paymentRepo, 2, func(res repository.ReconciliationResult) bool {
		return res.Status == model.ReconciliationNotFound && res.RelatedTicketID == nil
	})

	_, err := svc.Reconcile(ctx, 2)
	require.NoError(t, err)
}

func TestReconcileService_TicketNotFound(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	ticketRepo := new(MockTicketRepository)
	svc := NewReconcileService(paymentRepo, ticketRepo)

	payment := pendingPayment(3, "45.00", "00", "000999")
	paymentRepo.On("GetByID", ctx, int64(3)).Return(payment, nil).Once()
	paymentRepo.On("SetProcessingStatus", ctx, int64(3), model.ProcessingReconciling).Return(nil)
	ticketRepo.On("FindByTicketNumber", ctx, "TRN001", "000999").Return(nil, repository.ErrTicketNotFound)
	expectFinish(paymentRepo, 3, func(res repository.ReconciliationResult) bool {
		return res.Status == model.ReconciliationNotFound
	})

	_, err := svc.Reconcile(ctx, 3)
	require.NoError(t, err)
}

func TestReconcileService_AmountMismatch(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	ticketRepo := new(MockTicketRepository)
	svc := NewReconcileService(paymentRepo, ticketRepo)

	// Same settlement against a 100.50 ticket: deterministic mismatch.
	payment := pendingPayment(4, "100.00", "00", "000123")
	ticket := &model.TicketTransaction{ID: 77, TicketNumber: "000123", TicketAmount: decimal.RequireFromString("100.50")}

	paymentRepo.On("GetByID", ctx, int64(4)).Return(payment, nil).Once()
	paymentRepo.On("SetProcessingStatus", ctx, int64(4), model.ProcessingReconciling).Return(nil)
	ticketRepo.On("FindByTicketNumber", ctx, "TRN001", "000123").Return(ticket, nil)
	expectFinish(paymentRepo, 4, func(res repository.ReconciliationResult) bool {
		return res.Status == model.ReconciliationAmountMismatch &&
			res.RelatedTicketID != nil && *res.RelatedTicketID == int64(77) &&
			res.Error == "amount mismatch: gateway 100.00, ticket 100.50"
	})

	_, err := svc.Reconcile(ctx, 4)
	require.NoError(t, err)
}

func TestReconcileService_Duplicate(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	ticketRepo := new(MockTicketRepository)
	svc := NewReconcileService(paymentRepo, ticketRepo)

	payment := pendingPayment(5, "45.00", "00", "000123")
	ticket := &model.TicketTransaction{ID: 77, TicketNumber: "000123", TicketAmount: decimal.RequireFromString("45.00")}
	winner := &model.PaymentTransaction{ID: 2, TransactionID: "TXN-WINNER", RelatedTicketID: &ticket.ID}

	paymentRepo.On("GetByID", ctx, int64(5)).Return(payment, nil).Once()
	paymentRepo.On("SetProcessingStatus", ctx, int64(5), model.ProcessingReconciling).Return(nil)
	ticketRepo.On("FindByTicketNumber", ctx, "TRN001", "000123").Return(ticket, nil)
	paymentRepo.On("FindTicketHolder", ctx, int64(77), int64(5)).Return(winner, nil)
	expectFinish(paymentRepo, 5, func(res repository.ReconciliationResult) bool {
		return res.Status == model.ReconciliationDuplicate && res.RelatedTicketID == nil &&
			res.Error == "ticket 000123 already settled by transaction TXN-WINNER"
	})

	_, err := svc.Reconcile(ctx, 5)
	require.NoError(t, err)
}

func TestReconcileService_AutoMatched(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	ticketRepo := new(MockTicketRepository)
	svc := NewReconcileService(paymentRepo, ticketRepo)

	// Amounts equal after 2-decimal rounding.
	payment := pendingPayment(6, "45.004", "00", "000123")
	ticket := &model.TicketTransaction{ID: 77, TicketNumber: "000123", TicketAmount: decimal.RequireFromString("45.00")}

	paymentRepo.On("GetByID", ctx, int64(6)).Return(payment, nil).Once()
	paymentRepo.On("SetProcessingStatus", ctx, int64(6), model.ProcessingReconciling).Return(nil)
	ticketRepo.On("FindByTicketNumber", ctx, "TRN001", "000123").Return(ticket, nil)
	paymentRepo.On("FindTicketHolder", ctx, int64(77), int64(6)).Return(nil, nil)
	expectFinish(paymentRepo, 6, func(res repository.ReconciliationResult) bool {
		return res.Status == model.ReconciliationAutoMatched &&
			res.RelatedTicketID != nil && *res.RelatedTicketID == int64(77) &&
			res.Error == ""
	})

	_, err := svc.Reconcile(ctx, 6)
	require.NoError(t, err)
}

func TestReconcileService_RedeliveryIsNoOp(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	svc := NewReconcileService(paymentRepo, new(MockTicketRepository))

	payment := pendingPayment(7, "45.00", "00", "000123")
	payment.ReconciliationProcessed = true
	payment.ReconciliationStatus = model.ReconciliationAutoMatched

	paymentRepo.On("GetByID", ctx, int64(7)).Return(payment, nil)

	got, err := svc.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ReconciliationAutoMatched, got.ReconciliationStatus)

	paymentRepo.AssertNotCalled(t, "SetProcessingStatus", mock.Anything, mock.Anything, mock.Anything)
	paymentRepo.AssertNotCalled(t, "FinishReconciliation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	t.Run("declined redelivery skips without a reconciled_at stamp", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		svc := NewReconcileService(paymentRepo, new(MockTicketRepository))

		declined := pendingPayment(9, "45.00", "05", "000123")
		declined.ReconciliationProcessed = true

		paymentRepo.On("GetByID", ctx, int64(9)).Return(declined, nil)

		got, err := svc.Reconcile(ctx, 9)
		require.NoError(t, err)
		assert.Nil(t, got.ReconciledAt)
		paymentRepo.AssertNotCalled(t, "FinishReconciliation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReconcileService_LookupErrorAbsorbed(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	ticketRepo := new(MockTicketRepository)
	svc := NewReconcileService(paymentRepo, ticketRepo)

	payment := pendingPayment(8, "45.00", "00", "000123")
	paymentRepo.On("GetByID", ctx, int64(8)).Return(payment, nil).Once()
	paymentRepo.On("SetProcessingStatus", ctx, int64(8), model.ProcessingReconciling).Return(nil)
	ticketRepo.On("FindByTicketNumber", ctx, "TRN001", "000123").Return(nil, assert.AnError)
	expectFinish(paymentRepo, 8, func(res repository.ReconciliationResult) bool {
		return res.Status == model.ReconciliationNone && res.Error != ""
	})

	_, err := svc.Reconcile(ctx, 8)
	require.NoError(t, err)
}
