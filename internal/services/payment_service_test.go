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

func TestPaymentService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	req := model.PaymentCreateRequest{
		TransactionID: "TXN-9001",
		RRN:           "RRN-1",
		Amount:        "45.50",
		ResponseCode:  "00",
		InvoiceNumber: "000123",
		CardType:      "UPI",
		CompanyCode:   "TRN001",
	}

	t.Run("stores payment then publishes the event", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		events := new(MockEventPublisher)
		svc := NewPaymentService(paymentRepo, events)

		paymentRepo.On("Create", ctx, mock.MatchedBy(func(p *model.PaymentTransaction) bool {
			return p.TransactionID == "TXN-9001" &&
				p.Amount.String() == "45.5" &&
				p.ProcessingStatus == model.ProcessingPendingVerification &&
				p.VerificationStatus == model.VerificationUnverified &&
				p.RawPayload == `{"transactionID":"TXN-9001"}`
		})).Return(&model.PaymentTransaction{ID: 42, TransactionID: "TXN-9001", Amount: decimal.RequireFromString("45.50")}, nil)
		events.On("PublishJSON", ctx, model.PaymentEvent{PaymentID: 42}, mock.Anything).Return("1-0", nil)

		created, err := svc.HandleWebhook(ctx, req, `{"transactionID":"TXN-9001"}`)
		require.NoError(t, err)
		assert.Equal(t, int64(42), created.ID)

		events.AssertExpectations(t)
	})

	t.Run("publish failure does not lose the stored settlement", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		events := new(MockEventPublisher)
		svc := NewPaymentService(paymentRepo, events)

		paymentRepo.On("Create", ctx, mock.Anything).Return(&model.PaymentTransaction{ID: 42}, nil)
		events.On("PublishJSON", ctx, mock.Anything, mock.Anything).Return("", assert.AnError)

		created, err := svc.HandleWebhook(ctx, req, "{}")
		require.NoError(t, err)
		assert.Equal(t, int64(42), created.ID)
	})

	t.Run("failed insert publishes nothing", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		events := new(MockEventPublisher)
		svc := NewPaymentService(paymentRepo, events)

		paymentRepo.On("Create", ctx, mock.Anything).Return(nil, assert.AnError)

		_, err := svc.HandleWebhook(ctx, req, "{}")
		require.Error(t, err)
		events.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing transaction id rejected", func(t *testing.T) {
		svc := NewPaymentService(new(MockPaymentRepository), new(MockEventPublisher))

		bad := req
		bad.TransactionID = ""
		_, err := svc.HandleWebhook(ctx, bad, "{}")
		assert.Error(t, err)
	})

	t.Run("unparseable amount rejected", func(t *testing.T) {
		svc := NewPaymentService(new(MockPaymentRepository), new(MockEventPublisher))

		bad := req
		bad.Amount = "forty five"
		_, err := svc.HandleWebhook(ctx, bad, "{}")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestPaymentService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("records verdict", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		svc := NewPaymentService(paymentRepo, new(MockEventPublisher))

		paymentRepo.On("GetByID", ctx, int64(1)).Return(&model.PaymentTransaction{ID: 1}, nil)
		paymentRepo.On("SetVerification", ctx, int64(1), model.VerificationVerified, int64(9), "looks right", mock.AnythingOfType("time.Time")).Return(nil)

		_, err := svc.Verify(ctx, 1, model.VerificationVerified, 9, "looks right")
		require.NoError(t, err)
	})

	t.Run("unverified is not a valid verdict", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		svc := NewPaymentService(paymentRepo, new(MockEventPublisher))

		_, err := svc.Verify(ctx, 1, model.VerificationUnverified, 9, "")
		assert.ErrorIs(t, err, ErrInvalidVerdict)
		paymentRepo.AssertNotCalled(t, "SetVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown payment", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		svc := NewPaymentService(paymentRepo, new(MockEventPublisher))

		paymentRepo.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrPaymentNotFound)

		_, err := svc.Verify(ctx, 404, model.VerificationRejected, 9, "")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestPaymentService_PendingVerification(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	svc := NewPaymentService(paymentRepo, new(MockEventPublisher))

	paymentRepo.On("List", ctx, mock.MatchedBy(func(f model.PaymentFilter) bool {
		return len(f.VerificationStatuses) == 1 &&
			f.VerificationStatuses[0] == model.VerificationUnverified &&
			f.Limit == 20 && f.Desc
	})).Return([]*model.PaymentTransaction{{ID: 1}}, int64(1), nil)

	payments, total, err := svc.PendingVerification(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, payments, 1)
}
