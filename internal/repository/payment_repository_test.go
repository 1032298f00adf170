package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitops/ticket-backoffice/internal/model"
)

func TestPaymentRepository_FinishReconciliation(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	payment, err := repo.Create(ctx, &model.PaymentTransaction{
		TransactionID:      "TXN-1",
		RRN:                "RRN-1",
		Amount:             decimal.RequireFromString("45.00"),
		ResponseCode:       "00",
		InvoiceNumber:      "000123",
		ProcessingStatus:   model.ProcessingPendingVerification,
		VerificationStatus: model.VerificationUnverified,
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetProcessingStatus(ctx, payment.ID, model.ProcessingReconciling))

	ticketID := int64(77)
	err = repo.FinishReconciliation(ctx, payment.ID, ReconciliationResult{
		Status:          model.ReconciliationAutoMatched,
		RelatedTicketID: &ticketID,
	}, time.Now())
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProcessingPendingVerification, got.ProcessingStatus)
	assert.Equal(t, model.ReconciliationAutoMatched, got.ReconciliationStatus)
	require.NotNil(t, got.RelatedTicketID)
	assert.Equal(t, ticketID, *got.RelatedTicketID)
	assert.True(t, got.ReconciliationProcessed)
	assert.NotNil(t, got.ReconciledAt)

	t.Run("non-match outcomes mark processed without reconciled_at", func(t *testing.T) {
		declined, err := repo.Create(ctx, &model.PaymentTransaction{
			TransactionID:      "TXN-2",
			Amount:             decimal.RequireFromString("45.00"),
			ResponseCode:       "05",
			ProcessingStatus:   model.ProcessingPendingVerification,
			VerificationStatus: model.VerificationUnverified,
		})
		require.NoError(t, err)

		require.NoError(t, repo.FinishReconciliation(ctx, declined.ID, ReconciliationResult{
			Error: "payment declined by gateway (response code 05)",
		}, time.Now()))

		got, err := repo.GetByID(ctx, declined.ID)
		require.NoError(t, err)
		assert.True(t, got.ReconciliationProcessed)
		assert.Nil(t, got.ReconciledAt)
	})
}

func TestPaymentRepository_FindTicketHolder(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	ticketID := int64(42)

	first, err := repo.Create(ctx, &model.PaymentTransaction{
		TransactionID:      "TXN-A",
		Amount:             decimal.RequireFromString("50.00"),
		ResponseCode:       "0",
		InvoiceNumber:      "000042",
		ProcessingStatus:   model.ProcessingPendingVerification,
		VerificationStatus: model.VerificationUnverified,
	})
	require.NoError(t, err)

	require.NoError(t, repo.FinishReconciliation(ctx, first.ID, ReconciliationResult{
		Status:          model.ReconciliationAutoMatched,
		RelatedTicketID: &ticketID,
	}, time.Now()))

	second, err := repo.Create(ctx, &model.PaymentTransaction{
		TransactionID:      "TXN-B",
		Amount:             decimal.RequireFromString("50.00"),
		ResponseCode:       "0",
		InvoiceNumber:      "000042",
		ProcessingStatus:   model.ProcessingPendingVerification,
		VerificationStatus: model.VerificationUnverified,
	})
	require.NoError(t, err)

	t.Run("held by the first payment", func(t *testing.T) {
		holder, err := repo.FindTicketHolder(ctx, ticketID, second.ID)
		require.NoError(t, err)
		require.NotNil(t, holder)
		assert.Equal(t, "TXN-A", holder.TransactionID)
	})

	t.Run("holder does not see itself", func(t *testing.T) {
		holder, err := repo.FindTicketHolder(ctx, ticketID, first.ID)
		require.NoError(t, err)
		assert.Nil(t, holder)
	})

	t.Run("mismatch holders also hold the ticket", func(t *testing.T) {
		otherTicket := int64(43)
		third, err := repo.Create(ctx, &model.PaymentTransaction{
			TransactionID:      "TXN-C",
			Amount:             decimal.RequireFromString("10.00"),
			ResponseCode:       "0",
			InvoiceNumber:      "000043",
			ProcessingStatus:   model.ProcessingPendingVerification,
			VerificationStatus: model.VerificationUnverified,
		})
		require.NoError(t, err)
		require.NoError(t, repo.FinishReconciliation(ctx, third.ID, ReconciliationResult{
			Status:          model.ReconciliationAmountMismatch,
			RelatedTicketID: &otherTicket,
			Error:           "amount mismatch: gateway 10.00, ticket 12.00",
		}, time.Now()))

		holder, err := repo.FindTicketHolder(ctx, otherTicket, 0)
		require.NoError(t, err)
		require.NotNil(t, holder)
		assert.Equal(t, "TXN-C", holder.TransactionID)
	})
}

func TestPaymentRepository_SetVerification(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	payment, err := repo.Create(ctx, &model.PaymentTransaction{
		TransactionID:      "TXN-V",
		Amount:             decimal.RequireFromString("20.00"),
		ResponseCode:       "000",
		ProcessingStatus:   model.ProcessingPendingVerification,
		VerificationStatus: model.VerificationUnverified,
	})
	require.NoError(t, err)

	err = repo.SetVerification(ctx, payment.ID, model.VerificationVerified, 5, "checked against trip sheet", time.Now())
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VerificationVerified, got.VerificationStatus)
	require.NotNil(t, got.VerifiedByID)
	assert.Equal(t, int64(5), *got.VerifiedByID)
	assert.NotNil(t, got.VerifiedAt)
}
