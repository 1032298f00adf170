package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitops/ticket-backoffice/internal/model"
)

type PaymentTransactionEntity struct {
	ID            int64           `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	TransactionID string          `db:"transaction_id" gorm:"column:transaction_id;not null;index"`
	RRN           string          `db:"rrn"            gorm:"column:rrn;index"`
	Amount        decimal.Decimal `db:"amount"         gorm:"column:amount;type:numeric(12,2)"`
	ResponseCode  string          `db:"response_code"  gorm:"column:response_code;not null"`
	InvoiceNumber string          `db:"invoice_number" gorm:"column:invoice_number;index"`
	CardType      string          `db:"card_type"      gorm:"column:card_type"`
	CompanyCode   string          `db:"company_code"   gorm:"column:company_code;index"`

	RelatedTicketID *int64 `db:"related_ticket_id" gorm:"column:related_ticket_id;index"`

	ProcessingStatus        string `db:"processing_status"        gorm:"column:processing_status;not null;default:pending_verification"`
	ReconciliationStatus    string `db:"reconciliation_status"    gorm:"column:reconciliation_status;index"`
	ReconciliationError     string `db:"reconciliation_error"     gorm:"column:reconciliation_error"`
	ReconciliationProcessed bool   `db:"reconciliation_processed" gorm:"column:reconciliation_processed;not null;default:false"`

	VerificationStatus string `db:"verification_status" gorm:"column:verification_status;not null;default:unverified"`
	VerifiedByID       *int64 `db:"verified_by_id"      gorm:"column:verified_by_id"`
	VerificationNotes  string `db:"verification_notes"  gorm:"column:verification_notes"`

	ReconciledAt *time.Time `db:"reconciled_at" gorm:"column:reconciled_at"`
	VerifiedAt   *time.Time `db:"verified_at"   gorm:"column:verified_at"`
	SettledAt    *time.Time `db:"settled_at"    gorm:"column:settled_at"`

	RawPayload string    `db:"raw_payload" gorm:"column:raw_payload"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `db:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentTransactionEntity) TableName() string {
	return "payment_transactions"
}

func toPaymentEntity(m *model.PaymentTransaction) *PaymentTransactionEntity {
	if m == nil {
		return nil
	}
	return &PaymentTransactionEntity{
		ID:                      m.ID,
		TransactionID:           m.TransactionID,
		RRN:                     m.RRN,
		Amount:                  m.Amount,
		ResponseCode:            m.ResponseCode,
		InvoiceNumber:           m.InvoiceNumber,
		CardType:                m.CardType,
		CompanyCode:             m.CompanyCode,
		RelatedTicketID:         m.RelatedTicketID,
		ProcessingStatus:        string(m.ProcessingStatus),
		ReconciliationStatus:    string(m.ReconciliationStatus),
		ReconciliationError:     m.ReconciliationError,
		ReconciliationProcessed: m.ReconciliationProcessed,
		VerificationStatus:      string(m.VerificationStatus),
		VerifiedByID:            m.VerifiedByID,
		VerificationNotes:       m.VerificationNotes,
		ReconciledAt:            m.ReconciledAt,
		VerifiedAt:              m.VerifiedAt,
		SettledAt:               m.SettledAt,
		RawPayload:              m.RawPayload,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

func toPaymentModel(e *PaymentTransactionEntity) *model.PaymentTransaction {
	if e == nil {
		return nil
	}
	return &model.PaymentTransaction{
		ID:                      e.ID,
		TransactionID:           e.TransactionID,
		RRN:                     e.RRN,
		Amount:                  e.Amount,
		ResponseCode:            e.ResponseCode,
		InvoiceNumber:           e.InvoiceNumber,
		CardType:                e.CardType,
		CompanyCode:             e.CompanyCode,
		RelatedTicketID:         e.RelatedTicketID,
		ProcessingStatus:        model.ProcessingStatus(e.ProcessingStatus),
		ReconciliationStatus:    model.ReconciliationStatus(e.ReconciliationStatus),
		ReconciliationError:     e.ReconciliationError,
		ReconciliationProcessed: e.ReconciliationProcessed,
		VerificationStatus:      model.VerificationStatus(e.VerificationStatus),
		VerifiedByID:            e.VerifiedByID,
		VerificationNotes:       e.VerificationNotes,
		ReconciledAt:            e.ReconciledAt,
		VerifiedAt:              e.VerifiedAt,
		SettledAt:               e.SettledAt,
		RawPayload:              e.RawPayload,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}

func toPaymentModels(entities []*PaymentTransactionEntity) []*model.PaymentTransaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.PaymentTransaction, len(entities))
	for i, e := range entities {
		models[i] = toPaymentModel(e)
	}
	return models
}
