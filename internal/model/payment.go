package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessingStatus is the engine-side pipeline state of a settlement.
type ProcessingStatus string

const (
	ProcessingPendingVerification ProcessingStatus = "pending_verification"
	ProcessingReconciling         ProcessingStatus = "reconciling"
)

// ReconciliationStatus is the engine's classification outcome.
type ReconciliationStatus string

const (
	ReconciliationNone           ReconciliationStatus = ""
	ReconciliationNotFound       ReconciliationStatus = "not_found"
	ReconciliationAmountMismatch ReconciliationStatus = "amount_mismatch"
	ReconciliationDuplicate      ReconciliationStatus = "duplicate"
	ReconciliationAutoMatched    ReconciliationStatus = "auto_matched"
)

// VerificationStatus is the human verifier's verdict.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
	VerificationFlagged    VerificationStatus = "flagged"
)

// PaymentTransaction is one card-settlement record delivered by the
// payment gateway callback. At most one payment may hold a given ticket
// as its related ticket.
type PaymentTransaction struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"` // gateway-assigned id
	RRN           string          `json:"rrn"`
	Amount        decimal.Decimal `json:"amount"`
	ResponseCode  string          `json:"response_code"`
	InvoiceNumber string          `json:"invoice_number"` // bill reference, equals ticket number when well-formed
	CardType      string          `json:"card_type,omitempty"`
	CompanyCode   string          `json:"company_code,omitempty"`

	RelatedTicketID *int64 `json:"related_ticket_id,omitempty"`

	ProcessingStatus     ProcessingStatus     `json:"processing_status"`
	ReconciliationStatus ReconciliationStatus `json:"reconciliation_status"`
	ReconciliationError  string               `json:"reconciliation_error,omitempty"`

	// ReconciliationProcessed marks a settlement the engine has seen,
	// whatever the outcome. ReconciledAt is set only on an auto-match.
	ReconciliationProcessed bool `json:"-"`

	VerificationStatus VerificationStatus `json:"verification_status"`
	VerifiedByID       *int64             `json:"verified_by,omitempty"`
	VerificationNotes  string             `json:"verification_notes,omitempty"`

	ReconciledAt *time.Time `json:"reconciled_at,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`

	RawPayload string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsPaymentSuccessful reports whether the gateway approved the payment.
// The gateway signals approval with response code 0, padded or not.
func (p *PaymentTransaction) IsPaymentSuccessful() bool {
	switch p.ResponseCode {
	case "0", "00", "000":
		return true
	}
	return false
}

// PaymentEvent is the queue message published after a settlement record
// is created. Carrying only the id keeps redelivery idempotent: the
// consumer re-reads current state before acting.
type PaymentEvent struct {
	PaymentID int64 `json:"payment_id"`
}

type PaymentCreateRequest struct {
	TransactionID string `json:"transactionID"`
	RRN           string `json:"RRN"`
	Amount        string `json:"transactionAmount"`
	ResponseCode  string `json:"responseCode"`
	InvoiceNumber string `json:"invoiceNumber"`
	CardType      string `json:"cardType"`
	CompanyCode   string `json:"companyCode"`
}

func (p PaymentCreateRequest) Validate() error {
	if p.TransactionID == "" {
		return errRequired("transactionID")
	}
	if p.Amount == "" {
		return errRequired("transactionAmount")
	}
	return nil
}

// PaymentFilter controls list queries over settlements.
type PaymentFilter struct {
	ReconciliationStatuses []ReconciliationStatus
	VerificationStatuses   []VerificationStatus
	From                   *time.Time
	To                     *time.Time
	Limit                  int
	Offset                 int
	Desc                   bool
}
