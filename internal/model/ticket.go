package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode of a ticket as reported by the device: "0" cash, "1" card/UPI.
const (
	PaymentModeCash = "0"
	PaymentModeCard = "1"
)

// TicketTransaction is one ticket record as submitted by a handheld
// ticketing device. (device_id, trip_number, ticket_number, ticket_date,
// ticket_time) is unique; re-submissions are benign duplicates.
type TicketTransaction struct {
	ID           int64  `json:"id"`
	RequestType  string `json:"request_type"`
	DeviceID     string `json:"device_id"`
	TripNumber   string `json:"trip_number"`
	TicketNumber string `json:"ticket_number"`
	TicketDate   string `json:"ticket_date"` // YYYY-MM-DD
	TicketTime   string `json:"ticket_time"` // HH:MM:SS

	FromStage int `json:"from_stage"`
	ToStage   int `json:"to_stage"`

	FullCount int `json:"full_count"`
	HalfCount int `json:"half_count"`
	STCount   int `json:"st_count"`
	PhyCount  int `json:"phy_count"`
	LuggCount int `json:"lugg_count"`

	TicketAmount decimal.Decimal `json:"ticket_amount"`
	LuggAmount   decimal.Decimal `json:"lugg_amount"`

	TicketType   string          `json:"ticket_type"`
	AdjustAmount decimal.Decimal `json:"adjust_amount"`

	PassID        string          `json:"pass_id"`
	WarrantAmount decimal.Decimal `json:"warrant_amount"`

	RefundStatus string          `json:"refund_status"`
	RefundAmount decimal.Decimal `json:"refund_amount"`

	LadiesCount int `json:"ladies_count"`
	SeniorCount int `json:"senior_count"`

	TransactionID   string `json:"transaction_id"`
	PaymentMode     string `json:"ticket_status"` // "0" cash, "1" card
	ReferenceNumber string `json:"reference_number"`
	CompanyCode     string `json:"company_code"`

	RawPayload string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketFilter controls list queries over stored tickets.
type TicketFilter struct {
	DeviceID    *string
	CompanyCode *string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
	Desc        bool
}
