package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripCloseRecord is the end-of-trip summary a device uploads when the
// conductor closes a trip. (device_id, schedule, trip_no, start_datetime)
// is unique.
type TripCloseRecord struct {
	ID          int64  `json:"id"`
	DeviceID    string `json:"device_id"`
	CompanyCode string `json:"company_code"`
	Schedule    int    `json:"schedule"`
	TripNo      int    `json:"trip_no"`
	RouteCode   string `json:"route_code"`
	UpDownTrip  string `json:"up_down_trip"` // U or D

	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`

	StartTicketNo int64 `json:"start_ticket_no"`
	EndTicketNo   int64 `json:"end_ticket_no"`

	FullCount     int `json:"full_count"`
	HalfCount     int `json:"half_count"`
	ST1Count      int `json:"st1_count"`
	LuggageCount  int `json:"luggage_count"`
	PhysicalCount int `json:"physical_count"`
	PassCount     int `json:"pass_count"`
	LadiesCount   int `json:"ladies_count"`
	SeniorCount   int `json:"senior_count"`

	FullCollection     decimal.Decimal `json:"full_collection"`
	HalfCollection     decimal.Decimal `json:"half_collection"`
	STCollection       decimal.Decimal `json:"st_collection"`
	LuggageCollection  decimal.Decimal `json:"luggage_collection"`
	PhysicalCollection decimal.Decimal `json:"physical_collection"`
	LadiesCollection   decimal.Decimal `json:"ladies_collection"`
	SeniorCollection   decimal.Decimal `json:"senior_collection"`
	AdjustCollection   decimal.Decimal `json:"adjust_collection"` // can be negative
	ExpenseAmount      decimal.Decimal `json:"expense_amount"`
	TotalCollection    decimal.Decimal `json:"total_collection"`

	UpiTicketCount  int             `json:"upi_ticket_count"`
	UpiTicketAmount decimal.Decimal `json:"upi_ticket_amount"`

	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (t *TripCloseRecord) TotalPassengers() int {
	return t.FullCount + t.HalfCount + t.ST1Count + t.PhysicalCount +
		t.PassCount + t.LadiesCount + t.SeniorCount
}

func (t *TripCloseRecord) TicketsIssued() int64 {
	if t.EndTicketNo > 0 && t.StartTicketNo > 0 {
		return t.EndTicketNo - t.StartTicketNo + 1
	}
	return 0
}
