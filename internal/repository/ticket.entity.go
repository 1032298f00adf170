package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitops/ticket-backoffice/internal/model"
)

type TicketTransactionEntity struct {
	ID           int64  `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	RequestType  string `db:"request_type"  gorm:"column:request_type"`
	DeviceID     string `db:"device_id"     gorm:"column:device_id;not null;uniqueIndex:ux_ticket_identity"`
	TripNumber   string `db:"trip_number"   gorm:"column:trip_number;not null;uniqueIndex:ux_ticket_identity"`
	TicketNumber string `db:"ticket_number" gorm:"column:ticket_number;not null;uniqueIndex:ux_ticket_identity;index"`
	TicketDate   string `db:"ticket_date"   gorm:"column:ticket_date;not null;uniqueIndex:ux_ticket_identity"`
	TicketTime   string `db:"ticket_time"   gorm:"column:ticket_time;not null;uniqueIndex:ux_ticket_identity"`

	FromStage int `db:"from_stage" gorm:"column:from_stage"`
	ToStage   int `db:"to_stage"   gorm:"column:to_stage"`

	FullCount int `db:"full_count" gorm:"column:full_count"`
	HalfCount int `db:"half_count" gorm:"column:half_count"`
	STCount   int `db:"st_count"   gorm:"column:st_count"`
	PhyCount  int `db:"phy_count"  gorm:"column:phy_count"`
	LuggCount int `db:"lugg_count" gorm:"column:lugg_count"`

	TicketAmount decimal.Decimal `db:"ticket_amount" gorm:"column:ticket_amount;type:numeric(12,2)"`
	LuggAmount   decimal.Decimal `db:"lugg_amount"   gorm:"column:lugg_amount;type:numeric(12,2)"`

	TicketType   string          `db:"ticket_type"   gorm:"column:ticket_type"`
	AdjustAmount decimal.Decimal `db:"adjust_amount" gorm:"column:adjust_amount;type:numeric(12,2)"`

	PassID        string          `db:"pass_id"        gorm:"column:pass_id"`
	WarrantAmount decimal.Decimal `db:"warrant_amount" gorm:"column:warrant_amount;type:numeric(12,2)"`

	RefundStatus string          `db:"refund_status" gorm:"column:refund_status"`
	RefundAmount decimal.Decimal `db:"refund_amount" gorm:"column:refund_amount;type:numeric(12,2)"`

	LadiesCount int `db:"ladies_count" gorm:"column:ladies_count"`
	SeniorCount int `db:"senior_count" gorm:"column:senior_count"`

	TransactionID   string `db:"transaction_id"   gorm:"column:transaction_id;index"`
	PaymentMode     string `db:"payment_mode"     gorm:"column:payment_mode"`
	ReferenceNumber string `db:"reference_number" gorm:"column:reference_number"`
	CompanyCode     string `db:"company_code"     gorm:"column:company_code;index"`

	RawPayload string    `db:"raw_payload" gorm:"column:raw_payload"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (TicketTransactionEntity) TableName() string {
	return "ticket_transactions"
}

func toTicketEntity(m *model.TicketTransaction) *TicketTransactionEntity {
	if m == nil {
		return nil
	}
	return &TicketTransactionEntity{
		ID:              m.ID,
		RequestType:     m.RequestType,
		DeviceID:        m.DeviceID,
		TripNumber:      m.TripNumber,
		TicketNumber:    m.TicketNumber,
		TicketDate:      m.TicketDate,
		TicketTime:      m.TicketTime,
		FromStage:       m.FromStage,
		ToStage:         m.ToStage,
		FullCount:       m.FullCount,
		HalfCount:       m.HalfCount,
		STCount:         m.STCount,
		PhyCount:        m.PhyCount,
		LuggCount:       m.LuggCount,
		TicketAmount:    m.TicketAmount,
		LuggAmount:      m.LuggAmount,
		TicketType:      m.TicketType,
		AdjustAmount:    m.AdjustAmount,
		PassID:          m.PassID,
		WarrantAmount:   m.WarrantAmount,
		RefundStatus:    m.RefundStatus,
		RefundAmount:    m.RefundAmount,
		LadiesCount:     m.LadiesCount,
		SeniorCount:     m.SeniorCount,
		TransactionID:   m.TransactionID,
		PaymentMode:     m.PaymentMode,
		ReferenceNumber: m.ReferenceNumber,
		CompanyCode:     m.CompanyCode,
		RawPayload:      m.RawPayload,
		CreatedAt:       m.CreatedAt,
	}
}

func toTicketModel(e *TicketTransactionEntity) *model.TicketTransaction {
	if e == nil {
		return nil
	}
	return &model.TicketTransaction{
		ID:              e.ID,
		RequestType:     e.RequestType,
		DeviceID:        e.DeviceID,
		TripNumber:      e.TripNumber,
		TicketNumber:    e.TicketNumber,
		TicketDate:      e.TicketDate,
		TicketTime:      e.TicketTime,
		FromStage:       e.FromStage,
		ToStage:         e.ToStage,
		FullCount:       e.FullCount,
		HalfCount:       e.HalfCount,
		STCount:         e.STCount,
		PhyCount:        e.PhyCount,
		LuggCount:       e.LuggCount,
		TicketAmount:    e.TicketAmount,
		LuggAmount:      e.LuggAmount,
		TicketType:      e.TicketType,
		AdjustAmount:    e.AdjustAmount,
		PassID:          e.PassID,
		WarrantAmount:   e.WarrantAmount,
		RefundStatus:    e.RefundStatus,
		RefundAmount:    e.RefundAmount,
		LadiesCount:     e.LadiesCount,
		SeniorCount:     e.SeniorCount,
		TransactionID:   e.TransactionID,
		PaymentMode:     e.PaymentMode,
		ReferenceNumber: e.ReferenceNumber,
		CompanyCode:     e.CompanyCode,
		RawPayload:      e.RawPayload,
		CreatedAt:       e.CreatedAt,
	}
}

func toTicketModels(entities []*TicketTransactionEntity) []*model.TicketTransaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.TicketTransaction, len(entities))
	for i, e := range entities {
		models[i] = toTicketModel(e)
	}
	return models
}
