package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitops/ticket-backoffice/internal/model"
)

type TripCloseEntity struct {
	ID          int64  `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	DeviceID    string `db:"device_id"    gorm:"column:device_id;not null;uniqueIndex:ux_trip_close_identity"`
	CompanyCode string `db:"company_code" gorm:"column:company_code;index"`
	Schedule    int    `db:"schedule"     gorm:"column:schedule;not null;uniqueIndex:ux_trip_close_identity"`
	TripNo      int    `db:"trip_no"      gorm:"column:trip_no;not null;uniqueIndex:ux_trip_close_identity"`
	RouteCode   string `db:"route_code"   gorm:"column:route_code"`
	UpDownTrip  string `db:"up_down_trip" gorm:"column:up_down_trip"`

	StartDatetime time.Time `db:"start_datetime" gorm:"column:start_datetime;not null;uniqueIndex:ux_trip_close_identity"`
	EndDatetime   time.Time `db:"end_datetime"   gorm:"column:end_datetime"`

	StartTicketNo int64 `db:"start_ticket_no" gorm:"column:start_ticket_no"`
	EndTicketNo   int64 `db:"end_ticket_no"   gorm:"column:end_ticket_no"`

	FullCount     int `db:"full_count"     gorm:"column:full_count"`
	HalfCount     int `db:"half_count"     gorm:"column:half_count"`
	ST1Count      int `db:"st1_count"      gorm:"column:st1_count"`
	LuggageCount  int `db:"luggage_count"  gorm:"column:luggage_count"`
	PhysicalCount int `db:"physical_count" gorm:"column:physical_count"`
	PassCount     int `db:"pass_count"     gorm:"column:pass_count"`
	LadiesCount   int `db:"ladies_count"   gorm:"column:ladies_count"`
	SeniorCount   int `db:"senior_count"   gorm:"column:senior_count"`

	FullCollection     decimal.Decimal `db:"full_collection"     gorm:"column:full_collection;type:numeric(12,2)"`
	HalfCollection     decimal.Decimal `db:"half_collection"     gorm:"column:half_collection;type:numeric(12,2)"`
	STCollection       decimal.Decimal `db:"st_collection"       gorm:"column:st_collection;type:numeric(12,2)"`
	LuggageCollection  decimal.Decimal `db:"luggage_collection"  gorm:"column:luggage_collection;type:numeric(12,2)"`
	PhysicalCollection decimal.Decimal `db:"physical_collection" gorm:"column:physical_collection;type:numeric(12,2)"`
	LadiesCollection   decimal.Decimal `db:"ladies_collection"   gorm:"column:ladies_collection;type:numeric(12,2)"`
	SeniorCollection   decimal.Decimal `db:"senior_collection"   gorm:"column:senior_collection;type:numeric(12,2)"`
	AdjustCollection   decimal.Decimal `db:"adjust_collection"   gorm:"column:adjust_collection;type:numeric(12,2)"`
	ExpenseAmount      decimal.Decimal `db:"expense_amount"      gorm:"column:expense_amount;type:numeric(12,2)"`
	TotalCollection    decimal.Decimal `db:"total_collection"    gorm:"column:total_collection;type:numeric(12,2)"`

	UpiTicketCount  int             `db:"upi_ticket_count"  gorm:"column:upi_ticket_count"`
	UpiTicketAmount decimal.Decimal `db:"upi_ticket_amount" gorm:"column:upi_ticket_amount;type:numeric(12,2)"`

	ReceivedAt time.Time `db:"received_at" gorm:"column:received_at"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (TripCloseEntity) TableName() string {
	return "trip_close_records"
}

func toTripCloseEntity(m *model.TripCloseRecord) *TripCloseEntity {
	if m == nil {
		return nil
	}
	return &TripCloseEntity{
		ID:                 m.ID,
		DeviceID:           m.DeviceID,
		CompanyCode:        m.CompanyCode,
		Schedule:           m.Schedule,
		TripNo:             m.TripNo,
		RouteCode:          m.RouteCode,
		UpDownTrip:         m.UpDownTrip,
		StartDatetime:      m.StartDatetime,
		EndDatetime:        m.EndDatetime,
		StartTicketNo:      m.StartTicketNo,
		EndTicketNo:        m.EndTicketNo,
		FullCount:          m.FullCount,
		HalfCount:          m.HalfCount,
		ST1Count:           m.ST1Count,
		LuggageCount:       m.LuggageCount,
		PhysicalCount:      m.PhysicalCount,
		PassCount:          m.PassCount,
		LadiesCount:        m.LadiesCount,
		SeniorCount:        m.SeniorCount,
		FullCollection:     m.FullCollection,
		HalfCollection:     m.HalfCollection,
		STCollection:       m.STCollection,
		LuggageCollection:  m.LuggageCollection,
		PhysicalCollection: m.PhysicalCollection,
		LadiesCollection:   m.LadiesCollection,
		SeniorCollection:   m.SeniorCollection,
		AdjustCollection:   m.AdjustCollection,
		ExpenseAmount:      m.ExpenseAmount,
		TotalCollection:    m.TotalCollection,
		UpiTicketCount:     m.UpiTicketCount,
		UpiTicketAmount:    m.UpiTicketAmount,
		ReceivedAt:         m.ReceivedAt,
		CreatedAt:          m.CreatedAt,
	}
}

func toTripCloseModel(e *TripCloseEntity) *model.TripCloseRecord {
	if e == nil {
		return nil
	}
	return &model.TripCloseRecord{
		ID:                 e.ID,
		DeviceID:           e.DeviceID,
		CompanyCode:        e.CompanyCode,
		Schedule:           e.Schedule,
		TripNo:             e.TripNo,
		RouteCode:          e.RouteCode,
		UpDownTrip:         e.UpDownTrip,
		StartDatetime:      e.StartDatetime,
		EndDatetime:        e.EndDatetime,
		StartTicketNo:      e.StartTicketNo,
		EndTicketNo:        e.EndTicketNo,
		FullCount:          e.FullCount,
		HalfCount:          e.HalfCount,
		ST1Count:           e.ST1Count,
		LuggageCount:       e.LuggageCount,
		PhysicalCount:      e.PhysicalCount,
		PassCount:          e.PassCount,
		LadiesCount:        e.LadiesCount,
		SeniorCount:        e.SeniorCount,
		FullCollection:     e.FullCollection,
		HalfCollection:     e.HalfCollection,
		STCollection:       e.STCollection,
		LuggageCollection:  e.LuggageCollection,
		PhysicalCollection: e.PhysicalCollection,
		LadiesCollection:   e.LadiesCollection,
		SeniorCollection:   e.SeniorCollection,
		AdjustCollection:   e.AdjustCollection,
		ExpenseAmount:      e.ExpenseAmount,
		TotalCollection:    e.TotalCollection,
		UpiTicketCount:     e.UpiTicketCount,
		UpiTicketAmount:    e.UpiTicketAmount,
		ReceivedAt:         e.ReceivedAt,
		CreatedAt:          e.CreatedAt,
	}
}

func toTripCloseModels(entities []*TripCloseEntity) []*model.TripCloseRecord {
	if entities == nil {
		return nil
	}
	models := make([]*model.TripCloseRecord, len(entities))
	for i, e := range entities {
		models[i] = toTripCloseModel(e)
	}
	return models
}
