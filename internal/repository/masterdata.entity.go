package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitops/ticket-backoffice/internal/model"
)

type RouteEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID int64     `db:"company_id" gorm:"column:company_id;not null;uniqueIndex:ux_route_code"`
	RouteCode string    `db:"route_code" gorm:"column:route_code;not null;uniqueIndex:ux_route_code"`
	RouteName string    `db:"route_name" gorm:"column:route_name;not null"`
	IsActive  bool      `db:"is_active"  gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (RouteEntity) TableName() string {
	return "routes"
}

type FareEntity struct {
	ID        int64           `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID int64           `db:"company_id" gorm:"column:company_id;not null;index"`
	RouteID   int64           `db:"route_id"   gorm:"column:route_id;not null;index"`
	RouteName string          `db:"route_name" gorm:"column:route_name;not null"`
	FromStage int             `db:"from_stage" gorm:"column:from_stage;not null"`
	ToStage   int             `db:"to_stage"   gorm:"column:to_stage;not null"`
	Amount    decimal.Decimal `db:"amount"     gorm:"column:amount;type:numeric(12,2)"`
	CreatedAt time.Time       `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (FareEntity) TableName() string {
	return "fares"
}

type StageEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID int64     `db:"company_id" gorm:"column:company_id;not null;index"`
	Code      string    `db:"code"       gorm:"column:code;not null"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	SortOrder int       `db:"sort_order" gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (StageEntity) TableName() string {
	return "stages"
}

type BusTypeEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID int64     `db:"company_id" gorm:"column:company_id;not null;index"`
	Code      string    `db:"code"       gorm:"column:code;not null"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	IsActive  bool      `db:"is_active"  gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (BusTypeEntity) TableName() string {
	return "bus_types"
}

type EmployeeTypeEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID int64     `db:"company_id" gorm:"column:company_id;not null;index"`
	Code      string    `db:"code"       gorm:"column:code;not null"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (EmployeeTypeEntity) TableName() string {
	return "employee_types"
}

type EmployeeEntity struct {
	ID             int64     `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID      int64     `db:"company_id"       gorm:"column:company_id;not null;index"`
	EmployeeTypeID int64     `db:"employee_type_id" gorm:"column:employee_type_id;not null"`
	Code           string    `db:"code"             gorm:"column:code;not null"`
	Name           string    `db:"name"             gorm:"column:name;not null"`
	ContactNumber  string    `db:"contact_number"   gorm:"column:contact_number"`
	IsActive       bool      `db:"is_active"        gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `db:"updated_at"       gorm:"column:updated_at;autoUpdateTime"`
}

func (EmployeeEntity) TableName() string {
	return "employees"
}

func toRouteEntity(m *model.Route) *RouteEntity {
	if m == nil {
		return nil
	}
	return &RouteEntity{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		RouteCode: m.RouteCode,
		RouteName: m.RouteName,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toRouteModel(e *RouteEntity) *model.Route {
	if e == nil {
		return nil
	}
	return &model.Route{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		RouteCode: e.RouteCode,
		RouteName: e.RouteName,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toRouteModels(entities []*RouteEntity) []*model.Route {
	if entities == nil {
		return nil
	}
	models := make([]*model.Route, len(entities))
	for i, e := range entities {
		models[i] = toRouteModel(e)
	}
	return models
}

func toFareEntity(m *model.Fare) *FareEntity {
	if m == nil {
		return nil
	}
	return &FareEntity{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		RouteID:   m.RouteID,
		RouteName: m.RouteName,
		FromStage: m.FromStage,
		ToStage:   m.ToStage,
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toFareModel(e *FareEntity) *model.Fare {
	if e == nil {
		return nil
	}
	return &model.Fare{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		RouteID:   e.RouteID,
		RouteName: e.RouteName,
		FromStage: e.FromStage,
		ToStage:   e.ToStage,
		Amount:    e.Amount,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toFareModels(entities []*FareEntity) []*model.Fare {
	if entities == nil {
		return nil
	}
	models := make([]*model.Fare, len(entities))
	for i, e := range entities {
		models[i] = toFareModel(e)
	}
	return models
}

func toBusTypeEntity(m *model.BusType) *BusTypeEntity {
	if m == nil {
		return nil
	}
	return &BusTypeEntity{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Code:      m.Code,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toBusTypeModel(e *BusTypeEntity) *model.BusType {
	if e == nil {
		return nil
	}
	return &model.BusType{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		Code:      e.Code,
		Name:      e.Name,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toBusTypeModels(entities []*BusTypeEntity) []*model.BusType {
	if entities == nil {
		return nil
	}
	models := make([]*model.BusType, len(entities))
	for i, e := range entities {
		models[i] = toBusTypeModel(e)
	}
	return models
}

func toStageEntity(m *model.Stage) *StageEntity {
	if m == nil {
		return nil
	}
	return &StageEntity{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Code:      m.Code,
		Name:      m.Name,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toStageModel(e *StageEntity) *model.Stage {
	if e == nil {
		return nil
	}
	return &model.Stage{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		Code:      e.Code,
		Name:      e.Name,
		SortOrder: e.SortOrder,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toStageModels(entities []*StageEntity) []*model.Stage {
	if entities == nil {
		return nil
	}
	models := make([]*model.Stage, len(entities))
	for i, e := range entities {
		models[i] = toStageModel(e)
	}
	return models
}

func toEmployeeTypeEntity(m *model.EmployeeType) *EmployeeTypeEntity {
	if m == nil {
		return nil
	}
	return &EmployeeTypeEntity{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Code:      m.Code,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func toEmployeeTypeModel(e *EmployeeTypeEntity) *model.EmployeeType {
	if e == nil {
		return nil
	}
	return &model.EmployeeType{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		Code:      e.Code,
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
	}
}

func toEmployeeTypeModels(entities []*EmployeeTypeEntity) []*model.EmployeeType {
	if entities == nil {
		return nil
	}
	models := make([]*model.EmployeeType, len(entities))
	for i, e := range entities {
		models[i] = toEmployeeTypeModel(e)
	}
	return models
}

func toEmployeeEntity(m *model.Employee) *EmployeeEntity {
	if m == nil {
		return nil
	}
	return &EmployeeEntity{
		ID:             m.ID,
		CompanyID:      m.CompanyID,
		EmployeeTypeID: m.EmployeeTypeID,
		Code:           m.Code,
		Name:           m.Name,
		ContactNumber:  m.ContactNumber,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toEmployeeModel(e *EmployeeEntity) *model.Employee {
	if e == nil {
		return nil
	}
	return &model.Employee{
		ID:             e.ID,
		CompanyID:      e.CompanyID,
		EmployeeTypeID: e.EmployeeTypeID,
		Code:           e.Code,
		Name:           e.Name,
		ContactNumber:  e.ContactNumber,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toEmployeeModels(entities []*EmployeeEntity) []*model.Employee {
	if entities == nil {
		return nil
	}
	models := make([]*model.Employee, len(entities))
	for i, e := range entities {
		models[i] = toEmployeeModel(e)
	}
	return models
}
