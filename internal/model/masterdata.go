package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BusType struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Stage struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EmployeeType struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Code      string    `json:"code"` // e.g. DRV, CON
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Employee struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"company_id"`
	EmployeeTypeID int64     `json:"employee_type_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ContactNumber  string    `json:"contact_number,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Route struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	RouteCode string    `json:"route_code"`
	RouteName string    `json:"route_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fare carries a denormalized copy of its route's name; the master-data
// service refreshes it in the same transaction as a route rename.
type Fare struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id"`
	RouteID   int64           `json:"route_id"`
	RouteName string          `json:"route_name"`
	FromStage int             `json:"from_stage"`
	ToStage   int             `json:"to_stage"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type EmployeeUpdateRequest struct {
	IsActive *bool `json:"is_active"`
}

func (p EmployeeUpdateRequest) Validate() error {
	if p.IsActive == nil {
		return errRequired("is_active")
	}
	return nil
}

type RouteUpdateRequest struct {
	RouteName string `json:"route_name"`
	IsActive  *bool  `json:"is_active"`
}

func (p RouteUpdateRequest) Validate() error {
	if p.RouteName == "" {
		return errRequired("route_name")
	}
	return nil
}
