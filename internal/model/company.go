package model

import (
	"time"
)

// AuthStatus is the license lifecycle state of a company.
// Transitions: Pending -> Validating -> {Approved, Expired, Blocked}.
// Validating is transient and must never survive a validation run.
type AuthStatus string

const (
	AuthStatusPending    AuthStatus = "Pending"
	AuthStatusValidating AuthStatus = "Validating"
	AuthStatusApproved   AuthStatus = "Approve"
	AuthStatusExpired    AuthStatus = "Expired"
	AuthStatusBlocked    AuthStatus = "Block"
)

type Company struct {
	ID          int64  `json:"id"`
	CompanyCode string `json:"company_code"`
	Name        string `json:"company_name"`
	Email       string `json:"company_email"`
	GSTNumber   string `json:"gst_number,omitempty"`

	ContactPerson string `json:"contact_person"`
	ContactNumber string `json:"contact_number"`

	Address  string `json:"address"`
	Address2 string `json:"address_2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`

	// license server fields
	CustomerID            string     `json:"customer_id,omitempty"` // external id assigned at registration
	AuthenticationStatus  AuthStatus `json:"authentication_status"`
	ProductRegistrationID int64      `json:"product_registration_id,omitempty"`
	UniqueIdentifier      string     `json:"unique_identifier,omitempty"`
	ProductFromDate       *time.Time `json:"product_from_date,omitempty"`
	ProductToDate         *time.Time `json:"product_to_date,omitempty"`
	ProjectCode           string     `json:"project_code,omitempty"`

	// quotas copied from the authority on approval
	DeviceCount       int `json:"device_count"`
	BranchCount       int `json:"branch_count"`
	MobileDeviceCount int `json:"mobile_device_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Company) IsValidated() bool {
	return c.AuthenticationStatus == AuthStatusApproved
}

func (c *Company) NeedsValidation() bool {
	return c.AuthenticationStatus == AuthStatusPending
}

func (c *Company) IsValidating() bool {
	return c.AuthenticationStatus == AuthStatusValidating
}

// LicenseExpired reports whether the validity window has passed,
// independent of the stored status.
func (c *Company) LicenseExpired(now time.Time) bool {
	return c.ProductToDate != nil && now.After(endOfDay(*c.ProductToDate))
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// LicenseGrant is the authority's approval payload, applied to a company
// as one atomic update.
type LicenseGrant struct {
	ProductRegistrationID int64
	UniqueIdentifier      string
	ProductFromDate       *time.Time
	ProductToDate         *time.Time
	ProjectCode           string
	DeviceCount           int
	BranchCount           int
	MobileDeviceCount     int
}

type CompanyCreateRequest struct {
	CompanyCode   string `json:"company_code"`
	Name          string `json:"company_name"`
	Email         string `json:"company_email"`
	GSTNumber     string `json:"gst_number"`
	ContactPerson string `json:"contact_person"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	Address2      string `json:"address_2"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
}

func (p CompanyCreateRequest) Validate() error {
	if p.Name == "" {
		return errRequired("company_name")
	}
	if p.Email == "" {
		return errRequired("company_email")
	}
	if p.ContactPerson == "" {
		return errRequired("contact_person")
	}
	return nil
}
