package repository

import (
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
)

type CompanyEntity struct {
	ID          int64  `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	CompanyCode string `db:"company_code" gorm:"column:company_code;not null;unique"`
	Name        string `db:"name"         gorm:"column:name;not null"`
	Email       string `db:"email"        gorm:"column:email;not null"`
	GSTNumber   string `db:"gst_number"   gorm:"column:gst_number"`

	ContactPerson string `db:"contact_person" gorm:"column:contact_person"`
	ContactNumber string `db:"contact_number" gorm:"column:contact_number"`

	Address  string `db:"address"   gorm:"column:address"`
	Address2 string `db:"address_2" gorm:"column:address_2"`
	City     string `db:"city"      gorm:"column:city"`
	State    string `db:"state"     gorm:"column:state"`
	ZipCode  string `db:"zip_code"  gorm:"column:zip_code"`

	CustomerID            string     `db:"customer_id"             gorm:"column:customer_id"`
	AuthenticationStatus  string     `db:"authentication_status"   gorm:"column:authentication_status;not null;default:Pending"`
	ProductRegistrationID int64      `db:"product_registration_id" gorm:"column:product_registration_id"`
	UniqueIdentifier      string     `db:"unique_identifier"       gorm:"column:unique_identifier"`
	ProductFromDate       *time.Time `db:"product_from_date"       gorm:"column:product_from_date"`
	ProductToDate         *time.Time `db:"product_to_date"         gorm:"column:product_to_date"`
	ProjectCode           string     `db:"project_code"            gorm:"column:project_code"`

	DeviceCount       int `db:"device_count"        gorm:"column:device_count;not null;default:0"`
	BranchCount       int `db:"branch_count"        gorm:"column:branch_count;not null;default:0"`
	MobileDeviceCount int `db:"mobile_device_count" gorm:"column:mobile_device_count;not null;default:0"`

	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (CompanyEntity) TableName() string {
	return "companies"
}

func toCompanyEntity(m *model.Company) *CompanyEntity {
	if m == nil {
		return nil
	}
	return &CompanyEntity{
		ID:                    m.ID,
		CompanyCode:           m.CompanyCode,
		Name:                  m.Name,
		Email:                 m.Email,
		GSTNumber:             m.GSTNumber,
		ContactPerson:         m.ContactPerson,
		ContactNumber:         m.ContactNumber,
		Address:               m.Address,
		Address2:              m.Address2,
		City:                  m.City,
		State:                 m.State,
		ZipCode:               m.ZipCode,
		CustomerID:            m.CustomerID,
		AuthenticationStatus:  string(m.AuthenticationStatus),
		ProductRegistrationID: m.ProductRegistrationID,
		UniqueIdentifier:      m.UniqueIdentifier,
		ProductFromDate:       m.ProductFromDate,
		ProductToDate:         m.ProductToDate,
		ProjectCode:           m.ProjectCode,
		DeviceCount:           m.DeviceCount,
		BranchCount:           m.BranchCount,
		MobileDeviceCount:     m.MobileDeviceCount,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func toCompanyModel(e *CompanyEntity) *model.Company {
	if e == nil {
		return nil
	}
	return &model.Company{
		ID:                    e.ID,
		CompanyCode:           e.CompanyCode,
		Name:                  e.Name,
		Email:                 e.Email,
		GSTNumber:             e.GSTNumber,
		ContactPerson:         e.ContactPerson,
		ContactNumber:         e.ContactNumber,
		Address:               e.Address,
		Address2:              e.Address2,
		City:                  e.City,
		State:                 e.State,
		ZipCode:               e.ZipCode,
		CustomerID:            e.CustomerID,
		AuthenticationStatus:  model.AuthStatus(e.AuthenticationStatus),
		ProductRegistrationID: e.ProductRegistrationID,
		UniqueIdentifier:      e.UniqueIdentifier,
		ProductFromDate:       e.ProductFromDate,
		ProductToDate:         e.ProductToDate,
		ProjectCode:           e.ProjectCode,
		DeviceCount:           e.DeviceCount,
		BranchCount:           e.BranchCount,
		MobileDeviceCount:     e.MobileDeviceCount,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

func toCompanyModels(entities []*CompanyEntity) []*model.Company {
	if entities == nil {
		return nil
	}
	models := make([]*model.Company, len(entities))
	for i, e := range entities {
		models[i] = toCompanyModel(e)
	}
	return models
}
