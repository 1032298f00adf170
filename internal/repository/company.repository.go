package repository

import (
	"context"
	"errors"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyCodeTaken     = errors.New("company code already exists")
	ErrValidationInProgress = errors.New("license validation already in progress")
)

type CompanyRepository struct {
	*pg.DB
}

func NewCompanyRepository(db *pg.DB) *CompanyRepository {
	return &CompanyRepository{
		db,
	}
}

func (r *CompanyRepository) Create(ctx context.Context, company *model.Company) (*model.Company, error) {
	entity := toCompanyEntity(company)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCompanyCodeTaken
		}
		return nil, err
	}

	return toCompanyModel(entity), nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	var entity CompanyEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	return toCompanyModel(&entity), nil
}

func (r *CompanyRepository) GetByCode(ctx context.Context, code string) (*model.Company, error) {
	var entity CompanyEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_code = ?", code).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	return toCompanyModel(&entity), nil
}

// GetForUpdate reads a company under SELECT FOR UPDATE. Callers must be
// inside WithinTransaction; the row lock serializes concurrent device
// slot acquisition per company.
func (r *CompanyRepository) GetForUpdate(ctx context.Context, id int64) (*model.Company, error) {
	var entity CompanyEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	return toCompanyModel(&entity), nil
}

func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]*model.Company, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&CompanyEntity{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entities []*CompanyEntity
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toCompanyModels(entities), total, nil
}

func (r *CompanyRepository) UpdateProfile(ctx context.Context, company *model.Company) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ?", company.ID).
		Updates(map[string]interface{}{
			"name":           company.Name,
			"email":          company.Email,
			"gst_number":     company.GSTNumber,
			"contact_person": company.ContactPerson,
			"contact_number": company.ContactNumber,
			"address":        company.Address,
			"address_2":      company.Address2,
			"city":           company.City,
			"state":          company.State,
			"zip_code":       company.ZipCode,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) SetCustomerID(ctx context.Context, id int64, customerID string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ?", id).
		Update("customer_id", customerID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// BeginValidation flips the status to Validating as a single
// compare-and-swap so only one validation run per company can be in
// flight. Any non-Validating state may start a run: an Expired or
// Blocked tenant re-validates through the same path.
func (r *CompanyRepository) BeginValidation(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ? AND authentication_status <> ?", id, string(model.AuthStatusValidating)).
		Update("authentication_status", string(model.AuthStatusValidating))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrValidationInProgress
	}

	return nil
}

func (r *CompanyRepository) SetAuthStatus(ctx context.Context, id int64, status model.AuthStatus) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ?", id).
		Update("authentication_status", string(status))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// ResetValidating reverts a stuck Validating back to Pending. No-op when
// the status already moved to a terminal state.
func (r *CompanyRepository) ResetValidating(ctx context.Context, id int64) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ? AND authentication_status = ?", id, string(model.AuthStatusValidating)).
		Update("authentication_status", string(model.AuthStatusPending)).
		Error
}

// ApplyLicenseGrant stores the authority's approval payload and flips the
// status to Approve in one update.
func (r *CompanyRepository) ApplyLicenseGrant(ctx context.Context, id int64, grant model.LicenseGrant) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"authentication_status":   string(model.AuthStatusApproved),
			"product_registration_id": grant.ProductRegistrationID,
			"unique_identifier":       grant.UniqueIdentifier,
			"product_from_date":       grant.ProductFromDate,
			"product_to_date":         grant.ProductToDate,
			"project_code":            grant.ProjectCode,
			"device_count":            grant.DeviceCount,
			"branch_count":            grant.BranchCount,
			"mobile_device_count":     grant.MobileDeviceCount,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
