package repository

import (
	"context"
	"errors"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrRouteNotFound        = errors.New("route not found")
	ErrRouteCodeTaken       = errors.New("route code already exists")
	ErrFareNotFound         = errors.New("fare not found")
	ErrEmployeeTypeNotFound = errors.New("employee type not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
)

type MasterDataRepository struct {
	*pg.DB
}

func NewMasterDataRepository(db *pg.DB) *MasterDataRepository {
	return &MasterDataRepository{
		db,
	}
}

func (r *MasterDataRepository) CreateRoute(ctx context.Context, route *model.Route) (*model.Route, error) {
	entity := toRouteEntity(route)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRouteCodeTaken
		}
		return nil, err
	}

	return toRouteModel(entity), nil
}

func (r *MasterDataRepository) GetRoute(ctx context.Context, companyID, routeID int64) (*model.Route, error) {
	var entity RouteEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND company_id = ?", routeID, companyID).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	return toRouteModel(&entity), nil
}

func (r *MasterDataRepository) ListRoutes(ctx context.Context, companyID int64) ([]*model.Route, error) {
	var entities []*RouteEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("route_code ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toRouteModels(entities), nil
}

// UpdateRoute writes the new name and active flag. Run inside
// WithinTransaction together with SyncFareRouteNames so fares never carry
// a stale route name.
func (r *MasterDataRepository) UpdateRoute(ctx context.Context, companyID, routeID int64, name string, isActive *bool) error {
	updates := map[string]interface{}{
		"route_name": name,
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&RouteEntity{}).
		Where("id = ? AND company_id = ?", routeID, companyID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// SyncFareRouteNames refreshes the denormalized name on every fare of the
// route.
func (r *MasterDataRepository) SyncFareRouteNames(ctx context.Context, routeID int64, name string) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&FareEntity{}).
		Where("route_id = ?", routeID).
		Update("route_name", name).
		Error
}

func (r *MasterDataRepository) CreateFare(ctx context.Context, fare *model.Fare) (*model.Fare, error) {
	entity := toFareEntity(fare)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toFareModel(entity), nil
}

func (r *MasterDataRepository) ListFares(ctx context.Context, companyID int64, routeID *int64) ([]*model.Fare, error) {
	q := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID)

	if routeID != nil {
		q = q.Where("route_id = ?", *routeID)
	}

	var entities []*FareEntity
	if err := q.Order("route_id ASC, from_stage ASC, to_stage ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toFareModels(entities), nil
}

func (r *MasterDataRepository) DeleteFare(ctx context.Context, companyID, fareID int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ? AND company_id = ?", fareID, companyID).
		Delete(&FareEntity{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFareNotFound
	}
	return nil
}

func (r *MasterDataRepository) CreateBusType(ctx context.Context, busType *model.BusType) (*model.BusType, error) {
	entity := toBusTypeEntity(busType)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toBusTypeModel(entity), nil
}

func (r *MasterDataRepository) ListBusTypes(ctx context.Context, companyID int64) ([]*model.BusType, error) {
	var entities []*BusTypeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("code ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toBusTypeModels(entities), nil
}

func (r *MasterDataRepository) CreateStage(ctx context.Context, stage *model.Stage) (*model.Stage, error) {
	entity := toStageEntity(stage)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toStageModel(entity), nil
}

func (r *MasterDataRepository) ListStages(ctx context.Context, companyID int64) ([]*model.Stage, error) {
	var entities []*StageEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("sort_order ASC, code ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toStageModels(entities), nil
}

func (r *MasterDataRepository) CreateEmployeeType(ctx context.Context, employeeType *model.EmployeeType) (*model.EmployeeType, error) {
	entity := toEmployeeTypeEntity(employeeType)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toEmployeeTypeModel(entity), nil
}

func (r *MasterDataRepository) ListEmployeeTypes(ctx context.Context, companyID int64) ([]*model.EmployeeType, error) {
	var entities []*EmployeeTypeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("code ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toEmployeeTypeModels(entities), nil
}

func (r *MasterDataRepository) GetEmployeeType(ctx context.Context, companyID, typeID int64) (*model.EmployeeType, error) {
	var entity EmployeeTypeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND company_id = ?", typeID, companyID).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeTypeNotFound
		}
		return nil, err
	}

	return toEmployeeTypeModel(&entity), nil
}

func (r *MasterDataRepository) CreateEmployee(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	entity := toEmployeeEntity(employee)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toEmployeeModel(entity), nil
}

func (r *MasterDataRepository) ListEmployees(ctx context.Context, companyID int64) ([]*model.Employee, error) {
	var entities []*EmployeeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("code ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toEmployeeModels(entities), nil
}

func (r *MasterDataRepository) SetEmployeeActive(ctx context.Context, companyID, employeeID int64, active bool) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&EmployeeEntity{}).
		Where("id = ? AND company_id = ?", employeeID, companyID).
		Update("is_active", active)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
