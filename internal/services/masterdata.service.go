package services

import (
	"context"
	"errors"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

var (
	ErrRouteNotFound        = errors.New("route not found")
	ErrEmployeeTypeNotFound = errors.New("employee type not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
)

type MasterDataStore interface {
	CreateRoute(ctx context.Context, route *model.Route) (*model.Route, error)
	GetRoute(ctx context.Context, companyID, routeID int64) (*model.Route, error)
	ListRoutes(ctx context.Context, companyID int64) ([]*model.Route, error)
	UpdateRoute(ctx context.Context, companyID, routeID int64, name string, isActive *bool) error
	SyncFareRouteNames(ctx context.Context, routeID int64, name string) error
	CreateFare(ctx context.Context, fare *model.Fare) (*model.Fare, error)
	ListFares(ctx context.Context, companyID int64, routeID *int64) ([]*model.Fare, error)
	DeleteFare(ctx context.Context, companyID, fareID int64) error
	CreateBusType(ctx context.Context, busType *model.BusType) (*model.BusType, error)
	ListBusTypes(ctx context.Context, companyID int64) ([]*model.BusType, error)
	CreateStage(ctx context.Context, stage *model.Stage) (*model.Stage, error)
	ListStages(ctx context.Context, companyID int64) ([]*model.Stage, error)
	CreateEmployeeType(ctx context.Context, employeeType *model.EmployeeType) (*model.EmployeeType, error)
	ListEmployeeTypes(ctx context.Context, companyID int64) ([]*model.EmployeeType, error)
	GetEmployeeType(ctx context.Context, companyID, typeID int64) (*model.EmployeeType, error)
	CreateEmployee(ctx context.Context, employee *model.Employee) (*model.Employee, error)
	ListEmployees(ctx context.Context, companyID int64) ([]*model.Employee, error)
	SetEmployeeActive(ctx context.Context, companyID, employeeID int64, active bool) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MasterDataService struct {
	store MasterDataStore
}

func NewMasterDataService(store MasterDataStore) *MasterDataService {
	return &MasterDataService{store: store}
}

func (s *MasterDataService) CreateRoute(ctx context.Context, route *model.Route) (*model.Route, error) {
	return s.store.CreateRoute(ctx, route)
}

func (s *MasterDataService) ListRoutes(ctx context.Context, companyID int64) ([]*model.Route, error) {
	return s.store.ListRoutes(ctx, companyID)
}

// UpdateRoute renames a route. When the name actually changes, the
// denormalized copy on every fare of the route is refreshed in the same
// transaction, so a reader never sees a fare pointing at a stale name.
func (s *MasterDataService) UpdateRoute(ctx context.Context, companyID, routeID int64, req model.RouteUpdateRequest) (*model.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.store.GetRoute(ctx, companyID, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	nameChanged := current.RouteName != req.RouteName

	err = s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.UpdateRoute(ctx, companyID, routeID, req.RouteName, req.IsActive); err != nil {
			return err
		}
		if nameChanged {
			return s.store.SyncFareRouteNames(ctx, routeID, req.RouteName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if nameChanged {
		logger.Info("route renamed, fares updated", "route_id", routeID, "old_name", current.RouteName, "new_name", req.RouteName)
	}

	return s.store.GetRoute(ctx, companyID, routeID)
}

func (s *MasterDataService) CreateFare(ctx context.Context, fare *model.Fare) (*model.Fare, error) {
	route, err := s.store.GetRoute(ctx, fare.CompanyID, fare.RouteID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	fare.RouteName = route.RouteName
	return s.store.CreateFare(ctx, fare)
}

func (s *MasterDataService) ListFares(ctx context.Context, companyID int64, routeID *int64) ([]*model.Fare, error) {
	return s.store.ListFares(ctx, companyID, routeID)
}

func (s *MasterDataService) DeleteFare(ctx context.Context, companyID, fareID int64) error {
	return s.store.DeleteFare(ctx, companyID, fareID)
}

func (s *MasterDataService) CreateBusType(ctx context.Context, busType *model.BusType) (*model.BusType, error) {
	return s.store.CreateBusType(ctx, busType)
}

func (s *MasterDataService) ListBusTypes(ctx context.Context, companyID int64) ([]*model.BusType, error) {
	return s.store.ListBusTypes(ctx, companyID)
}

func (s *MasterDataService) CreateStage(ctx context.Context, stage *model.Stage) (*model.Stage, error) {
	return s.store.CreateStage(ctx, stage)
}

func (s *MasterDataService) ListStages(ctx context.Context, companyID int64) ([]*model.Stage, error) {
	return s.store.ListStages(ctx, companyID)
}

func (s *MasterDataService) CreateEmployeeType(ctx context.Context, employeeType *model.EmployeeType) (*model.EmployeeType, error) {
	return s.store.CreateEmployeeType(ctx, employeeType)
}

func (s *MasterDataService) ListEmployeeTypes(ctx context.Context, companyID int64) ([]*model.EmployeeType, error) {
	return s.store.ListEmployeeTypes(ctx, companyID)
}

// CreateEmployee rejects an employee pointing at a type the company does
// not own before anything is written.
func (s *MasterDataService) CreateEmployee(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	if _, err := s.store.GetEmployeeType(ctx, employee.CompanyID, employee.EmployeeTypeID); err != nil {
		if errors.Is(err, repository.ErrEmployeeTypeNotFound) {
			return nil, ErrEmployeeTypeNotFound
		}
		return nil, err
	}

	return s.store.CreateEmployee(ctx, employee)
}

func (s *MasterDataService) ListEmployees(ctx context.Context, companyID int64) ([]*model.Employee, error) {
	return s.store.ListEmployees(ctx, companyID)
}

func (s *MasterDataService) SetEmployeeActive(ctx context.Context, companyID, employeeID int64, req model.EmployeeUpdateRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	err := s.store.SetEmployeeActive(ctx, companyID, employeeID, *req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}

	logger.Info("employee status changed", "employee_id", employeeID, "is_active", *req.IsActive)
	return nil
}
