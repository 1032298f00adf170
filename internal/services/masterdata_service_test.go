package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
)

func TestMasterDataService_UpdateRoute(t *testing.T) {
	ctx := context.Background()
	route := &model.Route{ID: 5, CompanyID: 1, RouteCode: "RT-09", RouteName: "Central - Airport"}

	t.Run("rename refreshes fare copies in the same transaction", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("GetRoute", ctx, int64(1), int64(5)).Return(route, nil)
		store.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		store.On("UpdateRoute", ctx, int64(1), int64(5), "Central - Intl Airport", (*bool)(nil)).Return(nil)
		store.On("SyncFareRouteNames", ctx, int64(5), "Central - Intl Airport").Return(nil)

		_, err := svc.UpdateRoute(ctx, 1, 5, model.RouteUpdateRequest{RouteName: "Central - Intl Airport"})
		require.NoError(t, err)

		store.AssertExpectations(t)
	})

	t.Run("unchanged name skips the fare sync", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		active := false
		store.On("GetRoute", ctx, int64(1), int64(5)).Return(route, nil)
		store.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		store.On("UpdateRoute", ctx, int64(1), int64(5), "Central - Airport", &active).Return(nil)

		_, err := svc.UpdateRoute(ctx, 1, 5, model.RouteUpdateRequest{RouteName: "Central - Airport", IsActive: &active})
		require.NoError(t, err)

		store.AssertNotCalled(t, "SyncFareRouteNames", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown route", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("GetRoute", ctx, int64(1), int64(404)).Return(nil, repository.ErrRouteNotFound)

		_, err := svc.UpdateRoute(ctx, 1, 404, model.RouteUpdateRequest{RouteName: "X"})
		assert.ErrorIs(t, err, ErrRouteNotFound)
	})
}

func TestMasterDataService_CreateFare(t *testing.T) {
	ctx := context.Background()

	t.Run("copies the current route name", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("GetRoute", ctx, int64(1), int64(5)).Return(&model.Route{ID: 5, CompanyID: 1, RouteName: "Central - Airport"}, nil)
		store.On("CreateFare", ctx, mock.MatchedBy(func(f *model.Fare) bool {
			return f.RouteName == "Central - Airport"
		})).Return(&model.Fare{ID: 9, RouteName: "Central - Airport"}, nil)

		fare, err := svc.CreateFare(ctx, &model.Fare{CompanyID: 1, RouteID: 5})
		require.NoError(t, err)
		assert.Equal(t, "Central - Airport", fare.RouteName)
	})

	t.Run("unknown route", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("GetRoute", ctx, int64(1), int64(404)).Return(nil, repository.ErrRouteNotFound)

		_, err := svc.CreateFare(ctx, &model.Fare{CompanyID: 1, RouteID: 404})
		assert.ErrorIs(t, err, ErrRouteNotFound)
	})
}

func TestMasterDataService_CreateEmployee(t *testing.T) {
	ctx := context.Background()

	t.Run("checks the type belongs to the company", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("GetEmployeeType", ctx, int64(1), int64(3)).Return(&model.EmployeeType{ID: 3, CompanyID: 1, Code: "DRV"}, nil)
		store.On("CreateEmployee", ctx, mock.AnythingOfType("*model.Employee")).
			Return(&model.Employee{ID: 11, CompanyID: 1, EmployeeTypeID: 3, Code: "EMP-011", Name: "K. Perera"}, nil)

		employee, err := svc.CreateEmployee(ctx, &model.Employee{CompanyID: 1, EmployeeTypeID: 3, Code: "EMP-011", Name: "K. Perera"})
		require.NoError(t, err)
		assert.Equal(t, int64(11), employee.ID)
	})

	t.Run("unknown employee type", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("GetEmployeeType", ctx, int64(1), int64(404)).Return(nil, repository.ErrEmployeeTypeNotFound)

		_, err := svc.CreateEmployee(ctx, &model.Employee{CompanyID: 1, EmployeeTypeID: 404, Code: "EMP-012", Name: "S. Silva"})
		assert.ErrorIs(t, err, ErrEmployeeTypeNotFound)
		store.AssertNotCalled(t, "CreateEmployee", mock.Anything, mock.Anything)
	})
}

func TestMasterDataService_SetEmployeeActive(t *testing.T) {
	ctx := context.Background()
	active := false

	t.Run("deactivates", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("SetEmployeeActive", ctx, int64(1), int64(11), false).Return(nil)

		err := svc.SetEmployeeActive(ctx, 1, 11, model.EmployeeUpdateRequest{IsActive: &active})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("missing is_active is rejected before the store is touched", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		err := svc.SetEmployeeActive(ctx, 1, 11, model.EmployeeUpdateRequest{})
		assert.Error(t, err)
		store.AssertNotCalled(t, "SetEmployeeActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown employee", func(t *testing.T) {
		store := new(MockMasterDataStore)
		svc := NewMasterDataService(store)

		store.On("SetEmployeeActive", ctx, int64(1), int64(404), false).Return(repository.ErrEmployeeNotFound)

		err := svc.SetEmployeeActive(ctx, 1, 404, model.EmployeeUpdateRequest{IsActive: &active})
		assert.ErrorIs(t, err, ErrEmployeeNotFound)
	})
}
