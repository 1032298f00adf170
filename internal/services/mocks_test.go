package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/transitops/ticket-backoffice/internal/licensing"
	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) SetDeviceValid(ctx context.Context, id int64, valid bool) error {
	args := m.Called(ctx, id, valid)
	return args.Error(0)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetForUpdate(ctx context.Context, id int64) (*model.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) SetCustomerID(ctx context.Context, id int64, customerID string) error {
	args := m.Called(ctx, id, customerID)
	return args.Error(0)
}

func (m *MockCompanyRepository) BeginValidation(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) SetAuthStatus(ctx context.Context, id int64, status model.AuthStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCompanyRepository) ResetValidating(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) ApplyLicenseGrant(ctx context.Context, id int64, grant model.LicenseGrant) error {
	args := m.Called(ctx, id, grant)
	return args.Error(0)
}

type MockAuthority struct {
	mock.Mock
}

func (m *MockAuthority) Register(ctx context.Context, company *model.Company) (string, error) {
	args := m.Called(ctx, company)
	return args.String(0), args.Error(1)
}

func (m *MockAuthority) Authenticate(ctx context.Context, customerID string) (*licensing.Verdict, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licensing.Verdict), args.Error(1)
}

type MockDeviceMappingRepository struct {
	mock.Mock
}

func (m *MockDeviceMappingRepository) Create(ctx context.Context, mapping *model.DeviceMapping) (*model.DeviceMapping, error) {
	args := m.Called(ctx, mapping)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceMapping), args.Error(1)
}

func (m *MockDeviceMappingRepository) GetByID(ctx context.Context, id int64) (*model.DeviceMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceMapping), args.Error(1)
}

func (m *MockDeviceMappingRepository) FindByUID(ctx context.Context, deviceUID string) (*model.DeviceMapping, error) {
	args := m.Called(ctx, deviceUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceMapping), args.Error(1)
}

func (m *MockDeviceMappingRepository) ListForUser(ctx context.Context, userID int64) ([]*model.DeviceMapping, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DeviceMapping), args.Error(1)
}

func (m *MockDeviceMappingRepository) ListPendingForCompany(ctx context.Context, companyID int64) ([]*model.DeviceMapping, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DeviceMapping), args.Error(1)
}

func (m *MockDeviceMappingRepository) CountActiveForCompany(ctx context.Context, companyID int64, excludeUID string) (int64, error) {
	args := m.Called(ctx, companyID, excludeUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceMappingRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockDeviceMappingRepository) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockDeviceMappingRepository) RefreshMeta(ctx context.Context, id int64, userAgent string, deviceType model.DeviceType, at time.Time) error {
	args := m.Called(ctx, id, userAgent, deviceType, at)
	return args.Error(0)
}

func (m *MockDeviceMappingRepository) Approve(ctx context.Context, id int64, approverID int64, at time.Time) error {
	args := m.Called(ctx, id, approverID, at)
	return args.Error(0)
}

func (m *MockDeviceMappingRepository) Revoke(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeviceMappingRepository) HasApprovedForUser(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeviceMappingRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockDeviceRegistry struct {
	mock.Mock
}

func (m *MockDeviceRegistry) ResolveOrCreate(ctx context.Context, user *model.User, deviceUID, userAgent string) (*model.DeviceMapping, error) {
	args := m.Called(ctx, user, deviceUID, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceMapping), args.Error(1)
}

func (m *MockDeviceRegistry) AcquireSlot(ctx context.Context, companyID int64, mapping *model.DeviceMapping) error {
	args := m.Called(ctx, companyID, mapping)
	return args.Error(0)
}

func (m *MockDeviceRegistry) ReleaseSlot(ctx context.Context, deviceUID string) error {
	args := m.Called(ctx, deviceUID)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.PaymentTransaction) (*model.PaymentTransaction, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentTransaction), args.Error(1)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*model.PaymentTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentTransaction), args.Error(1)
}

func (m *MockPaymentRepository) SetProcessingStatus(ctx context.Context, id int64, status model.ProcessingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) FinishReconciliation(ctx context.Context, id int64, res repository.ReconciliationResult, at time.Time) error {
	args := m.Called(ctx, id, res, at)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindTicketHolder(ctx context.Context, ticketID, excludePaymentID int64) (*model.PaymentTransaction, error) {
	args := m.Called(ctx, ticketID, excludePaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentTransaction), args.Error(1)
}

func (m *MockPaymentRepository) SetVerification(ctx context.Context, id int64, status model.VerificationStatus, verifierID int64, notes string, at time.Time) error {
	args := m.Called(ctx, id, status, verifierID, notes, at)
	return args.Error(0)
}

func (m *MockPaymentRepository) List(ctx context.Context, f model.PaymentFilter) ([]*model.PaymentTransaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.PaymentTransaction), args.Get(1).(int64), args.Error(2)
}

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *model.TicketTransaction) (*model.TicketTransaction, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketTransaction), args.Error(1)
}

func (m *MockTicketRepository) FindByTicketNumber(ctx context.Context, companyCode, ticketNumber string) (*model.TicketTransaction, error) {
	args := m.Called(ctx, companyCode, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketTransaction), args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, f model.TicketFilter) ([]*model.TicketTransaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.TicketTransaction), args.Get(1).(int64), args.Error(2)
}

type MockTripCloseRepository struct {
	mock.Mock
}

func (m *MockTripCloseRepository) Create(ctx context.Context, record *model.TripCloseRecord) (*model.TripCloseRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TripCloseRecord), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

type MockMasterDataStore struct {
	mock.Mock
}

func (m *MockMasterDataStore) CreateRoute(ctx context.Context, route *model.Route) (*model.Route, error) {
	args := m.Called(ctx, route)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Route), args.Error(1)
}

func (m *MockMasterDataStore) GetRoute(ctx context.Context, companyID, routeID int64) (*model.Route, error) {
	args := m.Called(ctx, companyID, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Route), args.Error(1)
}

func (m *MockMasterDataStore) ListRoutes(ctx context.Context, companyID int64) ([]*model.Route, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

func (m *MockMasterDataStore) UpdateRoute(ctx context.Context, companyID, routeID int64, name string, isActive *bool) error {
	args := m.Called(ctx, companyID, routeID, name, isActive)
	return args.Error(0)
}

func (m *MockMasterDataStore) SyncFareRouteNames(ctx context.Context, routeID int64, name string) error {
	args := m.Called(ctx, routeID, name)
	return args.Error(0)
}

func (m *MockMasterDataStore) CreateFare(ctx context.Context, fare *model.Fare) (*model.Fare, error) {
	args := m.Called(ctx, fare)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fare), args.Error(1)
}

func (m *MockMasterDataStore) ListFares(ctx context.Context, companyID int64, routeID *int64) ([]*model.Fare, error) {
	args := m.Called(ctx, companyID, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Fare), args.Error(1)
}

func (m *MockMasterDataStore) DeleteFare(ctx context.Context, companyID, fareID int64) error {
	args := m.Called(ctx, companyID, fareID)
	return args.Error(0)
}

func (m *MockMasterDataStore) CreateBusType(ctx context.Context, busType *model.BusType) (*model.BusType, error) {
	args := m.Called(ctx, busType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BusType), args.Error(1)
}

func (m *MockMasterDataStore) ListBusTypes(ctx context.Context, companyID int64) ([]*model.BusType, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BusType), args.Error(1)
}

func (m *MockMasterDataStore) CreateStage(ctx context.Context, stage *model.Stage) (*model.Stage, error) {
	args := m.Called(ctx, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stage), args.Error(1)
}

func (m *MockMasterDataStore) ListStages(ctx context.Context, companyID int64) ([]*model.Stage, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Stage), args.Error(1)
}

func (m *MockMasterDataStore) CreateEmployeeType(ctx context.Context, employeeType *model.EmployeeType) (*model.EmployeeType, error) {
	args := m.Called(ctx, employeeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmployeeType), args.Error(1)
}

func (m *MockMasterDataStore) ListEmployeeTypes(ctx context.Context, companyID int64) ([]*model.EmployeeType, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EmployeeType), args.Error(1)
}

func (m *MockMasterDataStore) GetEmployeeType(ctx context.Context, companyID, typeID int64) (*model.EmployeeType, error) {
	args := m.Called(ctx, companyID, typeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmployeeType), args.Error(1)
}

func (m *MockMasterDataStore) CreateEmployee(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	args := m.Called(ctx, employee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockMasterDataStore) ListEmployees(ctx context.Context, companyID int64) ([]*model.Employee, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Employee), args.Error(1)
}

func (m *MockMasterDataStore) SetEmployeeActive(ctx context.Context, companyID, employeeID int64, active bool) error {
	args := m.Called(ctx, companyID, employeeID, active)
	return args.Error(0)
}

func (m *MockMasterDataStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
