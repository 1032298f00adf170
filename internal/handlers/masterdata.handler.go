package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/transitops/ticket-backoffice/internal/model"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
)

type MasterDataService interface {
	CreateRoute(ctx context.Context, route *model.Route) (*model.Route, error)
	ListRoutes(ctx context.Context, companyID int64) ([]*model.Route, error)
	UpdateRoute(ctx context.Context, companyID, routeID int64, req model.RouteUpdateRequest) (*model.Route, error)
	CreateFare(ctx context.Context, fare *model.Fare) (*model.Fare, error)
	ListFares(ctx context.Context, companyID int64, routeID *int64) ([]*model.Fare, error)
	DeleteFare(ctx context.Context, companyID, fareID int64) error
	CreateBusType(ctx context.Context, busType *model.BusType) (*model.BusType, error)
	ListBusTypes(ctx context.Context, companyID int64) ([]*model.BusType, error)
	CreateStage(ctx context.Context, stage *model.Stage) (*model.Stage, error)
	ListStages(ctx context.Context, companyID int64) ([]*model.Stage, error)
	CreateEmployeeType(ctx context.Context, employeeType *model.EmployeeType) (*model.EmployeeType, error)
	ListEmployeeTypes(ctx context.Context, companyID int64) ([]*model.EmployeeType, error)
	CreateEmployee(ctx context.Context, employee *model.Employee) (*model.Employee, error)
	ListEmployees(ctx context.Context, companyID int64) ([]*model.Employee, error)
	SetEmployeeActive(ctx context.Context, companyID, employeeID int64, req model.EmployeeUpdateRequest) error
}

type MasterDataHandler struct {
	svc MasterDataService
}

func RegisterMasterDataRoutes(e *router.Group, h *MasterDataHandler, auth Middleware) {
	e.POST("/routes", auth(h.CreateRoute))
	e.GET("/routes", auth(h.ListRoutes))
	e.PUT("/routes/{id}", auth(h.UpdateRoute))
	e.POST("/fares", auth(h.CreateFare))
	e.GET("/fares", auth(h.ListFares))
	e.DELETE("/fares/{id}", auth(h.DeleteFare))
	e.POST("/bus-types", auth(h.CreateBusType))
	e.GET("/bus-types", auth(h.ListBusTypes))
	e.POST("/stages", auth(h.CreateStage))
	e.GET("/stages", auth(h.ListStages))
	e.POST("/employee-types", auth(h.CreateEmployeeType))
	e.GET("/employee-types", auth(h.ListEmployeeTypes))
	e.POST("/employees", auth(h.CreateEmployee))
	e.GET("/employees", auth(h.ListEmployees))
	e.PUT("/employees/{id}", auth(h.UpdateEmployee))
}

func NewMasterDataHandler(masterDataService MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{
		svc: masterDataService,
	}
}

func (h *MasterDataHandler) guard(ctx *xhttp.RequestCtx) (int64, bool) {
	claims, ok := requireSession(ctx)
	if !ok {
		return 0, false
	}
	if !model.Role(claims.Role).CanManageMasterData() {
		writeError(ctx, 403, "insufficient privileges")
		return 0, false
	}
	return companyScope(ctx, claims)
}

func (h *MasterDataHandler) CreateRoute(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	var route model.Route
	if err := readJSON(ctx, &route); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	route.CompanyID = companyID

	created, err := h.svc.CreateRoute(ctx, &route)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *MasterDataHandler) ListRoutes(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	companyID, ok := companyScope(ctx, claims)
	if !ok {
		return
	}

	items, err := h.svc.ListRoutes(ctx, companyID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *MasterDataHandler) UpdateRoute(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid route id")
		return
	}

	var req model.RouteUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	route, err := h.svc.UpdateRoute(ctx, companyID, id, req)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, route)
}

func (h *MasterDataHandler) CreateFare(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	var fare model.Fare
	if err := readJSON(ctx, &fare); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	fare.CompanyID = companyID

	created, err := h.svc.CreateFare(ctx, &fare)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *MasterDataHandler) ListFares(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	companyID, ok := companyScope(ctx, claims)
	if !ok {
		return
	}

	var routeID *int64
	if id, err := paramInt64(ctx, "route_id"); err == nil {
		routeID = &id
	}

	items, err := h.svc.ListFares(ctx, companyID, routeID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *MasterDataHandler) DeleteFare(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid fare id")
		return
	}

	if err := h.svc.DeleteFare(ctx, companyID, id); err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "deleted"})
}

func (h *MasterDataHandler) CreateBusType(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	var busType model.BusType
	if err := readJSON(ctx, &busType); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	busType.CompanyID = companyID

	created, err := h.svc.CreateBusType(ctx, &busType)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *MasterDataHandler) ListBusTypes(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	companyID, ok := companyScope(ctx, claims)
	if !ok {
		return
	}

	items, err := h.svc.ListBusTypes(ctx, companyID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *MasterDataHandler) CreateStage(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	var stage model.Stage
	if err := readJSON(ctx, &stage); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	stage.CompanyID = companyID

	created, err := h.svc.CreateStage(ctx, &stage)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *MasterDataHandler) ListStages(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	companyID, ok := companyScope(ctx, claims)
	if !ok {
		return
	}

	items, err := h.svc.ListStages(ctx, companyID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *MasterDataHandler) CreateEmployeeType(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	var employeeType model.EmployeeType
	if err := readJSON(ctx, &employeeType); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	employeeType.CompanyID = companyID

	created, err := h.svc.CreateEmployeeType(ctx, &employeeType)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *MasterDataHandler) ListEmployeeTypes(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	companyID, ok := companyScope(ctx, claims)
	if !ok {
		return
	}

	items, err := h.svc.ListEmployeeTypes(ctx, companyID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *MasterDataHandler) CreateEmployee(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	var employee model.Employee
	if err := readJSON(ctx, &employee); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	employee.CompanyID = companyID

	created, err := h.svc.CreateEmployee(ctx, &employee)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *MasterDataHandler) ListEmployees(ctx *xhttp.RequestCtx) {
	claims, ok := requireSession(ctx)
	if !ok {
		return
	}
	companyID, ok := companyScope(ctx, claims)
	if !ok {
		return
	}

	items, err := h.svc.ListEmployees(ctx, companyID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": items})
}

func (h *MasterDataHandler) UpdateEmployee(ctx *xhttp.RequestCtx) {
	companyID, ok := h.guard(ctx)
	if !ok {
		return
	}

	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid employee id")
		return
	}

	var req model.EmployeeUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.SetEmployeeActive(ctx, companyID, id, req); err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "updated"})
}
