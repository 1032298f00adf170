package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/services"
)

type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Ingest(ctx context.Context, raw string) (*services.IngestResult, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.IngestResult), args.Error(1)
}

func (m *MockTicketService) IngestTripClose(ctx context.Context, raw string) (bool, error) {
	args := m.Called(ctx, raw)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketService) List(ctx context.Context, f model.TicketFilter) ([]*model.TicketTransaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.TicketTransaction), args.Get(1).(int64), args.Error(2)
}

func TestTicketHandler_DeviceData(t *testing.T) {
	t.Run("fresh packet acked with SUCCESS", func(t *testing.T) {
		svc := new(MockTicketService)
		handler := NewTicketHandler(svc)

		svc.On("Ingest", mock.Anything, "T|DEV-1|12|000123").Return(&services.IngestResult{
			Ticket: &model.TicketTransaction{ID: 1, TicketNumber: "000123"},
		}, nil)

		ctx := setupTestContext("GET", "/device/data?fn=T%7CDEV-1%7C12%7C000123", nil)
		handler.DeviceData(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Equal(t, "000123|SUCCESS", string(ctx.Response.Body()))
	})

	t.Run("duplicate packet gets the same ack", func(t *testing.T) {
		svc := new(MockTicketService)
		handler := NewTicketHandler(svc)

		svc.On("Ingest", mock.Anything, mock.Anything).Return(&services.IngestResult{
			Ticket:    &model.TicketTransaction{TicketNumber: "000123"},
			Duplicate: true,
		}, nil)

		ctx := setupTestContext("GET", "/device/data?fn=T%7CDEV-1%7C12%7C000123", nil)
		handler.DeviceData(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Equal(t, "000123|SUCCESS", string(ctx.Response.Body()))
	})

	t.Run("trip close packets dispatch on the C prefix", func(t *testing.T) {
		svc := new(MockTicketService)
		handler := NewTicketHandler(svc)

		svc.On("IngestTripClose", mock.Anything, "C|DEV-1|TRN001|3|12").Return(false, nil)

		ctx := setupTestContext("GET", "/device/data?fn=C%7CDEV-1%7CTRN001%7C3%7C12", nil)
		handler.DeviceData(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Equal(t, "C|SUCCESS", string(ctx.Response.Body()))
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})

	t.Run("missing fn parameter", func(t *testing.T) {
		handler := NewTicketHandler(new(MockTicketService))

		ctx := setupTestContext("GET", "/device/data", nil)
		handler.DeviceData(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		assert.Equal(t, "ERROR|no input data", string(ctx.Response.Body()))
	})

	t.Run("storage failure is an error token", func(t *testing.T) {
		svc := new(MockTicketService)
		handler := NewTicketHandler(svc)

		svc.On("Ingest", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		ctx := setupTestContext("GET", "/device/data?fn=T%7CDEV-1", nil)
		handler.DeviceData(ctx)

		assert.Equal(t, 500, ctx.Response.StatusCode())
	})
}

func TestTicketHandler_ListTickets(t *testing.T) {
	svc := new(MockTicketService)
	handler := NewTicketHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.TicketFilter) bool {
		return f.DeviceID != nil && *f.DeviceID == "DEV-1" && f.Limit == 10 && f.Desc
	})).Return([]*model.TicketTransaction{{ID: 1}}, int64(1), nil)

	ctx := setupTestContext("GET", "/tickets?device_id=DEV-1&limit=10&order=desc", nil)
	handler.ListTickets(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
}
