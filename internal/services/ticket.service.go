package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

var (
	ErrEmptyPayload = errors.New("empty device payload")
)

// Ticket payloads are pipe-delimited and positional. Field count per
// device firmware revision varies, so short payloads fill the tail with
// zero values instead of failing.
const ticketFieldCount = 27

type TicketTransactionRepository interface {
	Create(ctx context.Context, ticket *model.TicketTransaction) (*model.TicketTransaction, error)
	List(ctx context.Context, f model.TicketFilter) ([]*model.TicketTransaction, int64, error)
}

type TripCloseRecordRepository interface {
	Create(ctx context.Context, record *model.TripCloseRecord) (*model.TripCloseRecord, error)
}

type TicketService struct {
	ticketRepo    TicketTransactionRepository
	tripCloseRepo TripCloseRecordRepository
}

func NewTicketService(ticketRepo TicketTransactionRepository, tripCloseRepo TripCloseRecordRepository) *TicketService {
	return &TicketService{
		ticketRepo:    ticketRepo,
		tripCloseRepo: tripCloseRepo,
	}
}

// IngestResult tells the handler what to acknowledge. Duplicate means
// the record was already stored by an earlier submission; the device
// still gets a success ack so it stops retrying.
type IngestResult struct {
	Ticket    *model.TicketTransaction
	Duplicate bool
}

// Ingest parses and stores one raw ticket packet.
func (s *TicketService) Ingest(ctx context.Context, raw string) (*IngestResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyPayload
	}

	ticket := ParseTicketPayload(raw)

	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTicket) {
			logger.Info("duplicate ticket submission", "device_id", ticket.DeviceID, "ticket_number", ticket.TicketNumber)
			return &IngestResult{Ticket: ticket, Duplicate: true}, nil
		}
		return nil, err
	}

	logger.Info("ticket stored", "device_id", created.DeviceID, "ticket_number", created.TicketNumber, "amount", created.TicketAmount.String())

	return &IngestResult{Ticket: created}, nil
}

// IngestTripClose parses and stores one raw trip close packet.
func (s *TicketService) IngestTripClose(ctx context.Context, raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, ErrEmptyPayload
	}

	record := ParseTripClosePayload(raw)
	record.ReceivedAt = time.Now()

	if _, err := s.tripCloseRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateTripClose) {
			logger.Info("duplicate trip close submission", "device_id", record.DeviceID, "trip_no", record.TripNo)
			return true, nil
		}
		return false, err
	}

	logger.Info("trip close stored", "device_id", record.DeviceID, "trip_no", record.TripNo, "total", record.TotalCollection.String())

	return false, nil
}

func (s *TicketService) List(ctx context.Context, f model.TicketFilter) ([]*model.TicketTransaction, int64, error) {
	return s.ticketRepo.List(ctx, f)
}

// ParseTicketPayload maps the positional fields onto a ticket record.
// Field layout (0-based): request_type, device_id, trip_number,
// ticket_number, ticket_date, ticket_time, from_stage, to_stage,
// full/half/st/phy/lugg counts, ticket_amount, lugg_amount, ticket_type,
// adjust_amount, pass_id, warrant_amount, refund_status, refund_amount,
// ladies_count, senior_count, transaction_id, payment_mode,
// reference_number, company_code.
func ParseTicketPayload(raw string) *model.TicketTransaction {
	p := newFieldReader(raw, ticketFieldCount)

	return &model.TicketTransaction{
		RequestType:     p.str(0),
		DeviceID:        p.str(1),
		TripNumber:      p.str(2),
		TicketNumber:    p.str(3),
		TicketDate:      p.str(4),
		TicketTime:      p.str(5),
		FromStage:       p.num(6),
		ToStage:         p.num(7),
		FullCount:       p.num(8),
		HalfCount:       p.num(9),
		STCount:         p.num(10),
		PhyCount:        p.num(11),
		LuggCount:       p.num(12),
		TicketAmount:    p.dec(13),
		LuggAmount:      p.dec(14),
		TicketType:      p.str(15),
		AdjustAmount:    p.dec(16),
		PassID:          p.str(17),
		WarrantAmount:   p.dec(18),
		RefundStatus:    p.str(19),
		RefundAmount:    p.dec(20),
		LadiesCount:     p.num(21),
		SeniorCount:     p.num(22),
		TransactionID:   p.str(23),
		PaymentMode:     p.str(24),
		ReferenceNumber: p.str(25),
		CompanyCode:     p.str(26),
		RawPayload:      raw,
	}
}

// ParseTripClosePayload maps the positional trip summary fields. Layout:
// request_type, device_id, company_code, schedule, trip_no, route_code,
// up_down_trip, start/end datetimes, start/end ticket numbers, passenger
// counts, collections, upi count and amount.
func ParseTripClosePayload(raw string) *model.TripCloseRecord {
	p := newFieldReader(raw, 0)

	return &model.TripCloseRecord{
		DeviceID:           p.str(1),
		CompanyCode:        p.str(2),
		Schedule:           p.num(3),
		TripNo:             p.num(4),
		RouteCode:          p.str(5),
		UpDownTrip:         p.str(6),
		StartDatetime:      p.datetime(7),
		EndDatetime:        p.datetime(8),
		StartTicketNo:      int64(p.num(9)),
		EndTicketNo:        int64(p.num(10)),
		FullCount:          p.num(11),
		HalfCount:          p.num(12),
		ST1Count:           p.num(13),
		LuggageCount:       p.num(14),
		PhysicalCount:      p.num(15),
		PassCount:          p.num(16),
		LadiesCount:        p.num(17),
		SeniorCount:        p.num(18),
		FullCollection:     p.dec(19),
		HalfCollection:     p.dec(20),
		STCollection:       p.dec(21),
		LuggageCollection:  p.dec(22),
		PhysicalCollection: p.dec(23),
		LadiesCollection:   p.dec(24),
		SeniorCollection:   p.dec(25),
		AdjustCollection:   p.dec(26),
		ExpenseAmount:      p.dec(27),
		TotalCollection:    p.dec(28),
		UpiTicketCount:     p.num(29),
		UpiTicketAmount:    p.dec(30),
	}
}

type fieldReader struct {
	fields []string
}

func newFieldReader(raw string, minFields int) *fieldReader {
	fields := strings.Split(raw, "|")
	for len(fields) < minFields {
		fields = append(fields, "")
	}
	return &fieldReader{fields: fields}
}

func (p *fieldReader) str(i int) string {
	if i >= len(p.fields) {
		return ""
	}
	return strings.TrimSpace(p.fields[i])
}

func (p *fieldReader) num(i int) int {
	v := p.str(i)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (p *fieldReader) dec(i int) decimal.Decimal {
	v := p.str(i)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (p *fieldReader) datetime(i int) time.Time {
	v := p.str(i)
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02 15:04:05", v)
	if err != nil {
		return time.Time{}
	}
	return t
}
