package repository

import (
	"context"
	"errors"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrDuplicateTicket = errors.New("ticket already recorded")
)

type TicketRepository struct {
	*pg.DB
}

func NewTicketRepository(db *pg.DB) *TicketRepository {
	return &TicketRepository{
		db,
	}
}

// Create inserts a ticket record. A violation of the device/trip/ticket
// identity index comes back as ErrDuplicateTicket so callers can treat
// device re-submissions as already-acknowledged.
func (r *TicketRepository) Create(ctx context.Context, ticket *model.TicketTransaction) (*model.TicketTransaction, error) {
	entity := toTicketEntity(ticket)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTicket
		}
		return nil, err
	}

	return toTicketModel(entity), nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*model.TicketTransaction, error) {
	var entity TicketTransactionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	return toTicketModel(&entity), nil
}

// FindByTicketNumber resolves a settlement's invoice reference to a
// ticket. Ticket numbers restart per device, so the newest match wins.
func (r *TicketRepository) FindByTicketNumber(ctx context.Context, companyCode, ticketNumber string) (*model.TicketTransaction, error) {
	q := r.Read(ctx).WithContext(ctx).
		Where("ticket_number = ?", ticketNumber)

	if companyCode != "" {
		q = q.Where("company_code = ?", companyCode)
	}

	var entity TicketTransactionEntity
	err := q.Order("created_at DESC").First(&entity).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	return toTicketModel(&entity), nil
}

func (r *TicketRepository) List(ctx context.Context, f model.TicketFilter) ([]*model.TicketTransaction, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&TicketTransactionEntity{})

	if f.DeviceID != nil && *f.DeviceID != "" {
		q = q.Where("device_id = ?", *f.DeviceID)
	}
	if f.CompanyCode != nil && *f.CompanyCode != "" {
		q = q.Where("company_code = ?", *f.CompanyCode)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*TicketTransactionEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toTicketModels(entities), total, nil
}
