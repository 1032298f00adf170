package repository

import (
	"context"
	"errors"
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

type PaymentRepository struct {
	*pg.DB
}

func NewPaymentRepository(db *pg.DB) *PaymentRepository {
	return &PaymentRepository{
		db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *model.PaymentTransaction) (*model.PaymentTransaction, error) {
	entity := toPaymentEntity(payment)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPaymentModel(entity), nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.PaymentTransaction, error) {
	var entity PaymentTransactionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return toPaymentModel(&entity), nil
}

func (r *PaymentRepository) SetProcessingStatus(ctx context.Context, id int64, status model.ProcessingStatus) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&PaymentTransactionEntity{}).
		Where("id = ?", id).
		Update("processing_status", string(status))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ReconciliationResult is what one engine pass decided for a settlement.
type ReconciliationResult struct {
	Status          model.ReconciliationStatus
	RelatedTicketID *int64
	Error           string
}

// FinishReconciliation records the engine verdict and always returns the
// settlement to pending_verification, reconciled or not. The processed
// flag marks the settlement as seen by the engine for every outcome;
// reconciled_at is stamped only on an auto-match.
func (r *PaymentRepository) FinishReconciliation(ctx context.Context, id int64, res ReconciliationResult, at time.Time) error {
	updates := map[string]interface{}{
		"processing_status":        string(model.ProcessingPendingVerification),
		"reconciliation_status":    string(res.Status),
		"reconciliation_error":     res.Error,
		"related_ticket_id":        res.RelatedTicketID,
		"reconciliation_processed": true,
	}
	if res.Status == model.ReconciliationAutoMatched {
		updates["reconciled_at"] = at
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&PaymentTransactionEntity{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// FindTicketHolder returns the settlement that already holds the ticket
// as its related ticket, excluding the caller's own payment, or nil when
// the ticket is unclaimed. Mismatch holders count too: a ticket may back
// at most one settlement, whatever the holder's outcome.
func (r *PaymentRepository) FindTicketHolder(ctx context.Context, ticketID, excludePaymentID int64) (*model.PaymentTransaction, error) {
	var entity PaymentTransactionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("related_ticket_id = ? AND id <> ?", ticketID, excludePaymentID).
		Order("id ASC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPaymentModel(&entity), nil
}

func (r *PaymentRepository) SetVerification(ctx context.Context, id int64, status model.VerificationStatus, verifierID int64, notes string, at time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&PaymentTransactionEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_status": string(status),
			"verified_by_id":      verifierID,
			"verification_notes":  notes,
			"verified_at":         at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) List(ctx context.Context, f model.PaymentFilter) ([]*model.PaymentTransaction, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&PaymentTransactionEntity{})

	if len(f.ReconciliationStatuses) > 0 {
		statuses := make([]string, len(f.ReconciliationStatuses))
		for i, s := range f.ReconciliationStatuses {
			statuses[i] = string(s)
		}
		q = q.Where("reconciliation_status IN ?", statuses)
	}
	if len(f.VerificationStatuses) > 0 {
		statuses := make([]string, len(f.VerificationStatuses))
		for i, s := range f.VerificationStatuses {
			statuses[i] = string(s)
		}
		q = q.Where("verification_status IN ?", statuses)
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

	var entities []*PaymentTransactionEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toPaymentModels(entities), total, nil
}
