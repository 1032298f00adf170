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
	ErrDuplicateTripClose = errors.New("trip close already recorded")
)

type TripCloseRepository struct {
	*pg.DB
}

func NewTripCloseRepository(db *pg.DB) *TripCloseRepository {
	return &TripCloseRepository{
		db,
	}
}

func (r *TripCloseRepository) Create(ctx context.Context, record *model.TripCloseRecord) (*model.TripCloseRecord, error) {
	entity := toTripCloseEntity(record)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTripClose
		}
		return nil, err
	}

	return toTripCloseModel(entity), nil
}

func (r *TripCloseRepository) List(ctx context.Context, deviceID, companyCode string, from, to *time.Time, limit, offset int) ([]*model.TripCloseRecord, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&TripCloseEntity{})

	if deviceID != "" {
		q = q.Where("device_id = ?", deviceID)
	}
	if companyCode != "" {
		q = q.Where("company_code = ?", companyCode)
	}
	if from != nil {
		q = q.Where("start_datetime >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_datetime < ?", *to)
	}

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

	var entities []*TripCloseEntity
	if err := q.Order("start_datetime DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toTripCloseModels(entities), total, nil
}
