package repository

import (
	"context"
	"time"

	"investment-advisor/internal/model"

	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(ctx context.Context, consultation *model.Consultation) error
	Get(ctx context.Context, param model.GetConsultationParam) ([]model.Consultation, error)
	GetByID(ctx context.Context, id uint) (*model.Consultation, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type consultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	return r.db.WithContext(ctx).Create(consultation).Error
}

func (r *consultationRepository) Get(ctx context.Context, param model.GetConsultationParam) ([]model.Consultation, error) {
	var consultations []model.Consultation

	query := r.db.WithContext(ctx).Model(&model.Consultation{})
	if len(param.IDs) > 0 {
		query = query.Where("id IN ?", param.IDs)
	}
	if param.Status != nil {
		query = query.Where("status = ?", *param.Status)
	}
	query = query.Order("created_at DESC")
	if param.Limit != nil {
		query = query.Limit(*param.Limit)
	}

	if err := query.Find(&consultations).Error; err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) GetByID(ctx context.Context, id uint) (*model.Consultation, error) {
	var consultation model.Consultation
	err := r.db.WithContext(ctx).First(&consultation, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

// DeleteOlderThan hard-deletes consultations created before the cutoff.
// Used by the retention job.
func (r *consultationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.Consultation{})
	return result.RowsAffected, result.Error
}
