package store

import (
	"context"
	"errors"

	"github.com/arimitra/healthmate/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore persists reminders through a GORM connection. A nil db handle is
// tolerated and reported as ErrUnavailable on every call, so the rest of the
// application can start without a database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a GORM connection, which may be nil.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, rec *model.Reminder) error {
	if s.db == nil {
		return ErrUnavailable
	}
	rec.ID = uuid.NewString()
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) List(ctx context.Context) ([]model.ReminderSummary, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}

	var summaries []model.ReminderSummary
	err := s.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Select("id", "medicine_name", "reminder_time", "phone", "email").
		Order("reminder_time ASC").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return ErrUnavailable
	}

	result := s.db.WithContext(ctx).Delete(&model.Reminder{}, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
