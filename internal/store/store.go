package store

import (
	"context"
	"errors"

	"github.com/arimitra/healthmate/internal/model"
)

var (
	// ErrNotFound is returned when a reminder id has no stored record.
	ErrNotFound = errors.New("reminder not found")
	// ErrUnavailable is returned when the backing store was never connected.
	ErrUnavailable = errors.New("reminder store unavailable")
)

// ReminderStore is the durable collection of reminders. Insert assigns the
// record's id. List returns the summary projection only.
type ReminderStore interface {
	Insert(ctx context.Context, rec *model.Reminder) error
	List(ctx context.Context) ([]model.ReminderSummary, error)
	Delete(ctx context.Context, id string) error
}
