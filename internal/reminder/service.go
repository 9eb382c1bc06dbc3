// Package reminder orchestrates reminder creation: validation, time
// resolution, persistence, and scheduling of the due-time notification.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/arimitra/healthmate/internal/model"
	"github.com/arimitra/healthmate/internal/notify"
	"github.com/arimitra/healthmate/internal/store"
	"github.com/arimitra/healthmate/internal/timeparse"
)

// ValidationError reports a request the caller can fix.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// CreateRequest is the inbound shape for a new reminder.
type CreateRequest struct {
	MedicineName string `json:"medicine_name"`
	ReminderTime string `json:"reminder_time"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// JobScheduler is the slice of the scheduler the service needs.
type JobScheduler interface {
	Schedule(jobID string, at time.Time, action func())
	Cancel(jobID string) bool
}

// Notifier fires a reminder's alert across delivery channels.
type Notifier interface {
	Dispatch(rec model.Reminder) notify.Result
}

// Service wires the store, parser, scheduler, and dispatcher together.
type Service struct {
	store      store.ReminderStore
	parser     *timeparse.Parser
	sched      JobScheduler
	dispatcher Notifier
	logger     *log.Logger
}

func NewService(st store.ReminderStore, parser *timeparse.Parser, sched JobScheduler, dispatcher Notifier, logger *log.Logger) *Service {
	return &Service{
		store:      st,
		parser:     parser,
		sched:      sched,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create validates and persists a reminder, then schedules its notification.
// The scheduled job holds an immutable snapshot of the stored record.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.Reminder, error) {
	name := strings.TrimSpace(req.MedicineName)
	rawTime := strings.TrimSpace(req.ReminderTime)
	if name == "" || rawTime == "" {
		return model.Reminder{}, &ValidationError{Msg: "Medicine name and time required"}
	}

	due, err := s.parser.Parse(rawTime)
	if err != nil {
		return model.Reminder{}, &ValidationError{Msg: fmt.Sprintf("Invalid reminder_time format: %s", rawTime)}
	}

	rec := model.Reminder{
		MedicineName: name,
		ReminderTime: due,
		Phone:        optional(req.Phone),
		Email:        optional(req.Email),
	}
	if err := s.store.Insert(ctx, &rec); err != nil {
		return model.Reminder{}, err
	}

	snapshot := rec
	s.sched.Schedule(jobID(rec.ID), due, func() {
		s.dispatcher.Dispatch(snapshot)
	})
	s.logger.Printf("reminder: %s scheduled for %s", rec.ID, due)
	return rec, nil
}

// List returns the stored reminders' summary projection.
func (s *Service) List(ctx context.Context) ([]model.ReminderSummary, error) {
	return s.store.List(ctx)
}

// Delete removes a reminder and cancels its pending notification job, so a
// deleted reminder can no longer fire.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.sched.Cancel(jobID(id)) {
		s.logger.Printf("reminder: %s deleted, pending job cancelled", id)
	}
	return nil
}

// IsValidation reports whether err is a request fault.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func jobID(id string) string {
	return "reminder-" + id
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
