// Package notify fires a due reminder across every configured delivery
// channel. Delivery is best effort: a channel failure is logged and recorded,
// never surfaced to the scheduler.
package notify

import (
	"fmt"
	"log"

	"github.com/arimitra/healthmate/internal/model"
)

// EventReminderDue is the live-push event name browsers subscribe to.
const EventReminderDue = "reminder_due"

// SMSSender sends a short text message.
type SMSSender interface {
	SendSMS(to, body string) error
}

// MailSender sends a plain-text email.
type MailSender interface {
	Send(to, subject, body string) error
}

// Publisher broadcasts an event to live listeners.
type Publisher interface {
	Publish(event string, payload any)
}

// Status is the outcome of one channel's delivery attempt.
type Status int

const (
	// Skipped means the channel was unconfigured or the record had no
	// destination for it.
	Skipped Status = iota
	Sent
	Failed
)

func (s Status) String() string {
	switch s {
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result captures per-channel outcomes for a single dispatch.
type Result struct {
	SMS   Status
	Email Status
	Push  Status
}

// Dispatcher sends reminder alerts. A nil sms or email sender marks that
// channel unconfigured; the push channel has no configuration gate.
type Dispatcher struct {
	sms    SMSSender
	email  MailSender
	push   Publisher
	logger *log.Logger
}

func NewDispatcher(sms SMSSender, email MailSender, push Publisher, logger *log.Logger) *Dispatcher {
	return &Dispatcher{sms: sms, email: email, push: push, logger: logger}
}

// Dispatch sends the alert for rec on each available channel. It always
// completes; the returned Result exists for logging and tests.
func (d *Dispatcher) Dispatch(rec model.Reminder) Result {
	text := fmt.Sprintf("Medicine Reminder: Take %s", rec.MedicineName)
	var res Result

	if d.sms != nil && rec.Phone != nil && *rec.Phone != "" {
		if err := d.sms.SendSMS(*rec.Phone, text); err != nil {
			d.logger.Printf("notify: sms to %s: %v", *rec.Phone, err)
			res.SMS = Failed
		} else {
			res.SMS = Sent
		}
	}

	if d.email != nil && rec.Email != nil && *rec.Email != "" {
		if err := d.email.Send(*rec.Email, "Medicine Reminder", text); err != nil {
			d.logger.Printf("notify: email to %s: %v", *rec.Email, err)
			res.Email = Failed
		} else {
			res.Email = Sent
		}
	}

	if d.push != nil {
		d.push.Publish(EventReminderDue, map[string]any{"reminder": rec})
		res.Push = Sent
	}

	d.logger.Printf("notify: reminder %s (%s) dispatched sms=%v email=%v push=%v",
		rec.ID, rec.MedicineName, res.SMS, res.Email, res.Push)
	return res
}
