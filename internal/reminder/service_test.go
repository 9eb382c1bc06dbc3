package reminder

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/arimitra/healthmate/internal/model"
	"github.com/arimitra/healthmate/internal/notify"
	"github.com/arimitra/healthmate/internal/store"
	"github.com/arimitra/healthmate/internal/timeparse"
	"github.com/jmhodges/clock"
)

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	actions   map[string]func()
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		scheduled: make(map[string]time.Time),
		actions:   make(map[string]func()),
	}
}

func (f *fakeScheduler) Schedule(jobID string, at time.Time, action func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled[jobID] = at
	f.actions[jobID] = action
}

func (f *fakeScheduler) Cancel(jobID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, jobID)
	_, ok := f.scheduled[jobID]
	delete(f.scheduled, jobID)
	return ok
}

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []model.Reminder
}

func (f *fakeDispatcher) Dispatch(rec model.Reminder) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, rec)
	return notify.Result{Push: notify.Sent}
}

func newTestService(t *testing.T, now time.Time) (*Service, *store.MemoryStore, *fakeScheduler, *fakeDispatcher) {
	t.Helper()

	fc := clock.NewFake()
	fc.Set(now)

	st := store.NewMemoryStore()
	sched := newFakeScheduler()
	disp := &fakeDispatcher{}
	svc := NewService(st, timeparse.New(fc, time.UTC), sched, disp, log.New(io.Discard, "", 0))
	return svc, st, sched, disp
}

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestCreateValidatesRequiredFields(t *testing.T) {
	t.Parallel()

	svc, st, _, _ := newTestService(t, testNow)
	ctx := context.Background()

	cases := []CreateRequest{
		{MedicineName: "", ReminderTime: "09:00"},
		{MedicineName: "Aspirin", ReminderTime: ""},
		{MedicineName: "  ", ReminderTime: "09:00"},
	}
	for _, req := range cases {
		_, err := svc.Create(ctx, req)
		if !IsValidation(err) {
			t.Fatalf("Create(%+v) error = %v, want ValidationError", req, err)
		}
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed creations persisted records: %+v", list)
	}
}

func TestCreateRejectsUnparsableTimeWithoutPersisting(t *testing.T) {
	t.Parallel()

	svc, st, sched, _ := newTestService(t, testNow)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{MedicineName: "Aspirin", ReminderTime: "not-a-time"})
	if !IsValidation(err) {
		t.Fatalf("Create error = %v, want ValidationError", err)
	}

	list, _ := st.List(ctx)
	if len(list) != 0 {
		t.Fatalf("bad time persisted a record: %+v", list)
	}
	if len(sched.scheduled) != 0 {
		t.Fatalf("bad time scheduled a job: %+v", sched.scheduled)
	}
}

func TestCreatePersistsAndSchedules(t *testing.T) {
	t.Parallel()

	// Current time 10:00, requested 09:00 -> tomorrow 09:00.
	svc, st, sched, disp := newTestService(t, testNow)
	ctx := context.Background()

	rec, err := svc.Create(ctx, CreateRequest{
		MedicineName: "Aspirin",
		ReminderTime: "09:00",
		Phone:        "+15550001111",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Create did not return an assigned id")
	}
	if want := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC); !rec.ReminderTime.Equal(want) {
		t.Fatalf("ReminderTime = %v, want %v", rec.ReminderTime, want)
	}
	if rec.Phone == nil || *rec.Phone != "+15550001111" {
		t.Fatalf("phone not stored: %+v", rec)
	}
	if rec.Email != nil {
		t.Fatalf("unexpected email: %v", *rec.Email)
	}

	jobID := "reminder-" + rec.ID
	at, ok := sched.scheduled[jobID]
	if !ok {
		t.Fatalf("no job scheduled under %q: %+v", jobID, sched.scheduled)
	}
	if !at.Equal(rec.ReminderTime) {
		t.Fatalf("job scheduled at %v, want %v", at, rec.ReminderTime)
	}

	// The scheduled action dispatches the stored snapshot.
	sched.actions[jobID]()
	if len(disp.dispatched) != 1 || disp.dispatched[0].ID != rec.ID {
		t.Fatalf("unexpected dispatches: %+v", disp.dispatched)
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != rec.ID {
		t.Fatalf("unexpected stored records: %+v", list)
	}
}

func TestDeleteCancelsPendingJob(t *testing.T) {
	t.Parallel()

	svc, st, sched, _ := newTestService(t, testNow)
	ctx := context.Background()

	rec, err := svc.Create(ctx, CreateRequest{MedicineName: "Aspirin", ReminderTime: "09:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	jobID := "reminder-" + rec.ID
	if len(sched.cancelled) != 1 || sched.cancelled[0] != jobID {
		t.Fatalf("job not cancelled on delete: %+v", sched.cancelled)
	}
	if list, _ := st.List(ctx); len(list) != 0 {
		t.Fatalf("record survived delete: %+v", list)
	}
}

func TestDeleteUnknownIDReturnsNotFound(t *testing.T) {
	t.Parallel()

	svc, _, sched, _ := newTestService(t, testNow)

	err := svc.Delete(context.Background(), "no-such-id")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Delete error = %v, want ErrNotFound", err)
	}
	if len(sched.cancelled) != 0 {
		t.Fatalf("cancel attempted for missing record: %+v", sched.cancelled)
	}
}
