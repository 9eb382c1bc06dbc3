package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arimitra/healthmate/internal/model"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := db.AutoMigrate(&model.Reminder{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewGormStore(db)
}

func strPtr(s string) *string { return &s }

// runStoreTests exercises the ReminderStore contract shared by both backings.
func runStoreTests(t *testing.T, st ReminderStore) {
	ctx := context.Background()

	phone := strPtr("+15550001111")
	first := model.Reminder{
		MedicineName: "Aspirin",
		ReminderTime: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		Phone:        phone,
	}
	second := model.Reminder{
		MedicineName: "Ibuprofen",
		ReminderTime: time.Date(2024, 5, 2, 21, 0, 0, 0, time.UTC),
		Email:        strPtr("a@example.com"),
	}

	if err := st.Insert(ctx, &first); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if err := st.Insert(ctx, &second); err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if first.ID == "" || second.ID == "" {
		t.Fatalf("insert did not assign ids: %q %q", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Fatalf("duplicate ids assigned: %q", first.ID)
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list returned %d records, want 2", len(list))
	}
	if list[0].MedicineName != "Aspirin" || list[1].MedicineName != "Ibuprofen" {
		t.Fatalf("unexpected list order: %+v", list)
	}
	if list[0].Phone == nil || *list[0].Phone != *phone {
		t.Fatalf("phone not preserved in listing: %+v", list[0])
	}
	if list[0].Email != nil {
		t.Fatalf("expected nil email for first record, got %v", *list[0].Email)
	}

	if err := st.Delete(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete unknown id error = %v, want ErrNotFound", err)
	}
	if list, err = st.List(ctx); err != nil || len(list) != 2 {
		t.Fatalf("list changed after failed delete: %v, %d records", err, len(list))
	}

	if err := st.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	list, err = st.List(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID {
		t.Fatalf("unexpected records after delete: %+v", list)
	}
}

func TestGormStore(t *testing.T) {
	t.Parallel()
	runStoreTests(t, newTestGormStore(t))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	runStoreTests(t, NewMemoryStore())
}

func TestGormStoreUnavailable(t *testing.T) {
	t.Parallel()

	st := NewGormStore(nil)
	ctx := context.Background()

	if err := st.Insert(ctx, &model.Reminder{MedicineName: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Insert error = %v, want ErrUnavailable", err)
	}
	if _, err := st.List(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("List error = %v, want ErrUnavailable", err)
	}
	if err := st.Delete(ctx, "any"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Delete error = %v, want ErrUnavailable", err)
	}
}
