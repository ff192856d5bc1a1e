package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/kantorid/persediaan/internal/db"
	"github.com/kantorid/persediaan/internal/model"
)

func testType(t *testing.T, database *sql.DB, name string) int64 {
	t.Helper()
	ct, err := CreateType(context.Background(), database, name, "", 5, model.PeriodWeekly)
	if err != nil {
		t.Fatalf("creating type: %v", err)
	}
	return ct.ID
}

func TestItemLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	typeID := testType(t, database, "Snacks")
	purchased := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	item, err := CreateItem(ctx, database, "Crackers", "Box of 24", &purchased, typeID)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Stock != 0 {
		t.Errorf("expected new item to start at zero stock, got %d", item.Stock)
	}
	if item.TypeName != "Snacks" || item.TypeLimit != 5 || item.TypePeriod != model.PeriodWeekly {
		t.Errorf("expected type policy joined, got %+v", item)
	}

	otherType := testType(t, database, "Drinks")
	if err := UpdateItem(ctx, database, item.ID, "Crackers XL", "Box of 48", nil, otherType); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Crackers XL" || got.TypeID != otherType || got.PurchaseDate != nil {
		t.Errorf("update not applied: %+v", got)
	}

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	got, err = GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem after delete: %v", err)
	}
	if got == nil || got.DeletedAt == nil {
		t.Error("expected delete to set deleted_at")
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	snacks := testType(t, database, "Snacks")
	drinks := testType(t, database, "Drinks")

	seed := []struct {
		name   string
		typeID int64
	}{
		{"Instant coffee", drinks},
		{"Green tea", drinks},
		{"Coffee biscuits", snacks},
	}
	for _, s := range seed {
		if _, err := CreateItem(ctx, database, s.name, "", nil, s.typeID); err != nil {
			t.Fatalf("creating %q: %v", s.name, err)
		}
	}

	_, total, err := ListItems(ctx, database, "", 0, 10, 0)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 items, got %d", total)
	}

	items, total, err := ListItems(ctx, database, "coffee", 0, 10, 0)
	if err != nil {
		t.Fatalf("ListItems search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 coffee matches, got %d (total %d)", len(items), total)
	}

	items, total, err = ListItems(ctx, database, "", drinks, 10, 0)
	if err != nil {
		t.Fatalf("ListItems by type: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 drinks, got %d", total)
	}
	for _, item := range items {
		if item.TypeID != drinks {
			t.Errorf("item %q has wrong type %d", item.Name, item.TypeID)
		}
	}

	items, total, err = ListItems(ctx, database, "coffee", drinks, 10, 0)
	if err != nil {
		t.Fatalf("ListItems combined: %v", err)
	}
	if total != 1 || items[0].Name != "Instant coffee" {
		t.Errorf("expected only Instant coffee, got %+v", items)
	}
}

func TestItemPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	typeID := testType(t, database, "Snacks")
	item, err := CreateItem(ctx, database, "Nuts", "", nil, typeID)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	photo, mime, err := GetItemPhoto(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemPhoto: %v", err)
	}
	if photo != nil || mime != "" {
		t.Error("expected no photo yet")
	}

	data := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := SetItemPhoto(ctx, database, item.ID, data, "image/jpeg"); err != nil {
		t.Fatalf("SetItemPhoto: %v", err)
	}

	photo, mime, err = GetItemPhoto(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemPhoto: %v", err)
	}
	if string(photo) != string(data) || mime != "image/jpeg" {
		t.Errorf("unexpected photo round trip: %d bytes, mime %q", len(photo), mime)
	}
}
