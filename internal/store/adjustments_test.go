package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/kantorid/persediaan/internal/db"
)

func insertAdjustment(t *testing.T, database *sql.DB, itemID, userID int64, change int, reason string, createdAt time.Time) int64 {
	t.Helper()
	result, err := database.ExecContext(context.Background(),
		`INSERT INTO stock_adjustments (item_id, change, reason, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, change, reason, userID, createdAt.UTC(),
	)
	if err != nil {
		t.Fatalf("inserting adjustment: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func TestGetAdjustment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	userA, _, itemA, _ := recordFixture(t, database)
	id := insertAdjustment(t, database, itemA, userA, 20, "Initial stock", time.Now())

	adj, err := GetAdjustment(ctx, database, id)
	if err != nil {
		t.Fatalf("GetAdjustment: %v", err)
	}
	if adj == nil {
		t.Fatal("expected adjustment, got nil")
	}
	if adj.Change != 20 || adj.Reason != "Initial stock" {
		t.Errorf("unexpected adjustment: %+v", adj)
	}
	if adj.ItemName != "Crackers" || adj.UserName != "Ana" {
		t.Errorf("expected joined names, got %+v", adj)
	}

	adj, err = GetAdjustment(ctx, database, 9999)
	if err != nil {
		t.Fatalf("GetAdjustment missing: %v", err)
	}
	if adj != nil {
		t.Error("expected nil for unknown adjustment")
	}
}

func TestListAdjustments(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	userA, _, itemA, itemB := recordFixture(t, database)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	insertAdjustment(t, database, itemA, userA, 20, "Initial stock", base)
	insertAdjustment(t, database, itemA, userA, -5, "Damaged batch", base.AddDate(0, 0, 1))
	insertAdjustment(t, database, itemB, userA, 10, "Initial stock", base)

	adjustments, total, err := ListAdjustments(ctx, database, itemA, 10, 0)
	if err != nil {
		t.Fatalf("ListAdjustments: %v", err)
	}
	if total != 2 || len(adjustments) != 2 {
		t.Fatalf("expected 2 adjustments for item A, got %d (total %d)", len(adjustments), total)
	}
	// Newest first.
	if adjustments[0].Change != -5 || adjustments[1].Change != 20 {
		t.Errorf("expected newest-first ordering, got %+v", adjustments)
	}

	// Pagination.
	adjustments, total, err = ListAdjustments(ctx, database, itemA, 1, 1)
	if err != nil {
		t.Fatalf("ListAdjustments paginated: %v", err)
	}
	if total != 2 || len(adjustments) != 1 || adjustments[0].Change != 20 {
		t.Errorf("expected second page with the older entry, got %+v", adjustments)
	}
}
