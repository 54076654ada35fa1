package tribestore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	tribestore "github.com/dalemusser/flockhub/internal/app/store/tribes"
	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/paging"
	"github.com/dalemusser/flockhub/internal/domain/models"
	"github.com/dalemusser/flockhub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tribestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Tribe{
		Name:        "  North Tribe  ",
		Description: "Northern district",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "North Tribe" {
		t.Errorf("Name: got %q, want %q", created.Name, "North Tribe")
	}
	if created.NameCI != "north tribe" {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, "north tribe")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if created.DeletedAt != nil {
		t.Error("expected DeletedAt to be nil")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tribestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID(), false)
	if apperr.Status(err) != 404 {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestStore_List_SearchAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tribestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"North Tribe", "South Tribe", "East Side"} {
		if _, err := store.Create(ctx, models.Tribe{Name: name}); err != nil {
			t.Fatalf("Create %q failed: %v", name, err)
		}
	}

	tribes, total, err := store.List(ctx, paging.Params{Page: 1, PageSize: 10, Search: "tribe"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Errorf("total: got %d, want 2", total)
	}
	if len(tribes) != 2 {
		t.Errorf("len(tribes): got %d, want 2", len(tribes))
	}

	// Second page of size 1 returns the second match
	tribes, total, err = store.List(ctx, paging.Params{Page: 2, PageSize: 1, Search: "tribe"})
	if err != nil {
		t.Fatalf("List page 2 failed: %v", err)
	}
	if total != 2 || len(tribes) != 1 {
		t.Errorf("page 2: got total=%d len=%d, want total=2 len=1", total, len(tribes))
	}
}

func TestStore_Delete_SoftAndIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tribestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Tribe{Name: "Doomed"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, created.ID, false); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Hidden from normal reads and lists
	if _, err := store.GetByID(ctx, created.ID, false); apperr.Status(err) != 404 {
		t.Errorf("expected deleted tribe to be hidden, got %v", err)
	}
	if _, total, err := store.List(ctx, paging.Params{Page: 1, PageSize: 10}); err != nil || total != 0 {
		t.Errorf("expected empty list, got total=%d err=%v", total, err)
	}

	// Still visible with includeDeleted
	got, err := store.GetByID(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("GetByID(includeDeleted) failed: %v", err)
	}
	if got.DeletedAt == nil {
		t.Error("expected DeletedAt to be set")
	}

	// Deleting again succeeds
	if err := store.Delete(ctx, created.ID, false); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}

	// Deleting a missing tribe is not found
	if err := store.Delete(ctx, primitive.NewObjectID(), false); apperr.Status(err) != 404 {
		t.Errorf("expected not-found for missing tribe, got %v", err)
	}
}

func TestStore_Restore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tribestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Tribe{Name: "Phoenix"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, created.ID, false); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	restored, err := store.Restore(ctx, created.ID)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("expected DeletedAt to be cleared")
	}

	// Back in normal reads
	if _, err := store.GetByID(ctx, created.ID, false); err != nil {
		t.Errorf("expected restored tribe to be visible, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tribestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Tribe{Name: "Old Name", Description: "old"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newName := "New Name"
	updated, err := store.Update(ctx, created.ID, tribestore.Update{Name: &newName})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("Name: got %q, want %q", updated.Name, "New Name")
	}
	if updated.NameCI != "new name" {
		t.Errorf("NameCI: got %q, want %q", updated.NameCI, "new name")
	}
	// Omitted fields untouched
	if updated.Description != "old" {
		t.Errorf("Description: got %q, want %q", updated.Description, "old")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}

	// Soft-deleted tribes cannot be updated
	if err := store.Delete(ctx, created.ID, false); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Update(ctx, created.ID, tribestore.Update{Name: &newName}); apperr.Status(err) != 404 {
		t.Errorf("expected not-found for deleted tribe, got %v", err)
	}
}
