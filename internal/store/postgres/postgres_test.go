package postgres_test

import (
	"context"
	"testing"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/store/postgres"
	"github.com/Rijon63/fothebys-auction-system/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	db := newTestDB(t)
	storetest.Run(t, func(t *testing.T) *store.Repositories {
		truncate(t, db)
		return postgres.New(db, clock.Real{})
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// newTestDB already migrated once; a second run must be a no-op.
	if err := postgres.Migrate(context.Background(), db.DB); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var version int
	if err := db.Get(&version, `SELECT version FROM schema_migrations`); err != nil {
		t.Fatalf("reading schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestAuctionRepo_CategoryConstraint(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewAuctionRepo(db, clock.Real{})

	a := storetest.NewAuction("Tapestries", "seller-1")
	a.Category = "Tapestries"
	if err := repo.Create(context.Background(), a); err == nil {
		t.Fatal("expected check constraint violation for unknown category")
	}
}

func TestLotRepo_DimensionsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgres.NewLotRepo(db, clock.Real{})

	l := storetest.NewLot("auction-1", "L-900", "seller-1")
	width := 4.5
	l.Dimensions.Width = &width
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	d := got.Dimensions
	if d.Height == nil || *d.Height != 60 || d.Length == nil || *d.Length != 90 || d.Width == nil || *d.Width != 4.5 {
		t.Errorf("dimensions = %+v, want 60 x 90 x 4.5", d)
	}

	l.Category = "Tapestry"
	l.ID, l.LotNumber = "", "L-901"
	if err := repo.Create(ctx, l); err == nil {
		t.Fatal("expected check constraint violation for unknown lot category")
	}
}

func TestClientRepo_TypeConstraint(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewClientRepo(db, clock.Real{})

	c := &store.Client{UserID: "user-1", FullName: "Ada", Email: "ada@example.com", Type: "collector"}
	if err := repo.Create(context.Background(), c); err == nil {
		t.Fatal("expected check constraint violation for unknown client type")
	}
}
