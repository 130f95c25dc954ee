package auction_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auction"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/store/memstore"
	"github.com/Rijon63/fothebys-auction-system/internal/store/storetest"
)

var (
	now    = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	admin  = auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}
	seller = auth.Identity{UserID: "seller-1", Role: auth.RoleSeller}
	other  = auth.Identity{UserID: "seller-2", Role: auth.RoleSeller}
	buyer  = auth.Identity{UserID: "user-9", ClientID: "client-9", Role: auth.RoleBuyer}
)

func ptr[T any](v T) *T { return &v }

func newManager(t *testing.T) (*auction.Manager, *store.Repositories) {
	t.Helper()
	repos := memstore.New(clock.NewMock(now))
	return auction.NewManager(repos, slog.Default(), noop.NewTracerProvider()), repos
}

func validInput(title string) auction.CreateInput {
	return auction.CreateInput{
		Title:          title,
		Description:    "Spring sale",
		StartDate:      ptr(now),
		EndDate:        ptr(now.Add(72 * time.Hour)),
		BiddingEndTime: ptr(now.Add(48 * time.Hour)),
		Category:       store.AuctionPaintings,
	}
}

func TestManager_Create(t *testing.T) {
	mgr, _ := newManager(t)

	a, err := mgr.Create(context.Background(), seller, validInput("Old Masters"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected ID to be set")
	}
	if a.CreatorID != "seller-1" {
		t.Errorf("CreatorID = %q, want caller seller-1", a.CreatorID)
	}
	if a.Lots == nil {
		t.Error("expected empty lots slice, got nil")
	}
}

func TestManager_Create_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		caller auth.Identity
		mutate func(*auction.CreateInput)
		want   error
	}{
		{"buyer cannot create", buyer, func(*auction.CreateInput) {}, apperr.ErrForbidden},
		{"seller cannot create for another", seller, func(in *auction.CreateInput) { in.CreatorID = "seller-2" }, apperr.ErrForbidden},
		{"missing title", seller, func(in *auction.CreateInput) { in.Title = " " }, apperr.ErrValidation},
		{"missing bidding end", seller, func(in *auction.CreateInput) { in.BiddingEndTime = nil }, apperr.ErrValidation},
		{"unknown category", seller, func(in *auction.CreateInput) { in.Category = "Tapestries" }, apperr.ErrValidation},
		{"end before start", seller, func(in *auction.CreateInput) { in.EndDate = ptr(now.Add(-time.Hour)) }, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, _ := newManager(t)
			in := validInput("Rejected")
			tt.mutate(&in)
			if _, err := mgr.Create(context.Background(), tt.caller, in); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestManager_Create_AdminForSeller(t *testing.T) {
	mgr, _ := newManager(t)
	in := validInput("Consigned")
	in.CreatorID = "seller-2"
	a, err := mgr.Create(context.Background(), admin, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.CreatorID != "seller-2" {
		t.Errorf("CreatorID = %q, want seller-2", a.CreatorID)
	}
}

func TestManager_Create_DuplicateTitle(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	if _, err := mgr.Create(ctx, seller, validInput("Prints")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := mgr.Create(ctx, seller, validInput("Prints")); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate Create() error = %v, want ErrConflict", err)
	}
	if _, err := mgr.Create(ctx, other, validInput("Prints")); err != nil {
		t.Errorf("same title by another creator: %v", err)
	}
}

func TestManager_GetAndList_AttachLots(t *testing.T) {
	mgr, repos := newManager(t)
	ctx := context.Background()

	a, err := mgr.Create(ctx, seller, validInput("With Lots"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	sculptures := validInput("Bronzes")
	sculptures.Category = store.AuctionSculptures
	if _, err := mgr.Create(ctx, seller, sculptures); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, n := range []string{"L-1", "L-2"} {
		if err := repos.Lots.Create(ctx, storetest.NewLot(a.ID, n, "seller-1")); err != nil {
			t.Fatalf("Lots.Create: %v", err)
		}
	}

	got, err := mgr.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Lots) != 2 || got.Lots[0].LotNumber != "L-1" {
		t.Errorf("Get().Lots = %v, want L-1, L-2", got.Lots)
	}

	paintings, err := mgr.List(ctx, store.AuctionPaintings)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(paintings) != 1 || len(paintings[0].Lots) != 2 {
		t.Errorf("List(Paintings) = %+v", paintings)
	}

	if _, err := mgr.List(ctx, "Tapestries"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("List(unknown) error = %v, want ErrValidation", err)
	}
	if _, err := mgr.Get(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestManager_Update(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	a, err := mgr.Create(ctx, seller, validInput("Editable"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := mgr.Update(ctx, seller, a.ID, auction.UpdateInput{Title: ptr("Edited"), Image: ptr("cover.png")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Title != "Edited" || got.Image != "cover.png" {
		t.Errorf("Update() = %+v", got)
	}
	if got.Description != "Spring sale" || !got.BiddingEndTime.Equal(*validInput("").BiddingEndTime) {
		t.Errorf("omitted fields changed: %+v", got)
	}

	if _, err := mgr.Update(ctx, other, a.ID, auction.UpdateInput{Title: ptr("Hijacked")}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Update by non-owner error = %v, want ErrForbidden", err)
	}
	if _, err := mgr.Update(ctx, admin, a.ID, auction.UpdateInput{Title: ptr("By Admin")}); err != nil {
		t.Errorf("Update by admin error = %v", err)
	}
	if _, err := mgr.Update(ctx, seller, a.ID, auction.UpdateInput{EndDate: ptr(now.Add(-time.Hour))}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Update with end before start error = %v, want ErrValidation", err)
	}
	if _, err := mgr.Update(ctx, seller, "missing", auction.UpdateInput{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestManager_Delete(t *testing.T) {
	mgr, repos := newManager(t)
	ctx := context.Background()
	a, err := mgr.Create(ctx, seller, validInput("Doomed"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	lot := storetest.NewLot(a.ID, "D-1", "seller-1")
	if err := repos.Lots.Create(ctx, lot); err != nil {
		t.Fatalf("Lots.Create: %v", err)
	}

	if err := mgr.Delete(ctx, other, a.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Delete by non-owner error = %v, want ErrForbidden", err)
	}
	if err := mgr.Delete(ctx, seller, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := mgr.Get(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if _, err := repos.Lots.GetByID(ctx, lot.ID); err != nil {
		t.Errorf("lot should survive auction delete, got %v", err)
	}
}

func TestManager_Search(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	for _, title := range []string{"Dutch Landscapes", "French Portraits"} {
		if _, err := mgr.Create(ctx, seller, validInput(title)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	got, err := mgr.Search(ctx, store.AuctionFilter{TitleContains: "dutch"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Dutch Landscapes" {
		t.Errorf("Search() = %v", got)
	}
}

func TestManager_Bought(t *testing.T) {
	mgr, repos := newManager(t)
	ctx := context.Background()
	a, err := mgr.Create(ctx, seller, validInput("Bought"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repos.Auctions.MarkSold(ctx, a.ID, "client-9", 1000, now); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}

	got, err := mgr.Bought(ctx, buyer, "client-9")
	if err != nil {
		t.Fatalf("Bought() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("Bought() = %v", got)
	}
	if _, err := mgr.Bought(ctx, buyer, "client-1"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Bought for another client error = %v, want ErrForbidden", err)
	}
}
