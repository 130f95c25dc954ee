// Package storetest is a conformance suite run against every store driver.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// Opener returns empty repositories for one subtest.
type Opener func(t *testing.T) *store.Repositories

// Run exercises the full repository contract against the driver behind open.
func Run(t *testing.T, open Opener) {
	t.Run("AuctionCreateAndGet", func(t *testing.T) { testAuctionCreateAndGet(t, open(t)) })
	t.Run("AuctionDuplicateTitle", func(t *testing.T) { testAuctionDuplicateTitle(t, open(t)) })
	t.Run("AuctionListFilters", func(t *testing.T) { testAuctionListFilters(t, open(t)) })
	t.Run("AuctionUpdateAndDelete", func(t *testing.T) { testAuctionUpdateAndDelete(t, open(t)) })
	t.Run("AuctionRecordBid", func(t *testing.T) { testAuctionRecordBid(t, open(t)) })
	t.Run("AuctionMarkSold", func(t *testing.T) { testAuctionMarkSold(t, open(t)) })
	t.Run("LotDuplicateNumber", func(t *testing.T) { testLotDuplicateNumber(t, open(t)) })
	t.Run("LotListFilters", func(t *testing.T) { testLotListFilters(t, open(t)) })
	t.Run("LotUpdateKeepsSale", func(t *testing.T) { testLotUpdateKeepsSale(t, open(t)) })
	t.Run("LotSales", func(t *testing.T) { testLotSales(t, open(t)) })
	t.Run("Clients", func(t *testing.T) { testClients(t, open(t)) })
	t.Run("BidHistoryOrder", func(t *testing.T) { testBidHistoryOrder(t, open(t)) })
	t.Run("Favorites", func(t *testing.T) { testFavorites(t, open(t)) })
	t.Run("CommissionBids", func(t *testing.T) { testCommissionBids(t, open(t)) })
	t.Run("TransactionRollback", func(t *testing.T) { testTransactionRollback(t, open(t)) })
	t.Run("TransactionCommit", func(t *testing.T) { testTransactionCommit(t, open(t)) })
}

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// NewAuction returns a valid unsaved auction.
func NewAuction(title, creator string) *store.Auction {
	return &store.Auction{
		Title:          title,
		Description:    "Spring sale",
		StartDate:      base,
		EndDate:        base.Add(72 * time.Hour),
		BiddingEndTime: base.Add(48 * time.Hour),
		Category:       store.AuctionPaintings,
		CreatorID:      creator,
	}
}

// NewLot returns a valid unsaved painting lot.
func NewLot(auctionID, number, seller string) *store.Lot {
	return &store.Lot{
		AuctionID:             auctionID,
		LotNumber:             number,
		Title:                 "Harbour at Dusk",
		Artist:                "J. Turner",
		YearProduced:          1840,
		SubjectClassification: "Landscape",
		Description:           "Oil on canvas",
		AuctionDate:           ptr(base.Add(24 * time.Hour)),
		StartingPrice:         500,
		EstimatedPrice:        1500,
		Category:              store.LotPainting,
		SellerID:              seller,
		Dimensions:            store.Dimensions{Height: ptr(60.0), Length: ptr(90.0)},
		Framed:                true,
		MediumOrMaterial:      "Oil",
	}
}

func mustCreateAuction(t *testing.T, r *store.Repositories, a *store.Auction) *store.Auction {
	t.Helper()
	if err := r.Auctions.Create(context.Background(), a); err != nil {
		t.Fatalf("Auctions.Create(%q): %v", a.Title, err)
	}
	return a
}

func mustCreateLot(t *testing.T, r *store.Repositories, l *store.Lot) *store.Lot {
	t.Helper()
	if err := r.Lots.Create(context.Background(), l); err != nil {
		t.Fatalf("Lots.Create(%q): %v", l.LotNumber, err)
	}
	return l
}

func testAuctionCreateAndGet(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Old Masters", "seller-1"))
	if a.ID == "" {
		t.Fatal("expected ID to be set after Create")
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set after Create")
	}

	got, err := r.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Old Masters" || got.CreatorID != "seller-1" || got.Category != store.AuctionPaintings {
		t.Errorf("got %+v", got)
	}
	if !got.BiddingEndTime.Equal(a.BiddingEndTime) {
		t.Errorf("BiddingEndTime = %v, want %v", got.BiddingEndTime, a.BiddingEndTime)
	}
	if got.HighestBid != nil || got.SalePrice != nil || got.WinnerID != nil || got.BuyerID != nil {
		t.Errorf("expected empty bid and sale tracks, got %+v", got)
	}

	if _, err := r.Auctions.GetByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func testAuctionDuplicateTitle(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	mustCreateAuction(t, r, NewAuction("Modern Prints", "seller-1"))

	err := r.Auctions.Create(ctx, NewAuction("Modern Prints", "seller-1"))
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate Create error = %v, want ErrDuplicate", err)
	}
	if err := r.Auctions.Create(ctx, NewAuction("Modern Prints", "seller-2")); err != nil {
		t.Errorf("same title for another creator: %v", err)
	}
}

func testAuctionListFilters(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	first := mustCreateAuction(t, r, NewAuction("Dutch Landscapes", "seller-1"))
	sculpture := NewAuction("Bronze Figures", "seller-2")
	sculpture.Category = store.AuctionSculptures
	sculpture.StartDate = base.Add(240 * time.Hour)
	sculpture.EndDate = base.Add(300 * time.Hour)
	mustCreateAuction(t, r, sculpture)

	all, err := r.Auctions.List(ctx, store.AuctionFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID {
		t.Fatalf("List() = %d auctions (first %v), want 2 in creation order", len(all), all)
	}

	tests := []struct {
		name   string
		filter store.AuctionFilter
		want   string
	}{
		{"category", store.AuctionFilter{Category: store.AuctionSculptures}, "Bronze Figures"},
		{"title substring ignores case", store.AuctionFilter{TitleContains: "dutch"}, "Dutch Landscapes"},
		{"creator", store.AuctionFilter{CreatorID: "seller-2"}, "Bronze Figures"},
		{"starts from", store.AuctionFilter{StartsFrom: ptr(base.Add(200 * time.Hour))}, "Bronze Figures"},
		{"ends by", store.AuctionFilter{EndsBy: ptr(base.Add(100 * time.Hour))}, "Dutch Landscapes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Auctions.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != 1 || got[0].Title != tt.want {
				t.Errorf("List(%+v) = %v, want only %q", tt.filter, got, tt.want)
			}
		})
	}

	byID, err := r.Auctions.ListByIDs(ctx, []string{first.ID, "missing"})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != first.ID {
		t.Errorf("ListByIDs() = %v, want only %s", byID, first.ID)
	}
}

func testAuctionUpdateAndDelete(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Watercolours", "seller-1"))
	mustCreateAuction(t, r, NewAuction("Etchings", "seller-1"))

	a.Title = "Watercolours II"
	a.Category = store.AuctionDrawings
	a.Image = "watercolours.png"
	if err := r.Auctions.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := r.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Watercolours II" || got.Category != store.AuctionDrawings || got.Image != "watercolours.png" {
		t.Errorf("after Update got %+v", got)
	}

	a.Title = "Etchings"
	if err := r.Auctions.Update(ctx, a); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Update to taken title error = %v, want ErrDuplicate", err)
	}

	if err := r.Auctions.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Auctions.GetByID(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID after Delete error = %v, want ErrNotFound", err)
	}
	if err := r.Auctions.Delete(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func testAuctionRecordBid(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Miniatures", "seller-1"))
	at := base.Add(time.Hour)

	if err := r.Auctions.RecordBid(ctx, a.ID, 100, "client-a", at); err != nil {
		t.Fatalf("first RecordBid: %v", err)
	}
	if err := r.Auctions.RecordBid(ctx, a.ID, 100, "client-b", at); !errors.Is(err, store.ErrConflict) {
		t.Errorf("equal RecordBid error = %v, want ErrConflict", err)
	}
	if err := r.Auctions.RecordBid(ctx, a.ID, 150, "client-b", at); err != nil {
		t.Fatalf("higher RecordBid: %v", err)
	}

	got, err := r.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.HighestBid == nil || *got.HighestBid != 150 {
		t.Errorf("HighestBid = %v, want 150", got.HighestBid)
	}
	if got.WinnerID == nil || *got.WinnerID != "client-b" {
		t.Errorf("WinnerID = %v, want client-b", got.WinnerID)
	}

	if err := r.Auctions.RecordBid(ctx, "missing", 10, "client-a", at); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("RecordBid(missing) error = %v, want ErrNotFound", err)
	}
}

func testAuctionMarkSold(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Carvings", "seller-1"))
	at := base.Add(2 * time.Hour)

	if err := r.Auctions.MarkSold(ctx, a.ID, "client-a", 2500, at); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}
	if err := r.Auctions.MarkSold(ctx, a.ID, "client-b", 3000, at); !errors.Is(err, store.ErrConflict) {
		t.Errorf("second MarkSold error = %v, want ErrConflict", err)
	}
	if err := r.Auctions.RecordBid(ctx, a.ID, 5000, "client-b", at); !errors.Is(err, store.ErrConflict) {
		t.Errorf("RecordBid on sold auction error = %v, want ErrConflict", err)
	}

	got, err := r.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SalePrice == nil || *got.SalePrice != 2500 || got.BuyerID == nil || *got.BuyerID != "client-a" {
		t.Errorf("after MarkSold got sale=%v buyer=%v", got.SalePrice, got.BuyerID)
	}
	if got.HighestBid != nil {
		t.Errorf("HighestBid = %v, want nil (independent track)", *got.HighestBid)
	}
}

func testLotDuplicateNumber(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Lots A", "seller-1"))
	b := mustCreateAuction(t, r, NewAuction("Lots B", "seller-1"))
	l := mustCreateLot(t, r, NewLot(a.ID, "L-001", "seller-1"))
	if l.ID == "" {
		t.Fatal("expected ID to be set after Create")
	}

	if err := r.Lots.Create(ctx, NewLot(b.ID, "L-001", "seller-2")); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate lot number in another auction error = %v, want ErrDuplicate", err)
	}

	got, err := r.Lots.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Dimensions.Height == nil || *got.Dimensions.Height != 60 || got.Dimensions.Width != nil {
		t.Errorf("Dimensions = %+v, want height 60 and no width", got.Dimensions)
	}
	if got.AuctionDate == nil || !got.AuctionDate.Equal(base.Add(24*time.Hour)) {
		t.Errorf("AuctionDate = %v", got.AuctionDate)
	}
}

func testLotListFilters(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Filters A", "seller-1"))
	b := mustCreateAuction(t, r, NewAuction("Filters B", "seller-2"))

	mustCreateLot(t, r, NewLot(a.ID, "F-1", "seller-1"))

	bust := NewLot(b.ID, "F-2", "seller-2")
	bust.Title = "Marble Bust"
	bust.Artist = "A. Canova"
	bust.Category = store.LotSculpture
	bust.SubjectClassification = "Portrait"
	bust.EstimatedPrice = 9000
	bust.AuctionDate = ptr(base.Add(500 * time.Hour))
	mustCreateLot(t, r, bust)

	sold := mustCreateLot(t, r, NewLot(a.ID, "F-3", "seller-1"))
	if err := r.Lots.MarkSold(ctx, sold.ID, "client-a", 1200, base); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}

	tests := []struct {
		name   string
		filter store.LotFilter
		want   []string
	}{
		{"no filter", store.LotFilter{}, []string{"F-1", "F-2", "F-3"}},
		{"auction", store.LotFilter{AuctionIDs: []string{a.ID}}, []string{"F-1", "F-3"}},
		{"seller", store.LotFilter{SellerID: "seller-2"}, []string{"F-2"}},
		{"buyer", store.LotFilter{BuyerID: "client-a"}, []string{"F-3"}},
		{"unsold", store.LotFilter{UnsoldOnly: true}, []string{"F-1", "F-2"}},
		{"category", store.LotFilter{Category: store.LotSculpture}, []string{"F-2"}},
		{"subject ignores case", store.LotFilter{SubjectContains: "PORT"}, []string{"F-2"}},
		{"keyword on artist", store.LotFilter{Keyword: "canova"}, []string{"F-2"}},
		{"keyword on category", store.LotFilter{Keyword: "paint", UnsoldOnly: true}, []string{"F-1"}},
		{"estimate range inclusive", store.LotFilter{MinEstimate: ptr(1500.0), MaxEstimate: ptr(8000.0)}, []string{"F-1", "F-3"}},
		{"auction date range", store.LotFilter{
			AuctionDateFrom: ptr(base.Add(400 * time.Hour)),
			AuctionDateTo:   ptr(base.Add(600 * time.Hour)),
		}, []string{"F-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Lots.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List(%+v) returned %d lots, want %v", tt.filter, len(got), tt.want)
			}
			for i, l := range got {
				if l.LotNumber != tt.want[i] {
					t.Errorf("lot[%d] = %s, want %s", i, l.LotNumber, tt.want[i])
				}
			}
		})
	}
}

func testLotUpdateKeepsSale(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Updates", "seller-1"))
	l := mustCreateLot(t, r, NewLot(a.ID, "U-1", "seller-1"))
	mustCreateLot(t, r, NewLot(a.ID, "U-2", "seller-1"))
	if err := r.Lots.MarkSold(ctx, l.ID, "client-a", 800, base); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}

	l.Title = "Harbour at Dawn"
	l.SalePrice = nil
	l.BuyerID = nil
	if err := r.Lots.Update(ctx, l); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := r.Lots.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Harbour at Dawn" {
		t.Errorf("Title = %q, want %q", got.Title, "Harbour at Dawn")
	}
	if got.SalePrice == nil || *got.SalePrice != 800 {
		t.Errorf("SalePrice = %v, want 800 preserved", got.SalePrice)
	}

	l.LotNumber = "U-2"
	if err := r.Lots.Update(ctx, l); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Update to taken lot number error = %v, want ErrDuplicate", err)
	}

	if err := r.Lots.Delete(ctx, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Lots.GetByID(ctx, l.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID after Delete error = %v, want ErrNotFound", err)
	}
}

func testLotSales(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Cascade", "seller-1"))
	other := mustCreateAuction(t, r, NewAuction("Untouched", "seller-1"))
	l1 := mustCreateLot(t, r, NewLot(a.ID, "C-1", "seller-1"))
	l2 := mustCreateLot(t, r, NewLot(a.ID, "C-2", "seller-1"))
	l3 := mustCreateLot(t, r, NewLot(other.ID, "C-3", "seller-1"))

	if err := r.Lots.MarkSold(ctx, l1.ID, "client-a", 700, base); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}
	if err := r.Lots.MarkSold(ctx, l1.ID, "client-b", 900, base); !errors.Is(err, store.ErrConflict) {
		t.Errorf("second MarkSold error = %v, want ErrConflict", err)
	}

	n, err := r.Lots.MarkSoldByAuction(ctx, a.ID, "client-b", 5000, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("MarkSoldByAuction: %v", err)
	}
	if n != 2 {
		t.Errorf("MarkSoldByAuction changed %d lots, want 2", n)
	}
	for _, id := range []string{l1.ID, l2.ID} {
		got, err := r.Lots.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.SalePrice == nil || *got.SalePrice != 5000 || got.BuyerID == nil || *got.BuyerID != "client-b" {
			t.Errorf("lot %s sale=%v buyer=%v, want 5000/client-b", got.LotNumber, got.SalePrice, got.BuyerID)
		}
	}
	got, err := r.Lots.GetByID(ctx, l3.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Sold() {
		t.Errorf("lot in another auction was sold: %+v", got)
	}
}

func testClients(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	c := &store.Client{ID: "c0a8e2d4-buyer", UserID: "user-1", FullName: "Ada Buyer", Email: "ada@example.com", Type: store.ClientBuyer}
	if err := r.Clients.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID != "c0a8e2d4-buyer" {
		t.Errorf("ID = %q, want caller-provided ID kept", c.ID)
	}

	seller := &store.Client{UserID: "user-2", FullName: "Sam Seller", Email: "sam@example.com", Type: store.ClientSeller}
	if err := r.Clients.Create(ctx, seller); err != nil {
		t.Fatalf("Create seller: %v", err)
	}
	if seller.ID == "" {
		t.Error("expected generated ID")
	}

	dup := &store.Client{UserID: "user-1", FullName: "Dup", Email: "dup@example.com", Type: store.ClientBuyer}
	if err := r.Clients.Create(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate user Create error = %v, want ErrDuplicate", err)
	}

	got, err := r.Clients.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("GetByUserID().ID = %q, want %q", got.ID, c.ID)
	}
	if _, err := r.Clients.GetByUserID(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByUserID(nobody) error = %v, want ErrNotFound", err)
	}

	c.Phone = "+44 20 7946 0000"
	if err := r.Clients.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = r.Clients.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Phone != "+44 20 7946 0000" {
		t.Errorf("Phone = %q after Update", got.Phone)
	}

	all, err := r.Clients.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d clients, want 2", len(all))
	}

	if err := r.Clients.Delete(ctx, seller.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Clients.Delete(ctx, seller.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func testBidHistoryOrder(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("History", "seller-1"))
	for i, amount := range []float64{100, 150, 175.5} {
		b := &store.Bid{AuctionID: a.ID, ClientID: "client-a", Amount: amount, PlacedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := r.Bids.Create(ctx, b); err != nil {
			t.Fatalf("Bids.Create: %v", err)
		}
	}
	if err := r.Bids.Create(ctx, &store.Bid{AuctionID: "other", ClientID: "client-a", Amount: 1, PlacedAt: base}); err != nil {
		t.Fatalf("Bids.Create: %v", err)
	}

	got, err := r.Bids.ListByAuction(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByAuction: %v", err)
	}
	want := []float64{100, 150, 175.5}
	if len(got) != len(want) {
		t.Fatalf("ListByAuction returned %d bids, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Amount != want[i] {
			t.Errorf("bid[%d].Amount = %v, want %v", i, got[i].Amount, want[i])
		}
	}
}

func testFavorites(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	fav := &store.Favorite{ClientID: "client-a", AuctionID: "auction-1"}
	if err := r.Favorites.Add(ctx, fav); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Favorites.Add(ctx, &store.Favorite{ClientID: "client-a", AuctionID: "auction-1"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate Add error = %v, want ErrDuplicate", err)
	}
	if err := r.Favorites.Add(ctx, &store.Favorite{ClientID: "client-a", AuctionID: "auction-2"}); err != nil {
		t.Fatalf("Add second: %v", err)
	}

	ok, err := r.Favorites.Exists(ctx, "client-a", "auction-1")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}

	list, err := r.Favorites.ListByClient(ctx, "client-a")
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("ListByClient returned %d, want 2", len(list))
	}

	if err := r.Favorites.Remove(ctx, "client-a", "auction-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := r.Favorites.Remove(ctx, "client-a", "auction-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
	if err := r.Favorites.Add(ctx, &store.Favorite{ClientID: "client-a", AuctionID: "auction-1"}); err != nil {
		t.Errorf("re-Add after Remove: %v", err)
	}
}

func testCommissionBids(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	amounts := []float64{1200, 900, 1500}
	for _, amount := range amounts {
		if err := r.CommissionBids.Create(ctx, &store.CommissionBid{ClientID: "client-a", LotID: "lot-1", BidAmount: amount}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := r.CommissionBids.Create(ctx, &store.CommissionBid{ClientID: "client-b", LotID: "lot-1", BidAmount: 1000}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := r.CommissionBids.ListByClient(ctx, "client-a")
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(mine) != len(amounts) {
		t.Fatalf("ListByClient returned %d, want %d", len(mine), len(amounts))
	}
	for i, amount := range amounts {
		if mine[i].BidAmount != amount {
			t.Errorf("bid[%d] = %v, want %v (insertion order)", i, mine[i].BidAmount, amount)
		}
	}

	byLot, err := r.CommissionBids.ListByLot(ctx, "lot-1")
	if err != nil {
		t.Fatalf("ListByLot: %v", err)
	}
	if len(byLot) != 4 || byLot[3].ClientID != "client-b" {
		t.Errorf("ListByLot = %v, want 4 bids ending with client-b", byLot)
	}
}

var errAbort = errors.New("abort")

func testTransactionRollback(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Rollback", "seller-1"))

	err := r.Transact(ctx, func(ctx context.Context, tx *store.Repositories) error {
		if err := tx.Bids.Create(ctx, &store.Bid{AuctionID: a.ID, ClientID: "client-a", Amount: 300, PlacedAt: base}); err != nil {
			return err
		}
		if err := tx.Auctions.RecordBid(ctx, a.ID, 300, "client-a", base); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("Transact error = %v, want errAbort", err)
	}

	bids, err := r.Bids.ListByAuction(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByAuction: %v", err)
	}
	if len(bids) != 0 {
		t.Errorf("expected no bids after rollback, got %d", len(bids))
	}
	got, err := r.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.HighestBid != nil {
		t.Errorf("HighestBid = %v after rollback, want nil", *got.HighestBid)
	}
}

func testTransactionCommit(t *testing.T, r *store.Repositories) {
	ctx := context.Background()
	a := mustCreateAuction(t, r, NewAuction("Commit", "seller-1"))
	mustCreateLot(t, r, NewLot(a.ID, "T-1", "seller-1"))

	err := r.Transact(ctx, func(ctx context.Context, tx *store.Repositories) error {
		if err := tx.Auctions.MarkSold(ctx, a.ID, "client-a", 4000, base); err != nil {
			return err
		}
		_, err := tx.Lots.MarkSoldByAuction(ctx, a.ID, "client-a", 4000, base)
		return err
	})
	if err != nil {
		t.Fatalf("Transact: %v", err)
	}

	lots, err := r.Lots.List(ctx, store.LotFilter{AuctionIDs: []string{a.ID}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lots) != 1 || !lots[0].Sold() {
		t.Errorf("lots after committed cascade = %+v", lots)
	}
}
