package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Rijon63/fothebys-auction-system/internal/money"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

type auctionRepo struct {
	s *memStore
}

var auctionOrder = byCreation(
	func(a store.Auction) time.Time { return a.CreatedAt },
	func(a store.Auction) string { return a.ID },
)

func duplicateTitle(d *data, a *store.Auction) bool {
	for id, other := range d.auctions {
		if id != a.ID && other.Title == a.Title && other.CreatorID == a.CreatorID {
			return true
		}
	}
	return false
}

func (r *auctionRepo) Create(ctx context.Context, a *store.Auction) error {
	return r.s.write(ctx, func(d *data) error {
		if a.ID == "" {
			a.ID = newID()
		}
		if _, ok := d.auctions[a.ID]; ok || duplicateTitle(d, a) {
			return fmt.Errorf("creating auction %q: %w", a.Title, store.ErrDuplicate)
		}
		now := r.s.now()
		a.CreatedAt, a.UpdatedAt = now, now
		stored := *a
		stored.Lots = nil
		d.auctions[a.ID] = stored
		return nil
	})
}

func (r *auctionRepo) GetByID(_ context.Context, id string) (*store.Auction, error) {
	var (
		a  store.Auction
		ok bool
	)
	r.s.read(func(d *data) { a, ok = d.auctions[id] })
	if !ok {
		return nil, fmt.Errorf("getting auction %s: %w", id, store.ErrNotFound)
	}
	return &a, nil
}

func matchAuction(a store.Auction, f store.AuctionFilter) bool {
	switch {
	case f.Category != "" && a.Category != f.Category:
		return false
	case f.TitleContains != "" && !containsFold(a.Title, f.TitleContains):
		return false
	case f.CreatorID != "" && a.CreatorID != f.CreatorID:
		return false
	case f.BuyerID != "" && (a.BuyerID == nil || *a.BuyerID != f.BuyerID):
		return false
	case f.StartsFrom != nil && a.StartDate.Before(*f.StartsFrom):
		return false
	case f.EndsBy != nil && a.EndDate.After(*f.EndsBy):
		return false
	}
	return true
}

func (r *auctionRepo) List(_ context.Context, f store.AuctionFilter) ([]store.Auction, error) {
	var out []store.Auction
	r.s.read(func(d *data) {
		for _, a := range d.auctions {
			if matchAuction(a, f) {
				out = append(out, a)
			}
		}
	})
	slices.SortFunc(out, auctionOrder)
	return out, nil
}

func (r *auctionRepo) ListByIDs(_ context.Context, ids []string) ([]store.Auction, error) {
	var out []store.Auction
	r.s.read(func(d *data) {
		for _, id := range ids {
			if a, ok := d.auctions[id]; ok && !slices.ContainsFunc(out, func(x store.Auction) bool { return x.ID == id }) {
				out = append(out, a)
			}
		}
	})
	slices.SortFunc(out, auctionOrder)
	return out, nil
}

func (r *auctionRepo) Update(ctx context.Context, a *store.Auction) error {
	return r.s.write(ctx, func(d *data) error {
		cur, ok := d.auctions[a.ID]
		if !ok {
			return fmt.Errorf("updating auction %s: %w", a.ID, store.ErrNotFound)
		}
		if duplicateTitle(d, a) {
			return fmt.Errorf("updating auction %s: %w", a.ID, store.ErrDuplicate)
		}
		cur.Title = a.Title
		cur.Description = a.Description
		cur.StartDate = a.StartDate
		cur.EndDate = a.EndDate
		cur.Image = a.Image
		cur.Category = a.Category
		cur.UpdatedAt = r.s.now()
		d.auctions[a.ID] = cur
		a.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *auctionRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.auctions[id]; !ok {
			return fmt.Errorf("deleting auction %s: %w", id, store.ErrNotFound)
		}
		delete(d.auctions, id)
		return nil
	})
}

func (r *auctionRepo) RecordBid(ctx context.Context, id string, amount float64, winnerID string, at time.Time) error {
	return r.s.write(ctx, func(d *data) error {
		a, ok := d.auctions[id]
		if !ok {
			return fmt.Errorf("recording bid on auction %s: %w", id, store.ErrNotFound)
		}
		if a.Sold() || !money.Exceeds(amount, a.HighestBid) {
			return fmt.Errorf("recording bid on auction %s: %w", id, store.ErrConflict)
		}
		a.HighestBid = ptr(amount)
		a.WinnerID = ptr(winnerID)
		a.UpdatedAt = at
		d.auctions[id] = a
		return nil
	})
}

func (r *auctionRepo) MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error {
	return r.s.write(ctx, func(d *data) error {
		a, ok := d.auctions[id]
		if !ok {
			return fmt.Errorf("selling auction %s: %w", id, store.ErrNotFound)
		}
		if a.Sold() {
			return fmt.Errorf("selling auction %s: %w", id, store.ErrConflict)
		}
		a.SalePrice = ptr(price)
		a.BuyerID = ptr(buyerID)
		a.SoldAt = ptr(at)
		a.UpdatedAt = at
		d.auctions[id] = a
		return nil
	})
}
