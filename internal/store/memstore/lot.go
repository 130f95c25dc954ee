package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Rijon63/fothebys-auction-system/internal/money"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

type lotRepo struct {
	s *memStore
}

var lotOrder = byCreation(
	func(l store.Lot) time.Time { return l.CreatedAt },
	func(l store.Lot) string { return l.ID },
)

func duplicateLotNumber(d *data, l *store.Lot) bool {
	for id, other := range d.lots {
		if id != l.ID && other.LotNumber == l.LotNumber {
			return true
		}
	}
	return false
}

func (r *lotRepo) Create(ctx context.Context, l *store.Lot) error {
	return r.s.write(ctx, func(d *data) error {
		if l.ID == "" {
			l.ID = newID()
		}
		if _, ok := d.lots[l.ID]; ok || duplicateLotNumber(d, l) {
			return fmt.Errorf("creating lot %q: %w", l.LotNumber, store.ErrDuplicate)
		}
		now := r.s.now()
		l.CreatedAt, l.UpdatedAt = now, now
		d.lots[l.ID] = *l
		return nil
	})
}

func (r *lotRepo) GetByID(_ context.Context, id string) (*store.Lot, error) {
	var (
		l  store.Lot
		ok bool
	)
	r.s.read(func(d *data) { l, ok = d.lots[id] })
	if !ok {
		return nil, fmt.Errorf("getting lot %s: %w", id, store.ErrNotFound)
	}
	return &l, nil
}

func matchLot(l store.Lot, f store.LotFilter) bool {
	switch {
	case len(f.AuctionIDs) > 0 && !slices.Contains(f.AuctionIDs, l.AuctionID):
		return false
	case f.SellerID != "" && l.SellerID != f.SellerID:
		return false
	case f.BuyerID != "" && (l.BuyerID == nil || *l.BuyerID != f.BuyerID):
		return false
	case f.UnsoldOnly && l.Sold():
		return false
	case f.Category != "" && l.Category != f.Category:
		return false
	case f.SubjectContains != "" && !containsFold(l.SubjectClassification, f.SubjectContains):
		return false
	case f.Keyword != "" && !containsFold(l.Title, f.Keyword) && !containsFold(l.Artist, f.Keyword) &&
		!containsFold(string(l.Category), f.Keyword) && !containsFold(l.SubjectClassification, f.Keyword):
		return false
	case f.MinEstimate != nil && money.Compare(l.EstimatedPrice, *f.MinEstimate) < 0:
		return false
	case f.MaxEstimate != nil && money.Compare(l.EstimatedPrice, *f.MaxEstimate) > 0:
		return false
	case f.AuctionDateFrom != nil && (l.AuctionDate == nil || l.AuctionDate.Before(*f.AuctionDateFrom)):
		return false
	case f.AuctionDateTo != nil && (l.AuctionDate == nil || l.AuctionDate.After(*f.AuctionDateTo)):
		return false
	}
	return true
}

func (r *lotRepo) List(_ context.Context, f store.LotFilter) ([]store.Lot, error) {
	var out []store.Lot
	r.s.read(func(d *data) {
		for _, l := range d.lots {
			if matchLot(l, f) {
				out = append(out, l)
			}
		}
	})
	slices.SortFunc(out, lotOrder)
	return out, nil
}

func (r *lotRepo) Update(ctx context.Context, l *store.Lot) error {
	return r.s.write(ctx, func(d *data) error {
		cur, ok := d.lots[l.ID]
		if !ok {
			return fmt.Errorf("updating lot %s: %w", l.ID, store.ErrNotFound)
		}
		if duplicateLotNumber(d, l) {
			return fmt.Errorf("updating lot %s: %w", l.ID, store.ErrDuplicate)
		}
		next := *l
		next.SalePrice, next.BuyerID, next.SoldAt = cur.SalePrice, cur.BuyerID, cur.SoldAt
		next.CreatedAt = cur.CreatedAt
		next.UpdatedAt = r.s.now()
		d.lots[l.ID] = next
		*l = next
		return nil
	})
}

func (r *lotRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.lots[id]; !ok {
			return fmt.Errorf("deleting lot %s: %w", id, store.ErrNotFound)
		}
		delete(d.lots, id)
		return nil
	})
}

func (r *lotRepo) MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error {
	return r.s.write(ctx, func(d *data) error {
		l, ok := d.lots[id]
		if !ok {
			return fmt.Errorf("selling lot %s: %w", id, store.ErrNotFound)
		}
		if l.Sold() {
			return fmt.Errorf("selling lot %s: %w", id, store.ErrConflict)
		}
		l.SalePrice, l.BuyerID, l.SoldAt, l.UpdatedAt = ptr(price), ptr(buyerID), ptr(at), at
		d.lots[id] = l
		return nil
	})
}

func (r *lotRepo) MarkSoldByAuction(ctx context.Context, auctionID, buyerID string, price float64, at time.Time) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(d *data) error {
		for id, l := range d.lots {
			if l.AuctionID != auctionID {
				continue
			}
			l.SalePrice, l.BuyerID, l.SoldAt, l.UpdatedAt = ptr(price), ptr(buyerID), ptr(at), at
			d.lots[id] = l
			n++
		}
		return nil
	})
	return n, err
}
