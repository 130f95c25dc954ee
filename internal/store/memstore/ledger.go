package memstore

import (
	"context"
	"fmt"

	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

type bidRepo struct {
	s *memStore
}

func (r *bidRepo) Create(ctx context.Context, b *store.Bid) error {
	return r.s.write(ctx, func(d *data) error {
		if b.ID == "" {
			b.ID = newID()
		}
		if b.PlacedAt.IsZero() {
			b.PlacedAt = r.s.now()
		}
		d.bids = append(d.bids, *b)
		return nil
	})
}

func (r *bidRepo) ListByAuction(_ context.Context, auctionID string) ([]store.Bid, error) {
	var out []store.Bid
	r.s.read(func(d *data) {
		for _, b := range d.bids {
			if b.AuctionID == auctionID {
				out = append(out, b)
			}
		}
	})
	return out, nil
}

type favoriteRepo struct {
	s *memStore
}

func (r *favoriteRepo) Add(ctx context.Context, f *store.Favorite) error {
	return r.s.write(ctx, func(d *data) error {
		for _, x := range d.favorites {
			if x.ClientID == f.ClientID && x.AuctionID == f.AuctionID {
				return fmt.Errorf("adding favorite %s/%s: %w", f.ClientID, f.AuctionID, store.ErrDuplicate)
			}
		}
		f.CreatedAt = r.s.now()
		d.favorites = append(d.favorites, *f)
		return nil
	})
}

func (r *favoriteRepo) Remove(ctx context.Context, clientID, auctionID string) error {
	return r.s.write(ctx, func(d *data) error {
		for i, x := range d.favorites {
			if x.ClientID == clientID && x.AuctionID == auctionID {
				d.favorites = append(d.favorites[:i:i], d.favorites[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("removing favorite %s/%s: %w", clientID, auctionID, store.ErrNotFound)
	})
}

func (r *favoriteRepo) Exists(_ context.Context, clientID, auctionID string) (bool, error) {
	var found bool
	r.s.read(func(d *data) {
		for _, x := range d.favorites {
			if x.ClientID == clientID && x.AuctionID == auctionID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *favoriteRepo) ListByClient(_ context.Context, clientID string) ([]store.Favorite, error) {
	var out []store.Favorite
	r.s.read(func(d *data) {
		for _, x := range d.favorites {
			if x.ClientID == clientID {
				out = append(out, x)
			}
		}
	})
	return out, nil
}

type commissionRepo struct {
	s *memStore
}

func (r *commissionRepo) Create(ctx context.Context, b *store.CommissionBid) error {
	return r.s.write(ctx, func(d *data) error {
		if b.ID == "" {
			b.ID = newID()
		}
		b.CreatedAt = r.s.now()
		d.commission = append(d.commission, *b)
		return nil
	})
}

func (r *commissionRepo) ListByClient(_ context.Context, clientID string) ([]store.CommissionBid, error) {
	return r.filter(func(b store.CommissionBid) bool { return b.ClientID == clientID }), nil
}

func (r *commissionRepo) ListByLot(_ context.Context, lotID string) ([]store.CommissionBid, error) {
	return r.filter(func(b store.CommissionBid) bool { return b.LotID == lotID }), nil
}

func (r *commissionRepo) filter(keep func(store.CommissionBid) bool) []store.CommissionBid {
	var out []store.CommissionBid
	r.s.read(func(d *data) {
		for _, b := range d.commission {
			if keep(b) {
				out = append(out, b)
			}
		}
	})
	return out
}
