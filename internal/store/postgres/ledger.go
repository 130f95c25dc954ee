package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// BidRepo implements store.BidRepository with sqlx.
type BidRepo struct {
	db sqlx.ExtContext
}

func (r *BidRepo) Create(ctx context.Context, b *store.Bid) error {
	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV7()).String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bids (id, auction_id, client_id, amount, placed_at) VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.AuctionID, b.ClientID, b.Amount, b.PlacedAt.UTC(),
	)
	if err != nil {
		return wrapErr(err, "inserting bid on auction %s", b.AuctionID)
	}
	return nil
}

func (r *BidRepo) ListByAuction(ctx context.Context, auctionID string) ([]store.Bid, error) {
	var bids []store.Bid
	err := sqlx.SelectContext(ctx, r.db, &bids,
		`SELECT id, auction_id, client_id, amount, placed_at FROM bids WHERE auction_id = $1 ORDER BY seq`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("listing bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// FavoriteRepo implements store.FavoriteRepository with sqlx.
type FavoriteRepo struct {
	db  sqlx.ExtContext
	clk clock.Clock
}

func (r *FavoriteRepo) Add(ctx context.Context, f *store.Favorite) error {
	f.CreatedAt = r.clk.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (client_id, auction_id, created_at) VALUES ($1, $2, $3)`,
		f.ClientID, f.AuctionID, f.CreatedAt,
	)
	if err != nil {
		return wrapErr(err, "adding favorite %s/%s", f.ClientID, f.AuctionID)
	}
	return nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, clientID, auctionID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE client_id = $1 AND auction_id = $2`, clientID, auctionID)
	if err != nil {
		return fmt.Errorf("removing favorite %s/%s: %w", clientID, auctionID, err)
	}
	return expectOne(res, fmt.Errorf("removing favorite %s/%s: %w", clientID, auctionID, store.ErrNotFound))
}

func (r *FavoriteRepo) Exists(ctx context.Context, clientID, auctionID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE client_id = $1 AND auction_id = $2)`, clientID, auctionID)
	if err != nil {
		return false, fmt.Errorf("checking favorite %s/%s: %w", clientID, auctionID, err)
	}
	return exists, nil
}

func (r *FavoriteRepo) ListByClient(ctx context.Context, clientID string) ([]store.Favorite, error) {
	var favs []store.Favorite
	err := sqlx.SelectContext(ctx, r.db, &favs,
		`SELECT client_id, auction_id, created_at FROM favorites WHERE client_id = $1 ORDER BY created_at, auction_id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites for client %s: %w", clientID, err)
	}
	return favs, nil
}

// CommissionBidRepo implements store.CommissionBidRepository with sqlx.
type CommissionBidRepo struct {
	db  sqlx.ExtContext
	clk clock.Clock
}

func (r *CommissionBidRepo) Create(ctx context.Context, b *store.CommissionBid) error {
	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV7()).String()
	}
	b.CreatedAt = r.clk.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO commission_bids (id, client_id, lot_id, bid_amount, created_at) VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.ClientID, b.LotID, b.BidAmount, b.CreatedAt,
	)
	if err != nil {
		return wrapErr(err, "inserting commission bid on lot %s", b.LotID)
	}
	return nil
}

func (r *CommissionBidRepo) ListByClient(ctx context.Context, clientID string) ([]store.CommissionBid, error) {
	return r.list(ctx, "client_id", clientID)
}

func (r *CommissionBidRepo) ListByLot(ctx context.Context, lotID string) ([]store.CommissionBid, error) {
	return r.list(ctx, "lot_id", lotID)
}

// list filters on column, which is always a literal from this file.
func (r *CommissionBidRepo) list(ctx context.Context, column, value string) ([]store.CommissionBid, error) {
	var bids []store.CommissionBid
	err := sqlx.SelectContext(ctx, r.db, &bids,
		`SELECT id, client_id, lot_id, bid_amount, created_at FROM commission_bids WHERE `+column+` = $1 ORDER BY seq`, value)
	if err != nil {
		return nil, fmt.Errorf("listing commission bids by %s: %w", column, err)
	}
	return bids, nil
}
