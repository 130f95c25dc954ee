package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

const auctionColumns = `id, title, description, start_date, end_date, bidding_end_time, image, category,
	creator_id, highest_bid, winner_id, sale_price, buyer_id, sold_at, created_at, updated_at`

// AuctionRepo implements store.AuctionRepository with sqlx.
type AuctionRepo struct {
	db  sqlx.ExtContext
	clk clock.Clock
}

// NewAuctionRepo returns a new AuctionRepo.
func NewAuctionRepo(db sqlx.ExtContext, clk clock.Clock) *AuctionRepo {
	return &AuctionRepo{db: db, clk: clk}
}

func (r *AuctionRepo) Create(ctx context.Context, a *store.Auction) error {
	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := r.clk.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auctions (id, title, description, start_date, end_date, bidding_end_time, image,
		                       category, creator_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.Title, a.Description, a.StartDate, a.EndDate, a.BiddingEndTime, a.Image,
		a.Category, a.CreatorID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return wrapErr(err, "creating auction %q", a.Title)
	}
	return nil
}

func (r *AuctionRepo) GetByID(ctx context.Context, id string) (*store.Auction, error) {
	var a store.Auction
	err := sqlx.GetContext(ctx, r.db, &a, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id)
	if err != nil {
		return nil, wrapErr(err, "getting auction %s", id)
	}
	return &a, nil
}

func (r *AuctionRepo) List(ctx context.Context, f store.AuctionFilter) ([]store.Auction, error) {
	var w where
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.TitleContains != "" {
		w.add("title ILIKE ?", likeFold(f.TitleContains))
	}
	if f.CreatorID != "" {
		w.add("creator_id = ?", f.CreatorID)
	}
	if f.BuyerID != "" {
		w.add("buyer_id = ?", f.BuyerID)
	}
	if f.StartsFrom != nil {
		w.add("start_date >= ?", *f.StartsFrom)
	}
	if f.EndsBy != nil {
		w.add("end_date <= ?", *f.EndsBy)
	}

	var auctions []store.Auction
	query := rebind(`SELECT ` + auctionColumns + ` FROM auctions` + w.sql() + ` ORDER BY created_at, id`)
	if err := sqlx.SelectContext(ctx, r.db, &auctions, query, w.args...); err != nil {
		return nil, fmt.Errorf("listing auctions: %w", err)
	}
	return auctions, nil
}

func (r *AuctionRepo) ListByIDs(ctx context.Context, ids []string) ([]store.Auction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var auctions []store.Auction
	err := sqlx.SelectContext(ctx, r.db, &auctions,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = ANY($1) ORDER BY created_at, id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("listing auctions by id: %w", err)
	}
	return auctions, nil
}

func (r *AuctionRepo) Update(ctx context.Context, a *store.Auction) error {
	a.UpdatedAt = r.clk.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE auctions SET title = $1, description = $2, start_date = $3, end_date = $4,
		        image = $5, category = $6, updated_at = $7
		 WHERE id = $8`,
		a.Title, a.Description, a.StartDate, a.EndDate, a.Image, a.Category, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return wrapErr(err, "updating auction %s", a.ID)
	}
	return expectOne(res, fmt.Errorf("updating auction %s: %w", a.ID, store.ErrNotFound))
}

func (r *AuctionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting auction %s: %w", id, err)
	}
	return expectOne(res, fmt.Errorf("deleting auction %s: %w", id, store.ErrNotFound))
}

func (r *AuctionRepo) RecordBid(ctx context.Context, id string, amount float64, winnerID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE auctions SET highest_bid = $1, winner_id = $2, updated_at = $3
		 WHERE id = $4 AND sale_price IS NULL AND COALESCE(highest_bid, 0) < ROUND($1::numeric, 2)`,
		amount, winnerID, at, id,
	)
	if err != nil {
		return fmt.Errorf("recording bid on auction %s: %w", id, err)
	}
	return conditional(ctx, r.db, res, "auctions", id, "recording bid on auction")
}

func (r *AuctionRepo) MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE auctions SET sale_price = $1, buyer_id = $2, sold_at = $3, updated_at = $3
		 WHERE id = $4 AND sale_price IS NULL`,
		price, buyerID, at, id,
	)
	if err != nil {
		return fmt.Errorf("selling auction %s: %w", id, err)
	}
	return conditional(ctx, r.db, res, "auctions", id, "selling auction")
}
