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

// Dimensions are flattened into dim_* columns and aliased back onto the nested struct.
const lotColumns = `id, auction_id, lot_number, title, artist, year_produced, subject_classification, description,
	auction_date, starting_price, estimated_price, category, sale_price, buyer_id, sold_at, seller_id,
	dim_height AS "dimensions.height", dim_length AS "dimensions.length", dim_width AS "dimensions.width",
	weight, framed, medium_or_material, image, created_at, updated_at`

// LotRepo implements store.LotRepository with sqlx.
type LotRepo struct {
	db  sqlx.ExtContext
	clk clock.Clock
}

// NewLotRepo returns a new LotRepo.
func NewLotRepo(db sqlx.ExtContext, clk clock.Clock) *LotRepo {
	return &LotRepo{db: db, clk: clk}
}

func (r *LotRepo) Create(ctx context.Context, l *store.Lot) error {
	if l.ID == "" {
		l.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := r.clk.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lots (id, auction_id, lot_number, title, artist, year_produced, subject_classification,
		                   description, auction_date, starting_price, estimated_price, category, seller_id,
		                   dim_height, dim_length, dim_width, weight, framed, medium_or_material, image,
		                   created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		l.ID, l.AuctionID, l.LotNumber, l.Title, l.Artist, l.YearProduced, l.SubjectClassification,
		l.Description, l.AuctionDate, l.StartingPrice, l.EstimatedPrice, l.Category, l.SellerID,
		l.Dimensions.Height, l.Dimensions.Length, l.Dimensions.Width, l.Weight, l.Framed, l.MediumOrMaterial, l.Image,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return wrapErr(err, "creating lot %q", l.LotNumber)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*store.Lot, error) {
	var l store.Lot
	if err := sqlx.GetContext(ctx, r.db, &l, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id); err != nil {
		return nil, wrapErr(err, "getting lot %s", id)
	}
	return &l, nil
}

func (r *LotRepo) List(ctx context.Context, f store.LotFilter) ([]store.Lot, error) {
	var w where
	if len(f.AuctionIDs) > 0 {
		w.add("auction_id = ANY(?)", pq.Array(f.AuctionIDs))
	}
	if f.SellerID != "" {
		w.add("seller_id = ?", f.SellerID)
	}
	if f.BuyerID != "" {
		w.add("buyer_id = ?", f.BuyerID)
	}
	if f.UnsoldOnly {
		w.add("sale_price IS NULL")
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.SubjectContains != "" {
		w.add("subject_classification ILIKE ?", likeFold(f.SubjectContains))
	}
	if f.Keyword != "" {
		kw := likeFold(f.Keyword)
		w.add("(title ILIKE ? OR artist ILIKE ? OR category ILIKE ? OR subject_classification ILIKE ?)", kw, kw, kw, kw)
	}
	if f.MinEstimate != nil {
		w.add("estimated_price >= ROUND(?::numeric, 2)", *f.MinEstimate)
	}
	if f.MaxEstimate != nil {
		w.add("estimated_price <= ROUND(?::numeric, 2)", *f.MaxEstimate)
	}
	if f.AuctionDateFrom != nil {
		w.add("auction_date >= ?", *f.AuctionDateFrom)
	}
	if f.AuctionDateTo != nil {
		w.add("auction_date <= ?", *f.AuctionDateTo)
	}

	var lots []store.Lot
	query := rebind(`SELECT ` + lotColumns + ` FROM lots` + w.sql() + ` ORDER BY created_at, id`)
	if err := sqlx.SelectContext(ctx, r.db, &lots, query, w.args...); err != nil {
		return nil, fmt.Errorf("listing lots: %w", err)
	}
	return lots, nil
}

func (r *LotRepo) Update(ctx context.Context, l *store.Lot) error {
	l.UpdatedAt = r.clk.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE lots SET auction_id = $1, lot_number = $2, title = $3, artist = $4, year_produced = $5,
		        subject_classification = $6, description = $7, auction_date = $8, starting_price = $9,
		        estimated_price = $10, category = $11, seller_id = $12, dim_height = $13, dim_length = $14,
		        dim_width = $15, weight = $16, framed = $17, medium_or_material = $18, image = $19, updated_at = $20
		 WHERE id = $21`,
		l.AuctionID, l.LotNumber, l.Title, l.Artist, l.YearProduced,
		l.SubjectClassification, l.Description, l.AuctionDate, l.StartingPrice,
		l.EstimatedPrice, l.Category, l.SellerID, l.Dimensions.Height, l.Dimensions.Length,
		l.Dimensions.Width, l.Weight, l.Framed, l.MediumOrMaterial, l.Image, l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		return wrapErr(err, "updating lot %s", l.ID)
	}
	return expectOne(res, fmt.Errorf("updating lot %s: %w", l.ID, store.ErrNotFound))
}

func (r *LotRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting lot %s: %w", id, err)
	}
	return expectOne(res, fmt.Errorf("deleting lot %s: %w", id, store.ErrNotFound))
}

func (r *LotRepo) MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lots SET sale_price = $1, buyer_id = $2, sold_at = $3, updated_at = $3
		 WHERE id = $4 AND sale_price IS NULL`,
		price, buyerID, at, id,
	)
	if err != nil {
		return fmt.Errorf("selling lot %s: %w", id, err)
	}
	return conditional(ctx, r.db, res, "lots", id, "selling lot")
}

func (r *LotRepo) MarkSoldByAuction(ctx context.Context, auctionID, buyerID string, price float64, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lots SET sale_price = $1, buyer_id = $2, sold_at = $3, updated_at = $3 WHERE auction_id = $4`,
		price, buyerID, at, auctionID,
	)
	if err != nil {
		return 0, fmt.Errorf("selling lots of auction %s: %w", auctionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}
