package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// AuctionRepo implements store.AuctionRepository on the auctions collection.
type AuctionRepo struct {
	c   *mongo.Collection
	clk clock.Clock
}

func (r *AuctionRepo) Create(ctx context.Context, a *store.Auction) error {
	if a.ID == "" {
		a.ID = newID()
	}
	now := r.clk.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := r.c.InsertOne(ctx, a); err != nil {
		return wrapErr(err, "creating auction %q", a.Title)
	}
	return nil
}

func (r *AuctionRepo) GetByID(ctx context.Context, id string) (*store.Auction, error) {
	var a store.Auction
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, wrapErr(err, "getting auction %s", id)
	}
	return &a, nil
}

func auctionQuery(f store.AuctionFilter) bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.TitleContains != "" {
		q["title"] = containsFold(f.TitleContains)
	}
	if f.CreatorID != "" {
		q["creator_id"] = f.CreatorID
	}
	if f.BuyerID != "" {
		q["buyer_id"] = f.BuyerID
	}
	if f.StartsFrom != nil {
		q["start_date"] = bson.M{"$gte": *f.StartsFrom}
	}
	if f.EndsBy != nil {
		q["end_date"] = bson.M{"$lte": *f.EndsBy}
	}
	return q
}

func (r *AuctionRepo) List(ctx context.Context, f store.AuctionFilter) ([]store.Auction, error) {
	out, err := find[store.Auction](ctx, r.c, auctionQuery(f), byCreation)
	if err != nil {
		return nil, wrapErr(err, "listing auctions")
	}
	return out, nil
}

func (r *AuctionRepo) ListByIDs(ctx context.Context, ids []string) ([]store.Auction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out, err := find[store.Auction](ctx, r.c, bson.M{"_id": bson.M{"$in": ids}}, byCreation)
	if err != nil {
		return nil, wrapErr(err, "listing auctions by id")
	}
	return out, nil
}

func (r *AuctionRepo) Update(ctx context.Context, a *store.Auction) error {
	a.UpdatedAt = r.clk.Now()
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{
		"title":       a.Title,
		"description": a.Description,
		"start_date":  a.StartDate,
		"end_date":    a.EndDate,
		"image":       a.Image,
		"category":    a.Category,
		"updated_at":  a.UpdatedAt,
	}})
	if err != nil {
		return wrapErr(err, "updating auction %s", a.ID)
	}
	if res.MatchedCount == 0 {
		return wrapErr(mongo.ErrNoDocuments, "updating auction %s", a.ID)
	}
	return nil
}

func (r *AuctionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err, "deleting auction %s", id)
	}
	if res.DeletedCount == 0 {
		return wrapErr(mongo.ErrNoDocuments, "deleting auction %s", id)
	}
	return nil
}

func (r *AuctionRepo) RecordBid(ctx context.Context, id string, amount float64, winnerID string, at time.Time) error {
	res, err := r.c.UpdateOne(ctx,
		bson.M{
			"_id":        id,
			"sale_price": nil,
			"$or": bson.A{
				bson.M{"highest_bid": nil},
				bson.M{"highest_bid": bson.M{"$lt": amount}},
			},
		},
		bson.M{"$set": bson.M{"highest_bid": amount, "winner_id": winnerID, "updated_at": at}},
	)
	if err != nil {
		return wrapErr(err, "recording bid on auction %s", id)
	}
	return conditional(ctx, r.c, res, id, "recording bid on auction")
}

func (r *AuctionRepo) MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": id, "sale_price": nil},
		bson.M{"$set": bson.M{"sale_price": price, "buyer_id": buyerID, "sold_at": at, "updated_at": at}},
	)
	if err != nil {
		return wrapErr(err, "selling auction %s", id)
	}
	return conditional(ctx, r.c, res, id, "selling auction")
}
