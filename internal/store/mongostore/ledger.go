package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// Ledger ids are UUIDv7, so sorting on _id yields insertion order.
var byInsertion = bson.D{{Key: "_id", Value: 1}}

// BidRepo implements store.BidRepository.
type BidRepo struct {
	c *mongo.Collection
}

func (r *BidRepo) Create(ctx context.Context, b *store.Bid) error {
	if b.ID == "" {
		b.ID = newID()
	}
	if _, err := r.c.InsertOne(ctx, b); err != nil {
		return wrapErr(err, "creating bid on auction %s", b.AuctionID)
	}
	return nil
}

func (r *BidRepo) ListByAuction(ctx context.Context, auctionID string) ([]store.Bid, error) {
	out, err := find[store.Bid](ctx, r.c, bson.M{"auction_id": auctionID}, byInsertion)
	if err != nil {
		return nil, wrapErr(err, "listing bids of auction %s", auctionID)
	}
	return out, nil
}

// FavoriteRepo implements store.FavoriteRepository.
type FavoriteRepo struct {
	c   *mongo.Collection
	clk clock.Clock
}

func (r *FavoriteRepo) Add(ctx context.Context, f *store.Favorite) error {
	f.CreatedAt = r.clk.Now()
	if _, err := r.c.InsertOne(ctx, f); err != nil {
		return wrapErr(err, "adding favorite %s/%s", f.ClientID, f.AuctionID)
	}
	return nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, clientID, auctionID string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"client_id": clientID, "auction_id": auctionID})
	if err != nil {
		return wrapErr(err, "removing favorite %s/%s", clientID, auctionID)
	}
	if res.DeletedCount == 0 {
		return wrapErr(mongo.ErrNoDocuments, "removing favorite %s/%s", clientID, auctionID)
	}
	return nil
}

func (r *FavoriteRepo) Exists(ctx context.Context, clientID, auctionID string) (bool, error) {
	n, err := r.c.CountDocuments(ctx, bson.M{"client_id": clientID, "auction_id": auctionID})
	if err != nil {
		return false, wrapErr(err, "checking favorite %s/%s", clientID, auctionID)
	}
	return n > 0, nil
}

func (r *FavoriteRepo) ListByClient(ctx context.Context, clientID string) ([]store.Favorite, error) {
	out, err := find[store.Favorite](ctx, r.c, bson.M{"client_id": clientID}, byCreation)
	if err != nil {
		return nil, wrapErr(err, "listing favorites of client %s", clientID)
	}
	return out, nil
}

// CommissionBidRepo implements store.CommissionBidRepository.
type CommissionBidRepo struct {
	c   *mongo.Collection
	clk clock.Clock
}

func (r *CommissionBidRepo) Create(ctx context.Context, b *store.CommissionBid) error {
	if b.ID == "" {
		b.ID = newID()
	}
	b.CreatedAt = r.clk.Now()
	if _, err := r.c.InsertOne(ctx, b); err != nil {
		return wrapErr(err, "creating commission bid on lot %s", b.LotID)
	}
	return nil
}

func (r *CommissionBidRepo) ListByClient(ctx context.Context, clientID string) ([]store.CommissionBid, error) {
	out, err := find[store.CommissionBid](ctx, r.c, bson.M{"client_id": clientID}, byInsertion)
	if err != nil {
		return nil, wrapErr(err, "listing commission bids of client %s", clientID)
	}
	return out, nil
}

func (r *CommissionBidRepo) ListByLot(ctx context.Context, lotID string) ([]store.CommissionBid, error) {
	out, err := find[store.CommissionBid](ctx, r.c, bson.M{"lot_id": lotID}, byInsertion)
	if err != nil {
		return nil, wrapErr(err, "listing commission bids of lot %s", lotID)
	}
	return out, nil
}
