package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// LotRepo implements store.LotRepository on the lots collection.
type LotRepo struct {
	c   *mongo.Collection
	clk clock.Clock
}

func (r *LotRepo) Create(ctx context.Context, l *store.Lot) error {
	if l.ID == "" {
		l.ID = newID()
	}
	now := r.clk.Now()
	l.CreatedAt, l.UpdatedAt = now, now
	if _, err := r.c.InsertOne(ctx, l); err != nil {
		return wrapErr(err, "creating lot %q", l.LotNumber)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*store.Lot, error) {
	var l store.Lot
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return nil, wrapErr(err, "getting lot %s", id)
	}
	return &l, nil
}

func between[T any](from, to *T) bson.M {
	m := bson.M{}
	if from != nil {
		m["$gte"] = *from
	}
	if to != nil {
		m["$lte"] = *to
	}
	return m
}

func lotQuery(f store.LotFilter) bson.M {
	q := bson.M{}
	if len(f.AuctionIDs) > 0 {
		q["auction_id"] = bson.M{"$in": f.AuctionIDs}
	}
	if f.SellerID != "" {
		q["seller_id"] = f.SellerID
	}
	if f.BuyerID != "" {
		q["buyer_id"] = f.BuyerID
	}
	if f.UnsoldOnly {
		q["sale_price"] = nil
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.SubjectContains != "" {
		q["subject_classification"] = containsFold(f.SubjectContains)
	}
	if f.Keyword != "" {
		kw := containsFold(f.Keyword)
		q["$or"] = bson.A{
			bson.M{"title": kw},
			bson.M{"artist": kw},
			bson.M{"category": kw},
			bson.M{"subject_classification": kw},
		}
	}
	if f.MinEstimate != nil || f.MaxEstimate != nil {
		q["estimated_price"] = between(f.MinEstimate, f.MaxEstimate)
	}
	if f.AuctionDateFrom != nil || f.AuctionDateTo != nil {
		q["auction_date"] = between(f.AuctionDateFrom, f.AuctionDateTo)
	}
	return q
}

func (r *LotRepo) List(ctx context.Context, f store.LotFilter) ([]store.Lot, error) {
	out, err := find[store.Lot](ctx, r.c, lotQuery(f), byCreation)
	if err != nil {
		return nil, wrapErr(err, "listing lots")
	}
	return out, nil
}

func (r *LotRepo) Update(ctx context.Context, l *store.Lot) error {
	l.UpdatedAt = r.clk.Now()
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": l.ID}, bson.M{"$set": bson.M{
		"auction_id":             l.AuctionID,
		"lot_number":             l.LotNumber,
		"title":                  l.Title,
		"artist":                 l.Artist,
		"year_produced":          l.YearProduced,
		"subject_classification": l.SubjectClassification,
		"description":            l.Description,
		"auction_date":           l.AuctionDate,
		"starting_price":         l.StartingPrice,
		"estimated_price":        l.EstimatedPrice,
		"category":               l.Category,
		"seller_id":              l.SellerID,
		"dimensions":             l.Dimensions,
		"weight":                 l.Weight,
		"framed":                 l.Framed,
		"medium_or_material":     l.MediumOrMaterial,
		"image":                  l.Image,
		"updated_at":             l.UpdatedAt,
	}})
	if err != nil {
		return wrapErr(err, "updating lot %s", l.ID)
	}
	if res.MatchedCount == 0 {
		return wrapErr(mongo.ErrNoDocuments, "updating lot %s", l.ID)
	}
	return nil
}

func (r *LotRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err, "deleting lot %s", id)
	}
	if res.DeletedCount == 0 {
		return wrapErr(mongo.ErrNoDocuments, "deleting lot %s", id)
	}
	return nil
}

func saleSet(buyerID string, price float64, at time.Time) bson.M {
	return bson.M{"$set": bson.M{"sale_price": price, "buyer_id": buyerID, "sold_at": at, "updated_at": at}}
}

func (r *LotRepo) MarkSold(ctx context.Context, id, buyerID string, price float64, at time.Time) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id, "sale_price": nil}, saleSet(buyerID, price, at))
	if err != nil {
		return wrapErr(err, "selling lot %s", id)
	}
	return conditional(ctx, r.c, res, id, "selling lot")
}

func (r *LotRepo) MarkSoldByAuction(ctx context.Context, auctionID, buyerID string, price float64, at time.Time) (int64, error) {
	res, err := r.c.UpdateMany(ctx, bson.M{"auction_id": auctionID}, saleSet(buyerID, price, at))
	if err != nil {
		return 0, wrapErr(err, "selling lots of auction %s", auctionID)
	}
	return res.MatchedCount, nil
}
