// Package mongostore provides a store.Driver backed by MongoDB.
//
// Uniqueness (auction title per creator, lot number, client user, favorite
// pair) is enforced by indexes created in Migrate. Transactions need a
// replica set or sharded cluster.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

const defaultDatabase = "fothebys"

const (
	collAuctions       = "auctions"
	collLots           = "lots"
	collClients        = "clients"
	collBids           = "bids"
	collFavorites      = "favorites"
	collCommissionBids = "commission_bids"
)

// closerFunc adapts a func() error into an io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func init() {
	store.Register(config.DriverMongo, Open)
}

// Open is the store.Driver for "mongo". cfg.DBName selects the database.
func Open(ctx context.Context, cfg config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
	client, err := Connect(ctx, cfg.URI)
	if err != nil {
		return nil, err
	}
	name := cfg.DBName
	if name == "" {
		name = defaultDatabase
	}
	return New(client, client.Database(name), clk), nil
}

// Connect opens and verifies a MongoDB connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	return client, nil
}

// New returns repositories backed by db. The client is disconnected on Close.
func New(client *mongo.Client, db *mongo.Database, clk clock.Clock) *store.Repositories {
	r := &store.Repositories{
		Auctions:       &AuctionRepo{c: db.Collection(collAuctions), clk: clk},
		Lots:           &LotRepo{c: db.Collection(collLots), clk: clk},
		Clients:        &ClientRepo{c: db.Collection(collClients), clk: clk},
		Bids:           &BidRepo{c: db.Collection(collBids)},
		Favorites:      &FavoriteRepo{c: db.Collection(collFavorites), clk: clk},
		CommissionBids: &CommissionBidRepo{c: db.Collection(collCommissionBids), clk: clk},
	}

	// Inside a session the same collections are reused; the session travels in ctx.
	txRepos := *r
	r.InTx = func(ctx context.Context, fn store.TxFunc) error {
		sess, err := client.StartSession()
		if err != nil {
			return fmt.Errorf("starting session: %w", err)
		}
		defer sess.EndSession(ctx)

		_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
			return nil, fn(sc, &txRepos)
		})
		return err
	}
	r.Migrate = func(ctx context.Context) error { return EnsureIndexes(ctx, db) }
	r.Closer = closerFunc(func() error { return client.Disconnect(context.Background()) })
	r.Ping = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	return r
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		collAuctions: {
			{Keys: bson.D{{Key: "title", Value: 1}, {Key: "creator_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		collLots: {
			{Keys: bson.D{{Key: "lot_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "auction_id", Value: 1}}},
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		},
		collClients: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		collBids: {
			{Keys: bson.D{{Key: "auction_id", Value: 1}, {Key: "_id", Value: 1}}},
		},
		collFavorites: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "auction_id", Value: 1}}, Options: unique},
		},
		collCommissionBids: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "lot_id", Value: 1}, {Key: "_id", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func newID() string { return uuid.Must(uuid.NewV7()).String() }

// wrapErr maps driver errors onto store sentinels and adds context.
func wrapErr(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", msg, store.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", msg, store.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// conditional distinguishes a missing document from a failed precondition
// after a guarded update matched nothing.
func conditional(ctx context.Context, c *mongo.Collection, res *mongo.UpdateResult, id, op string) error {
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, store.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, id, store.ErrConflict)
}

func containsFold(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

var byCreation = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

func find[T any](ctx context.Context, c *mongo.Collection, filter any, sort bson.D) ([]T, error) {
	cur, err := c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
