package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// ClientRepo implements store.ClientRepository on the clients collection.
type ClientRepo struct {
	c   *mongo.Collection
	clk clock.Clock
}

func (r *ClientRepo) Create(ctx context.Context, c *store.Client) error {
	if c.ID == "" {
		c.ID = newID()
	}
	now := r.clk.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	if _, err := r.c.InsertOne(ctx, c); err != nil {
		return wrapErr(err, "creating client for user %s", c.UserID)
	}
	return nil
}

func (r *ClientRepo) GetByID(ctx context.Context, id string) (*store.Client, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "getting client %s", id)
}

func (r *ClientRepo) GetByUserID(ctx context.Context, userID string) (*store.Client, error) {
	return r.findOne(ctx, bson.M{"user_id": userID}, "getting client for user %s", userID)
}

func (r *ClientRepo) findOne(ctx context.Context, filter bson.M, format, arg string) (*store.Client, error) {
	var c store.Client
	if err := r.c.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, wrapErr(err, format, arg)
	}
	return &c, nil
}

func (r *ClientRepo) List(ctx context.Context) ([]store.Client, error) {
	out, err := find[store.Client](ctx, r.c, bson.M{}, byCreation)
	if err != nil {
		return nil, wrapErr(err, "listing clients")
	}
	return out, nil
}

func (r *ClientRepo) Update(ctx context.Context, c *store.Client) error {
	c.UpdatedAt = r.clk.Now()
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"user_id":    c.UserID,
		"full_name":  c.FullName,
		"email":      c.Email,
		"phone":      c.Phone,
		"address":    c.Address,
		"type":       c.Type,
		"updated_at": c.UpdatedAt,
	}})
	if err != nil {
		return wrapErr(err, "updating client %s", c.ID)
	}
	if res.MatchedCount == 0 {
		return wrapErr(mongo.ErrNoDocuments, "updating client %s", c.ID)
	}
	return nil
}

func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err, "deleting client %s", id)
	}
	if res.DeletedCount == 0 {
		return wrapErr(mongo.ErrNoDocuments, "deleting client %s", id)
	}
	return nil
}
