package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

const clientColumns = `id, user_id, full_name, email, phone, address, type, created_at, updated_at`

// ClientRepo implements store.ClientRepository with sqlx.
type ClientRepo struct {
	db  sqlx.ExtContext
	clk clock.Clock
}

// NewClientRepo returns a new ClientRepo.
func NewClientRepo(db sqlx.ExtContext, clk clock.Clock) *ClientRepo {
	return &ClientRepo{db: db, clk: clk}
}

func (r *ClientRepo) Create(ctx context.Context, c *store.Client) error {
	if c.ID == "" {
		c.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := r.clk.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, user_id, full_name, email, phone, address, type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.UserID, c.FullName, c.Email, c.Phone, c.Address, c.Type, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return wrapErr(err, "creating client for user %s", c.UserID)
	}
	return nil
}

func (r *ClientRepo) GetByID(ctx context.Context, id string) (*store.Client, error) {
	var c store.Client
	if err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id); err != nil {
		return nil, wrapErr(err, "getting client %s", id)
	}
	return &c, nil
}

func (r *ClientRepo) GetByUserID(ctx context.Context, userID string) (*store.Client, error) {
	var c store.Client
	if err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+clientColumns+` FROM clients WHERE user_id = $1`, userID); err != nil {
		return nil, wrapErr(err, "getting client for user %s", userID)
	}
	return &c, nil
}

func (r *ClientRepo) List(ctx context.Context) ([]store.Client, error) {
	var clients []store.Client
	if err := sqlx.SelectContext(ctx, r.db, &clients, `SELECT `+clientColumns+` FROM clients ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	return clients, nil
}

func (r *ClientRepo) Update(ctx context.Context, c *store.Client) error {
	c.UpdatedAt = r.clk.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET user_id = $1, full_name = $2, email = $3, phone = $4, address = $5, type = $6, updated_at = $7
		 WHERE id = $8`,
		c.UserID, c.FullName, c.Email, c.Phone, c.Address, c.Type, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return wrapErr(err, "updating client %s", c.ID)
	}
	return expectOne(res, fmt.Errorf("updating client %s: %w", c.ID, store.ErrNotFound))
}

func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting client %s: %w", id, err)
	}
	return expectOne(res, fmt.Errorf("deleting client %s: %w", id, store.ErrNotFound))
}
