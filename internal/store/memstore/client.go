package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

type clientRepo struct {
	s *memStore
}

func userTaken(d *data, c *store.Client) bool {
	for id, other := range d.clients {
		if id != c.ID && other.UserID == c.UserID {
			return true
		}
	}
	return false
}

func (r *clientRepo) Create(ctx context.Context, c *store.Client) error {
	return r.s.write(ctx, func(d *data) error {
		if c.ID == "" {
			c.ID = newID()
		}
		if _, ok := d.clients[c.ID]; ok || userTaken(d, c) {
			return fmt.Errorf("creating client for user %s: %w", c.UserID, store.ErrDuplicate)
		}
		now := r.s.now()
		c.CreatedAt, c.UpdatedAt = now, now
		d.clients[c.ID] = *c
		return nil
	})
}

func (r *clientRepo) GetByID(_ context.Context, id string) (*store.Client, error) {
	var (
		c  store.Client
		ok bool
	)
	r.s.read(func(d *data) { c, ok = d.clients[id] })
	if !ok {
		return nil, fmt.Errorf("getting client %s: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func (r *clientRepo) GetByUserID(_ context.Context, userID string) (*store.Client, error) {
	var found *store.Client
	r.s.read(func(d *data) {
		for _, c := range d.clients {
			if c.UserID == userID {
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("getting client for user %s: %w", userID, store.ErrNotFound)
	}
	return found, nil
}

func (r *clientRepo) List(_ context.Context) ([]store.Client, error) {
	var out []store.Client
	r.s.read(func(d *data) {
		for _, c := range d.clients {
			out = append(out, c)
		}
	})
	slices.SortFunc(out, byCreation(
		func(c store.Client) time.Time { return c.CreatedAt },
		func(c store.Client) string { return c.ID },
	))
	return out, nil
}

func (r *clientRepo) Update(ctx context.Context, c *store.Client) error {
	return r.s.write(ctx, func(d *data) error {
		cur, ok := d.clients[c.ID]
		if !ok {
			return fmt.Errorf("updating client %s: %w", c.ID, store.ErrNotFound)
		}
		if userTaken(d, c) {
			return fmt.Errorf("updating client %s: %w", c.ID, store.ErrDuplicate)
		}
		next := *c
		next.CreatedAt = cur.CreatedAt
		next.UpdatedAt = r.s.now()
		d.clients[c.ID] = next
		*c = next
		return nil
	})
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *data) error {
		if _, ok := d.clients[id]; !ok {
			return fmt.Errorf("deleting client %s: %w", id, store.ErrNotFound)
		}
		delete(d.clients, id)
		return nil
	})
}
