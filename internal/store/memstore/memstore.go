// Package memstore is an in-process catalog store for development and tests.
//
// Writes are serialised; a transaction holds the write lock for its whole
// duration and restores a snapshot when it fails. Reads are not isolated
// from an in-flight transaction.
package memstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

func init() {
	store.Register(config.DriverMemory, Open)
}

// Open is the store.Driver for the "memory" driver. The connection settings are ignored.
func Open(_ context.Context, _ config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
	return New(clk), nil
}

// New returns empty repositories stamped by clk.
func New(clk clock.Clock) *store.Repositories {
	s := &memStore{d: newData(), clk: clk}
	s.repos = &store.Repositories{
		Auctions:       &auctionRepo{s: s},
		Lots:           &lotRepo{s: s},
		Clients:        &clientRepo{s: s},
		Bids:           &bidRepo{s: s},
		Favorites:      &favoriteRepo{s: s},
		CommissionBids: &commissionRepo{s: s},
		InTx:           s.inTx,
		Ping:           func(context.Context) error { return nil },
	}
	return s.repos
}

type data struct {
	auctions   map[string]store.Auction
	lots       map[string]store.Lot
	clients    map[string]store.Client
	bids       []store.Bid
	favorites  []store.Favorite
	commission []store.CommissionBid
}

func newData() *data {
	return &data{
		auctions: make(map[string]store.Auction),
		lots:     make(map[string]store.Lot),
		clients:  make(map[string]store.Client),
	}
}

// clone copies the containers. Stored values are never mutated through their
// pointer fields, so sharing pointees is safe.
func (d *data) clone() *data {
	return &data{
		auctions:   maps.Clone(d.auctions),
		lots:       maps.Clone(d.lots),
		clients:    maps.Clone(d.clients),
		bids:       slices.Clone(d.bids),
		favorites:  slices.Clone(d.favorites),
		commission: slices.Clone(d.commission),
	}
}

type txKey struct{}

type memStore struct {
	txMu  sync.Mutex // held by a transaction or a single write
	mu    sync.RWMutex
	d     *data
	clk   clock.Clock
	repos *store.Repositories
}

func (s *memStore) inTx(ctx context.Context, fn store.TxFunc) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx, s.repos)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.d.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{}), s.repos); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) write(ctx context.Context, fn func(d *data) error) error {
	if ctx.Value(txKey{}) == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.d)
}

func (s *memStore) read(fn func(d *data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.d)
}

func (s *memStore) now() time.Time { return s.clk.Now().UTC() }

func newID() string { return uuid.Must(uuid.NewV7()).String() }

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func ptr[T any](v T) *T { return &v }

func byCreation[T any](created func(T) time.Time, id func(T) string) func(a, b T) int {
	return func(a, b T) int {
		if c := created(a).Compare(created(b)); c != 0 {
			return c
		}
		return strings.Compare(id(a), id(b))
	}
}
