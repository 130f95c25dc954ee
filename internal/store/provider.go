package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
)

// TxFunc runs work against repositories bound to one transaction.
type TxFunc func(ctx context.Context, tx *Repositories) error

// Repositories groups all repository implementations returned by a store driver.
type Repositories struct {
	Auctions       AuctionRepository
	Lots           LotRepository
	Clients        ClientRepository
	Bids           BidRepository
	Favorites      FavoriteRepository
	CommissionBids CommissionBidRepository

	// InTx runs fn in a transaction, committing if fn returns nil and rolling
	// back otherwise. Drivers without transactions leave it nil.
	InTx func(ctx context.Context, fn TxFunc) error
	// Migrate brings the schema (or indexes) up to date. Nil means nothing to do.
	Migrate func(ctx context.Context) error
	// Closer is called to release underlying resources (e.g. DB connection).
	Closer io.Closer
	// Ping checks the underlying connection health.
	Ping func(ctx context.Context) error
}

// Transact runs fn through InTx, or directly against r when the driver has no transactions.
func (r *Repositories) Transact(ctx context.Context, fn TxFunc) error {
	if r.InTx == nil {
		return fn(ctx, r)
	}
	return r.InTx(ctx, fn)
}

// RunMigrations calls Migrate when the driver provides one.
func (r *Repositories) RunMigrations(ctx context.Context) error {
	if r.Migrate == nil {
		return nil
	}
	return r.Migrate(ctx)
}

// Close releases the driver's resources, if any.
func (r *Repositories) Close() error {
	if r.Closer == nil {
		return nil
	}
	return r.Closer.Close()
}

// Driver is a function that opens a connection and returns Repositories.
type Driver func(ctx context.Context, cfg config.DatabaseConfig, clk clock.Clock) (*Repositories, error)

var (
	registryMu sync.RWMutex
	// registry maps driver names to their factory functions.
	registry = map[string]Driver{}
)

// Register adds a named driver to the global registry.
// It is intended to be called from init() in each driver package.
func Register(name string, d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = d
}

// Open selects the driver specified in cfg.Driver and returns Repositories.
func Open(ctx context.Context, cfg config.DatabaseConfig, clk clock.Clock) (*Repositories, error) {
	registryMu.RLock()
	d, ok := registry[cfg.Driver]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown store driver %q (registered: %v)", cfg.Driver, registeredNames())
	}
	return d(ctx, cfg, clk)
}

func registeredNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
