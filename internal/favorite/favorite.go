// Package favorite maintains each client's watch list of auctions.
package favorite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auction"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"
)

// Manager handles favorite operations.
type Manager struct {
	auctions  store.AuctionRepository
	lots      store.LotRepository
	favorites store.FavoriteRepository
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewManager returns a new favorite Manager.
func NewManager(repos *store.Repositories, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		auctions:  repos.Auctions,
		lots:      repos.Lots,
		favorites: repos.Favorites,
		logger:    logger,
		tracer:    tp.Tracer("github.com/Rijon63/fothebys-auction-system/internal/favorite"),
	}
}

func requireClient(id auth.Identity) error {
	if err := id.Require(auth.Favorite); err != nil {
		return err
	}
	if id.ClientID == "" {
		return fmt.Errorf("favorites require a client account: %w", apperr.ErrForbidden)
	}
	return nil
}

// Add puts the auction on the caller's watch list. Sold auctions cannot be added.
func (m *Manager) Add(ctx context.Context, id auth.Identity, auctionID string) (*store.Favorite, error) {
	ctx, span := m.tracer.Start(ctx, "Favorite.Add",
		trace.WithAttributes(
			attribute.String("auction_id", auctionID),
			attribute.String("client_id", id.ClientID),
		),
	)
	defer span.End()

	if err := requireClient(id); err != nil {
		return nil, err
	}
	a, err := m.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, store.Classify(err)
	}
	if a.Sold() {
		return nil, fmt.Errorf("favoriting auction %s: %w", auctionID, apperr.ErrAlreadySold)
	}

	f := &store.Favorite{ClientID: id.ClientID, AuctionID: auctionID}
	if err := m.favorites.Add(ctx, f); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Tag(err, apperr.ErrAlreadyFavorited)
		}
		return nil, fmt.Errorf("adding favorite: %w", err)
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "favorite added",
		slog.String("auction_id", auctionID),
		slog.String("client_id", id.ClientID),
	)
	return f, nil
}

// Remove takes the auction off the caller's watch list.
func (m *Manager) Remove(ctx context.Context, id auth.Identity, auctionID string) error {
	ctx, span := m.tracer.Start(ctx, "Favorite.Remove",
		trace.WithAttributes(
			attribute.String("auction_id", auctionID),
			attribute.String("client_id", id.ClientID),
		),
	)
	defer span.End()

	if err := requireClient(id); err != nil {
		return err
	}
	if err := m.favorites.Remove(ctx, id.ClientID, auctionID); err != nil {
		return store.Classify(err)
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "favorite removed",
		slog.String("auction_id", auctionID),
		slog.String("client_id", id.ClientID),
	)
	return nil
}

// Toggle flips membership and reports whether the auction is now a favorite.
func (m *Manager) Toggle(ctx context.Context, id auth.Identity, auctionID string) (bool, error) {
	if err := requireClient(id); err != nil {
		return false, err
	}
	ok, err := m.favorites.Exists(ctx, id.ClientID, auctionID)
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	if ok {
		return false, m.Remove(ctx, id, auctionID)
	}
	if _, err := m.Add(ctx, id, auctionID); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the client's favorited auctions with lots attached, in the
// order they were added. Favorites of deleted auctions are skipped.
func (m *Manager) List(ctx context.Context, id auth.Identity, clientID string) ([]store.Auction, error) {
	ctx, span := m.tracer.Start(ctx, "Favorite.List",
		trace.WithAttributes(attribute.String("client_id", clientID)),
	)
	defer span.End()

	if !id.ActsFor(clientID) {
		return nil, fmt.Errorf("listing favorites of %s: %w", clientID, apperr.ErrForbidden)
	}
	favs, err := m.favorites.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.AuctionID
	}
	found, err := m.auctions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading favorite auctions: %w", err)
	}

	byID := make(map[string]store.Auction, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	out := make([]store.Auction, 0, len(favs))
	for _, f := range favs {
		if a, ok := byID[f.AuctionID]; ok {
			out = append(out, a)
		}
	}
	return auction.WithLots(ctx, m.lots, out)
}
