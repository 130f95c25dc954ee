package auction

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"
)

// Manager coordinates the auction catalogue.
type Manager struct {
	auctions store.AuctionRepository
	lots     store.LotRepository
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewManager creates a new auction Manager.
func NewManager(repos *store.Repositories, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		auctions: repos.Auctions,
		lots:     repos.Lots,
		logger:   logger,
		tracer:   tp.Tracer("github.com/Rijon63/fothebys-auction-system/internal/auction"),
	}
}

// Create stores a new auction owned by in.CreatorID, or by the caller when empty.
func (m *Manager) Create(ctx context.Context, id auth.Identity, in CreateInput) (*store.Auction, error) {
	ctx, span := m.tracer.Start(ctx, "Auction.Create",
		trace.WithAttributes(
			attribute.String("title", in.Title),
			attribute.String("user_id", id.UserID),
		),
	)
	defer span.End()

	if err := id.Require(auth.ManageAuctions); err != nil {
		return nil, err
	}
	if in.CreatorID == "" {
		in.CreatorID = id.UserID
	}
	if in.CreatorID != id.UserID && !id.IsAdmin() {
		return nil, fmt.Errorf("creating auction for %s: %w", in.CreatorID, apperr.ErrForbidden)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	a := &store.Auction{
		Title:          in.Title,
		Description:    in.Description,
		StartDate:      in.StartDate.UTC(),
		EndDate:        in.EndDate.UTC(),
		BiddingEndTime: in.BiddingEndTime.UTC(),
		Image:          in.Image,
		Category:       in.Category,
		CreatorID:      in.CreatorID,
	}
	if err := m.auctions.Create(ctx, a); err != nil {
		return nil, store.Classify(fmt.Errorf("creating auction: %w", err))
	}
	a.Lots = []store.Lot{}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "auction created",
		slog.String("auction_id", a.ID),
		slog.String("creator_id", a.CreatorID),
	)
	return a, nil
}

// Get returns the auction with its lots attached.
func (m *Manager) Get(ctx context.Context, auctionID string) (*store.Auction, error) {
	ctx, span := m.tracer.Start(ctx, "Auction.Get",
		trace.WithAttributes(attribute.String("auction_id", auctionID)),
	)
	defer span.End()

	a, err := m.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, store.Classify(err)
	}
	withLots, err := WithLots(ctx, m.lots, []store.Auction{*a})
	if err != nil {
		return nil, err
	}
	return &withLots[0], nil
}

// List returns every auction, optionally narrowed to one category.
func (m *Manager) List(ctx context.Context, category store.AuctionCategory) ([]store.Auction, error) {
	if category != "" && !category.Valid() {
		var v apperr.ValidationError
		checkCategory(&v, category)
		return nil, v.Err()
	}
	return m.Search(ctx, store.AuctionFilter{Category: category})
}

// Search lists auctions matching f with their lots attached.
func (m *Manager) Search(ctx context.Context, f store.AuctionFilter) ([]store.Auction, error) {
	ctx, span := m.tracer.Start(ctx, "Auction.Search",
		trace.WithAttributes(attribute.String("category", string(f.Category))),
	)
	defer span.End()

	auctions, err := m.auctions.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing auctions: %w", err)
	}
	return WithLots(ctx, m.lots, auctions)
}

// Bought lists the auctions bought outright by clientID.
func (m *Manager) Bought(ctx context.Context, id auth.Identity, clientID string) ([]store.Auction, error) {
	if !id.ActsFor(clientID) {
		return nil, fmt.Errorf("listing auctions bought by %s: %w", clientID, apperr.ErrForbidden)
	}
	return m.Search(ctx, store.AuctionFilter{BuyerID: clientID})
}

func (m *Manager) owned(ctx context.Context, id auth.Identity, auctionID string) (*store.Auction, error) {
	if err := id.Require(auth.ManageAuctions); err != nil {
		return nil, err
	}
	a, err := m.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, store.Classify(err)
	}
	if !id.Owns(a.CreatorID) {
		return nil, fmt.Errorf("auction %s belongs to %s: %w", auctionID, a.CreatorID, apperr.ErrForbidden)
	}
	return a, nil
}

// Update applies a partial edit. Bid and sale tracks and the bidding deadline
// are not editable.
func (m *Manager) Update(ctx context.Context, id auth.Identity, auctionID string, in UpdateInput) (*store.Auction, error) {
	ctx, span := m.tracer.Start(ctx, "Auction.Update",
		trace.WithAttributes(attribute.String("auction_id", auctionID)),
	)
	defer span.End()

	a, err := m.owned(ctx, id, auctionID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(a); err != nil {
		return nil, err
	}
	if err := m.auctions.Update(ctx, a); err != nil {
		return nil, store.Classify(fmt.Errorf("updating auction: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "auction updated",
		slog.String("auction_id", auctionID),
	)
	return m.Get(ctx, auctionID)
}

// Delete removes the auction. Its lots, bids and favorites are left in place.
func (m *Manager) Delete(ctx context.Context, id auth.Identity, auctionID string) error {
	ctx, span := m.tracer.Start(ctx, "Auction.Delete",
		trace.WithAttributes(attribute.String("auction_id", auctionID)),
	)
	defer span.End()

	if _, err := m.owned(ctx, id, auctionID); err != nil {
		return err
	}
	if err := m.auctions.Delete(ctx, auctionID); err != nil {
		return store.Classify(fmt.Errorf("deleting auction: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "auction deleted",
		slog.String("auction_id", auctionID),
	)
	return nil
}
