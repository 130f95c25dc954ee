package lot

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

// Manager handles lot catalogue operations.
type Manager struct {
	lots     store.LotRepository
	auctions store.AuctionRepository
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewManager returns a new lot Manager.
func NewManager(repos *store.Repositories, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		lots:     repos.Lots,
		auctions: repos.Auctions,
		logger:   logger,
		tracer:   tp.Tracer("github.com/Rijon63/fothebys-auction-system/internal/lot"),
	}
}

// scope narrows f to what the caller may see: admins see everything,
// sellers their own lots and buyers unsold lots.
func scope(id auth.Identity, f store.LotFilter) store.LotFilter {
	switch id.Role {
	case auth.RoleAdmin:
	case auth.RoleSeller:
		f.SellerID = id.UserID
	default:
		f.UnsoldOnly = true
	}
	return f
}

func visible(id auth.Identity, l *store.Lot) bool {
	return id.Role != auth.RoleBuyer || !l.Sold()
}

// Create validates and stores a new lot in an existing auction.
func (m *Manager) Create(ctx context.Context, id auth.Identity, in Input) (*store.Lot, error) {
	ctx, span := m.tracer.Start(ctx, "Lot.Create",
		trace.WithAttributes(attribute.String("user_id", id.UserID)),
	)
	defer span.End()

	if err := id.Require(auth.ManageLots); err != nil {
		return nil, err
	}
	if in.SellerID == nil || *in.SellerID == "" {
		in.SellerID = &id.UserID
	}
	if *in.SellerID != id.UserID && !id.IsAdmin() {
		return nil, fmt.Errorf("creating lot for seller %s: %w", *in.SellerID, apperr.ErrForbidden)
	}

	l := &store.Lot{}
	in.apply(l)
	if err := validate(l, in, true); err != nil {
		return nil, err
	}
	if _, err := m.auctions.GetByID(ctx, l.AuctionID); err != nil {
		return nil, store.Classify(err)
	}
	if err := m.lots.Create(ctx, l); err != nil {
		return nil, store.Classify(fmt.Errorf("creating lot: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "lot created",
		slog.String("lot_id", l.ID),
		slog.String("lot_number", l.LotNumber),
		slog.String("auction_id", l.AuctionID),
	)
	return l, nil
}

// Get returns one lot. Sold lots are hidden from buyers.
func (m *Manager) Get(ctx context.Context, id auth.Identity, lotID string) (*store.Lot, error) {
	ctx, span := m.tracer.Start(ctx, "Lot.Get",
		trace.WithAttributes(attribute.String("lot_id", lotID)),
	)
	defer span.End()

	l, err := m.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, store.Classify(err)
	}
	if !visible(id, l) {
		return nil, fmt.Errorf("lot %s is sold: %w", lotID, apperr.ErrNotFound)
	}
	return l, nil
}

// List returns the lots the caller may see.
func (m *Manager) List(ctx context.Context, id auth.Identity) ([]store.Lot, error) {
	return m.list(ctx, id, store.LotFilter{})
}

// ListByAuction returns the visible lots of one auction.
func (m *Manager) ListByAuction(ctx context.Context, id auth.Identity, auctionID string) ([]store.Lot, error) {
	if _, err := m.auctions.GetByID(ctx, auctionID); err != nil {
		return nil, store.Classify(err)
	}
	return m.list(ctx, id, store.LotFilter{AuctionIDs: []string{auctionID}})
}

// Bought returns the lots bought by clientID.
func (m *Manager) Bought(ctx context.Context, id auth.Identity, clientID string) ([]store.Lot, error) {
	if !id.ActsFor(clientID) {
		return nil, fmt.Errorf("listing lots bought by %s: %w", clientID, apperr.ErrForbidden)
	}
	lots, err := m.lots.List(ctx, store.LotFilter{BuyerID: clientID})
	if err != nil {
		return nil, fmt.Errorf("listing lots: %w", err)
	}
	return orEmpty(lots), nil
}

func (m *Manager) list(ctx context.Context, id auth.Identity, f store.LotFilter) ([]store.Lot, error) {
	ctx, span := m.tracer.Start(ctx, "Lot.List",
		trace.WithAttributes(attribute.String("role", string(id.Role))),
	)
	defer span.End()

	lots, err := m.lots.List(ctx, scope(id, f))
	if err != nil {
		return nil, fmt.Errorf("listing lots: %w", err)
	}
	return orEmpty(lots), nil
}

func (m *Manager) owned(ctx context.Context, id auth.Identity, lotID string) (*store.Lot, error) {
	if err := id.Require(auth.ManageLots); err != nil {
		return nil, err
	}
	l, err := m.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, store.Classify(err)
	}
	if !id.Owns(l.SellerID) {
		return nil, fmt.Errorf("lot %s belongs to %s: %w", lotID, l.SellerID, apperr.ErrForbidden)
	}
	return l, nil
}

// Update applies a partial edit. Only admins may reassign the seller.
func (m *Manager) Update(ctx context.Context, id auth.Identity, lotID string, in Input) (*store.Lot, error) {
	ctx, span := m.tracer.Start(ctx, "Lot.Update",
		trace.WithAttributes(attribute.String("lot_id", lotID)),
	)
	defer span.End()

	l, err := m.owned(ctx, id, lotID)
	if err != nil {
		return nil, err
	}
	if in.SellerID != nil && *in.SellerID != l.SellerID && !id.IsAdmin() {
		return nil, fmt.Errorf("reassigning lot %s: %w", lotID, apperr.ErrForbidden)
	}
	prevAuction := l.AuctionID
	in.apply(l)
	if err := validate(l, in, false); err != nil {
		return nil, err
	}
	if l.AuctionID != prevAuction {
		if _, err := m.auctions.GetByID(ctx, l.AuctionID); err != nil {
			return nil, store.Classify(err)
		}
	}
	if err := m.lots.Update(ctx, l); err != nil {
		return nil, store.Classify(fmt.Errorf("updating lot: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "lot updated",
		slog.String("lot_id", lotID),
	)
	updated, err := m.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, store.Classify(err)
	}
	return updated, nil
}

// Delete removes the lot.
func (m *Manager) Delete(ctx context.Context, id auth.Identity, lotID string) error {
	ctx, span := m.tracer.Start(ctx, "Lot.Delete",
		trace.WithAttributes(attribute.String("lot_id", lotID)),
	)
	defer span.End()

	if _, err := m.owned(ctx, id, lotID); err != nil {
		return err
	}
	if err := m.lots.Delete(ctx, lotID); err != nil {
		return store.Classify(fmt.Errorf("deleting lot: %w", err))
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "lot deleted",
		slog.String("lot_id", lotID),
	)
	return nil
}

func orEmpty(l []store.Lot) []store.Lot {
	if l == nil {
		return []store.Lot{}
	}
	return l
}
