// Package commission records standing maximum bids that clients leave
// against lots.
package commission

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/money"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"
)

// Manager handles the commission bid ledger.
type Manager struct {
	bids    store.CommissionBidRepository
	lots    store.LotRepository
	clients store.ClientRepository
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewManager returns a new commission Manager.
func NewManager(repos *store.Repositories, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		bids:    repos.CommissionBids,
		lots:    repos.Lots,
		clients: repos.Clients,
		logger:  logger,
		tracer:  tp.Tracer("github.com/Rijon63/fothebys-auction-system/internal/commission"),
	}
}

// Submit appends a commission bid. Buyers submit for their own client;
// admins may name any client. An empty clientID means the caller's client.
func (m *Manager) Submit(ctx context.Context, id auth.Identity, lotID, clientID string, amount float64) (*store.CommissionBid, error) {
	ctx, span := m.tracer.Start(ctx, "Commission.Submit",
		trace.WithAttributes(
			attribute.String("lot_id", lotID),
			attribute.String("client_id", clientID),
			attribute.Float64("amount", amount),
		),
	)
	defer span.End()

	if err := id.Require(auth.Commission); err != nil {
		return nil, err
	}
	if clientID == "" {
		clientID = id.ClientID
	}
	if !id.ActsFor(clientID) {
		return nil, fmt.Errorf("commission bid for client %q: %w", clientID, apperr.ErrForbidden)
	}
	if !money.Positive(amount) {
		return nil, fmt.Errorf("commission bid %.2f: %w", amount, apperr.ErrInvalidPrice)
	}
	if _, err := m.lots.GetByID(ctx, lotID); err != nil {
		return nil, store.Classify(err)
	}
	if _, err := m.clients.GetByID(ctx, clientID); err != nil {
		return nil, store.Classify(err)
	}

	b := &store.CommissionBid{ClientID: clientID, LotID: lotID, BidAmount: money.Round(amount)}
	if err := m.bids.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("creating commission bid: %w", err)
	}

	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "commission bid submitted",
		slog.String("bid_id", b.ID),
		slog.String("lot_id", lotID),
		slog.String("client_id", clientID),
	)
	return b, nil
}

// ListByClient returns the client's commission bids in submission order.
func (m *Manager) ListByClient(ctx context.Context, id auth.Identity, clientID string) ([]store.CommissionBid, error) {
	ctx, span := m.tracer.Start(ctx, "Commission.ListByClient",
		trace.WithAttributes(attribute.String("client_id", clientID)),
	)
	defer span.End()

	if !id.ActsFor(clientID) {
		return nil, fmt.Errorf("listing commission bids of %s: %w", clientID, apperr.ErrForbidden)
	}
	if _, err := m.clients.GetByID(ctx, clientID); err != nil {
		return nil, store.Classify(err)
	}
	bids, err := m.bids.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing commission bids: %w", err)
	}
	return orEmpty(bids), nil
}

// ListByLot returns every commission bid on the lot, visible to admins and
// the lot's seller.
func (m *Manager) ListByLot(ctx context.Context, id auth.Identity, lotID string) ([]store.CommissionBid, error) {
	ctx, span := m.tracer.Start(ctx, "Commission.ListByLot",
		trace.WithAttributes(attribute.String("lot_id", lotID)),
	)
	defer span.End()

	if err := id.Require(auth.ViewCommissionBids); err != nil {
		return nil, err
	}
	l, err := m.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, store.Classify(err)
	}
	if !id.Owns(l.SellerID) {
		return nil, fmt.Errorf("lot %s belongs to %s: %w", lotID, l.SellerID, apperr.ErrForbidden)
	}
	bids, err := m.bids.ListByLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("listing commission bids: %w", err)
	}
	return orEmpty(bids), nil
}

func orEmpty(b []store.CommissionBid) []store.CommissionBid {
	if b == nil {
		return []store.CommissionBid{}
	}
	return b
}
