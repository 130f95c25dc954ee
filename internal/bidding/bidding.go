// Package bidding is the bid and sale engine: competitive bids, buy-now on
// whole auctions and single-lot purchases.
package bidding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/auction"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/event"
	"github.com/Rijon63/fothebys-auction-system/internal/money"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"
)

const scope = "github.com/Rijon63/fothebys-auction-system/internal/bidding"

// BidResult is the outcome of an accepted bid.
type BidResult struct {
	HighestBid float64   `json:"highestBid"`
	Bid        store.Bid `json:"bid"`
}

// Manager runs bidding and purchases against the catalog store.
type Manager struct {
	repos     *store.Repositories
	publisher event.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	clock     clock.Clock

	bidsPlaced     metric.Int64Counter
	salesCompleted metric.Int64Counter
}

// NewManager creates a bidding Manager.
func NewManager(repos *store.Repositories, pub event.Publisher, logger *slog.Logger, tp trace.TracerProvider, mp metric.MeterProvider, clk clock.Clock) (*Manager, error) {
	meter := mp.Meter(scope)
	bids, err := meter.Int64Counter("fothebys.bids.placed",
		metric.WithDescription("Accepted competitive bids."))
	if err != nil {
		return nil, fmt.Errorf("creating bids counter: %w", err)
	}
	sales, err := meter.Int64Counter("fothebys.sales.completed",
		metric.WithDescription("Completed buy-now sales by kind."))
	if err != nil {
		return nil, fmt.Errorf("creating sales counter: %w", err)
	}
	return &Manager{
		repos:          repos,
		publisher:      pub,
		logger:         logger,
		tracer:         tp.Tracer(scope),
		clock:          clk,
		bidsPlaced:     bids,
		salesCompleted: sales,
	}, nil
}

// PlaceBid records a bid strictly above the auction's current highest bid.
// The bid row and the highest-bid update commit together.
func (m *Manager) PlaceBid(ctx context.Context, id auth.Identity, auctionID string, amount float64) (*BidResult, error) {
	ctx, span := m.tracer.Start(ctx, "Bidding.PlaceBid",
		trace.WithAttributes(
			attribute.String("auction_id", auctionID),
			attribute.String("client_id", id.ClientID),
			attribute.Float64("amount", amount),
		),
	)
	defer span.End()

	if err := id.Require(auth.Bid); err != nil {
		return nil, err
	}
	if id.ClientID == "" {
		return nil, fmt.Errorf("bidding requires a client account: %w", apperr.ErrForbidden)
	}

	amount = money.Round(amount)
	now := m.clock.Now()
	bid := store.Bid{AuctionID: auctionID, ClientID: id.ClientID, Amount: amount, PlacedAt: now}

	err := m.repos.Transact(ctx, func(ctx context.Context, tx *store.Repositories) error {
		a, err := tx.Auctions.GetByID(ctx, auctionID)
		if err != nil {
			return store.Classify(err)
		}
		switch {
		case a.BiddingClosed(now):
			return fmt.Errorf("auction %s closed at %s: %w", auctionID, a.BiddingEndTime.Format(time.RFC3339), apperr.ErrDeadlinePassed)
		case a.Sold():
			return fmt.Errorf("auction %s: %w", auctionID, apperr.ErrAlreadySold)
		case !money.Exceeds(amount, a.HighestBid):
			return fmt.Errorf("bid %.2f on auction %s: %w", amount, auctionID, apperr.ErrBidTooLow)
		}

		if err := tx.Bids.Create(ctx, &bid); err != nil {
			return fmt.Errorf("recording bid: %w", err)
		}
		if err := tx.Auctions.RecordBid(ctx, auctionID, amount, id.ClientID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return apperr.Tag(err, apperr.ErrBidTooLow)
			}
			return store.Classify(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.bidsPlaced.Add(ctx, 1)
	m.publish(ctx, event.BidPlaced, auctionID, event.BidPlacedData{BidID: bid.ID, ClientID: bid.ClientID, Amount: amount})
	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "bid placed",
		slog.String("auction_id", auctionID),
		slog.String("client_id", id.ClientID),
		slog.Float64("amount", amount),
	)
	return &BidResult{HighestBid: amount, Bid: bid}, nil
}

// BuyAuction sells the whole auction to buyerID and stamps the same sale
// onto every lot of the auction, replacing any earlier lot sale.
func (m *Manager) BuyAuction(ctx context.Context, id auth.Identity, auctionID string, salePrice float64, buyerID string) (*store.Auction, error) {
	ctx, span := m.tracer.Start(ctx, "Bidding.BuyAuction",
		trace.WithAttributes(
			attribute.String("auction_id", auctionID),
			attribute.Float64("sale_price", salePrice),
		),
	)
	defer span.End()

	if err := id.Require(auth.Buy); err != nil {
		return nil, err
	}
	if buyerID == "" {
		buyerID = id.ClientID
	}
	if !id.ActsFor(buyerID) {
		return nil, fmt.Errorf("buying auction %s for %q: %w", auctionID, buyerID, apperr.ErrForbidden)
	}

	salePrice = money.Round(salePrice)
	now := m.clock.Now()
	var lotsUpdated int64

	err := m.repos.Transact(ctx, func(ctx context.Context, tx *store.Repositories) error {
		a, err := tx.Auctions.GetByID(ctx, auctionID)
		if err != nil {
			return store.Classify(err)
		}
		switch {
		case !money.Positive(salePrice):
			return fmt.Errorf("sale price %.2f: %w", salePrice, apperr.ErrInvalidPrice)
		case a.BiddingClosed(now):
			return fmt.Errorf("auction %s: %w", auctionID, apperr.ErrDeadlinePassed)
		case a.Sold():
			return fmt.Errorf("auction %s: %w", auctionID, apperr.ErrAlreadySold)
		}

		if err := tx.Auctions.MarkSold(ctx, auctionID, buyerID, salePrice, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return apperr.Tag(err, apperr.ErrAlreadySold)
			}
			return store.Classify(err)
		}
		lotsUpdated, err = tx.Lots.MarkSoldByAuction(ctx, auctionID, buyerID, salePrice, now)
		if err != nil {
			return fmt.Errorf("selling lots of auction %s: %w", auctionID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.salesCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "auction")))
	m.publish(ctx, event.AuctionSold, auctionID, event.SoldData{BuyerID: buyerID, SalePrice: salePrice, LotsUpdated: lotsUpdated})
	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "auction sold",
		slog.String("auction_id", auctionID),
		slog.String("buyer_id", buyerID),
		slog.Int64("lots_updated", lotsUpdated),
	)

	a, err := m.repos.Auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, store.Classify(err)
	}
	sold, err := auction.WithLots(ctx, m.repos.Lots, []store.Auction{*a})
	if err != nil {
		return nil, err
	}
	return &sold[0], nil
}

// BuyLot sells one lot to the caller's client record. The parent auction
// is not touched.
func (m *Manager) BuyLot(ctx context.Context, id auth.Identity, lotID string, salePrice float64) (*store.Lot, error) {
	ctx, span := m.tracer.Start(ctx, "Bidding.BuyLot",
		trace.WithAttributes(
			attribute.String("lot_id", lotID),
			attribute.Float64("sale_price", salePrice),
		),
	)
	defer span.End()

	if err := id.Require(auth.Buy); err != nil {
		return nil, err
	}

	salePrice = money.Round(salePrice)
	now := m.clock.Now()
	var buyer *store.Client

	err := m.repos.Transact(ctx, func(ctx context.Context, tx *store.Repositories) error {
		l, err := tx.Lots.GetByID(ctx, lotID)
		if err != nil {
			return store.Classify(err)
		}
		if !money.Positive(salePrice) {
			return fmt.Errorf("sale price %.2f: %w", salePrice, apperr.ErrInvalidPrice)
		}
		buyer, err = tx.Clients.GetByUserID(ctx, id.UserID)
		if err != nil {
			return store.Classify(fmt.Errorf("resolving client: %w", err))
		}
		if l.Sold() {
			return fmt.Errorf("lot %s: %w", lotID, apperr.ErrAlreadySold)
		}
		if err := tx.Lots.MarkSold(ctx, lotID, buyer.ID, salePrice, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return apperr.Tag(err, apperr.ErrAlreadySold)
			}
			return store.Classify(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.salesCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "lot")))
	m.publish(ctx, event.LotSold, lotID, event.SoldData{BuyerID: buyer.ID, SalePrice: salePrice})
	telemetry.LogWithTrace(ctx, m.logger).InfoContext(ctx, "lot sold",
		slog.String("lot_id", lotID),
		slog.String("buyer_id", buyer.ID),
	)

	l, err := m.repos.Lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, store.Classify(err)
	}
	return l, nil
}

// ListBids returns the auction's bid history in the order bids were accepted.
func (m *Manager) ListBids(ctx context.Context, auctionID string) ([]store.Bid, error) {
	ctx, span := m.tracer.Start(ctx, "Bidding.ListBids",
		trace.WithAttributes(attribute.String("auction_id", auctionID)),
	)
	defer span.End()

	if _, err := m.repos.Auctions.GetByID(ctx, auctionID); err != nil {
		return nil, store.Classify(err)
	}
	bids, err := m.repos.Bids.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("listing bids: %w", err)
	}
	if bids == nil {
		bids = []store.Bid{}
	}
	return bids, nil
}

// publish emits an integration event after commit. Failures are logged only.
func (m *Manager) publish(ctx context.Context, typ event.Type, aggregateID string, payload any) {
	e, err := event.New(typ, aggregateID, payload, m.clock.Now())
	if err == nil {
		err = m.publisher.Publish(ctx, e)
	}
	if err != nil {
		telemetry.LogWithTrace(ctx, m.logger).ErrorContext(ctx, "failed to publish event",
			slog.String("type", string(typ)),
			slog.String("aggregate_id", aggregateID),
			slog.Any("error", err),
		)
	}
}
