// Package event defines the integration events emitted after marketplace
// writes commit.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies an event kind.
type Type string

const (
	BidPlaced   Type = "bid.placed"
	AuctionSold Type = "auction.sold"
	LotSold     Type = "lot.sold"
)

// Event is a single integration event.
type Event struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Data        json.RawMessage `json:"data"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// BidPlacedData is the payload for BidPlaced events.
type BidPlacedData struct {
	BidID    string  `json:"bid_id"`
	ClientID string  `json:"client_id"`
	Amount   float64 `json:"amount"`
}

// SoldData is the payload for AuctionSold and LotSold events.
type SoldData struct {
	BuyerID   string  `json:"buyer_id"`
	SalePrice float64 `json:"sale_price"`
	// LotsUpdated is set on AuctionSold only.
	LotsUpdated int64 `json:"lots_updated,omitempty"`
}

// New builds an event with a fresh id and the payload marshalled as JSON.
func New(typ Type, aggregateID string, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshalling %s payload: %w", typ, err)
	}
	return Event{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Type:        typ,
		AggregateID: aggregateID,
		Data:        data,
		OccurredAt:  at,
	}, nil
}

// Publisher delivers events to interested parties. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory. It is meant for tests.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
	return nil
}

// Types returns the type of every recorded event in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}
