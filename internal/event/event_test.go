package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	e, err := New(BidPlaced, "auction-1", BidPlacedData{BidID: "b1", ClientID: "c1", Amount: 150}, at)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.ID == "" || e.Type != BidPlaced || e.AggregateID != "auction-1" || !e.OccurredAt.Equal(at) {
		t.Errorf("New() = %+v", e)
	}

	var got BidPlacedData
	if err := json.Unmarshal(e.Data, &got); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if got.Amount != 150 || got.ClientID != "c1" {
		t.Errorf("payload = %+v", got)
	}
}

func TestNew_UnmarshalablePayload(t *testing.T) {
	if _, err := New(LotSold, "lot-1", make(chan int), time.Now()); err == nil {
		t.Fatal("expected error for unmarshalable payload")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	for _, typ := range []Type{BidPlaced, AuctionSold} {
		if err := r.Publish(context.Background(), Event{Type: typ}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	got := r.Types()
	if len(got) != 2 || got[0] != BidPlaced || got[1] != AuctionSold {
		t.Errorf("Types() = %v", got)
	}
}
