package natspub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"

	"github.com/Rijon63/fothebys-auction-system/internal/config"
	"github.com/Rijon63/fothebys-auction-system/internal/event"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestPublish_Subject(t *testing.T) {
	fc := &fakeConn{}
	p := New(fc, "fothebys", discard)

	e, err := event.New(event.LotSold, "lot-7", event.SoldData{BuyerID: "c1", SalePrice: 900}, time.Now())
	if err != nil {
		t.Fatalf("event.New: %v", err)
	}
	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(fc.subjects) != 1 || fc.subjects[0] != "fothebys.lot.sold.lot-7" {
		t.Fatalf("subjects = %v, want [fothebys.lot.sold.lot-7]", fc.subjects)
	}
	var got event.Event
	if err := json.Unmarshal(fc.payloads[0], &got); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if got.ID != e.ID || got.Type != event.LotSold {
		t.Errorf("published %+v, want id %s", got, e.ID)
	}
}

func TestPublish_Errors(t *testing.T) {
	boom := errors.New("connection closed")
	p := New(&fakeConn{err: boom}, "fothebys", discard)
	if err := p.Publish(context.Background(), event.Event{Type: event.BidPlaced, AggregateID: "a1"}); !errors.Is(err, boom) {
		t.Errorf("Publish error = %v, want %v", err, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fc := &fakeConn{}
	if err := New(fc, "fothebys", discard).Publish(ctx, event.Event{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish on cancelled ctx error = %v, want context.Canceled", err)
	}
	if len(fc.subjects) != 0 {
		t.Error("nothing should be published on a cancelled context")
	}
}

func TestConnect_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcnats.Run(ctx, "nats:2.10-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("starting nats container: %v", err)
	}
	url, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	pub, nc, err := Connect(config.NATSConfig{URL: url, SubjectPrefix: "fothebys"}, discard)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(nc.Close)

	sub, err := nc.SubscribeSync("fothebys.bid.placed.>")
	if err != nil {
		t.Fatalf("SubscribeSync: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	e, err := event.New(event.BidPlaced, "auction-1", event.BidPlacedData{BidID: "b1", ClientID: "c1", Amount: 120}, time.Now())
	if err != nil {
		t.Fatalf("event.New: %v", err)
	}
	if err := pub.Publish(ctx, e); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg: %v", err)
	}
	if msg.Subject != "fothebys.bid.placed.auction-1" {
		t.Errorf("subject = %q", msg.Subject)
	}
	var got event.Event
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.ID != e.ID {
		t.Errorf("received event %s, want %s", got.ID, e.ID)
	}
}

var _ conn = (*nats.Conn)(nil)
