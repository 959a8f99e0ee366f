package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/orderflow/internal/data/repos/testutil"
	"github.com/storefront/orderflow/internal/domain/order"
)

var errChannelDrained = errors.New("channel drained")

// fakeChannel scripts a fixed number of heartbeat cycles, acknowledging each
// and recording every delivered batch. Once the cycles run out SendHeartbeat
// fails, which ends the feed loop.
type fakeChannel struct {
	cyclesLeft int
	ack        string
	batches    [][]StatusUpdate
	closed     bool
}

func newFakeChannel(cycles int) *fakeChannel {
	return &fakeChannel{cyclesLeft: cycles, ack: "pong"}
}

func (fc *fakeChannel) SendHeartbeat(ctx context.Context, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if payload != "ping" {
		return errors.New("unexpected heartbeat payload: " + payload)
	}
	if fc.cyclesLeft == 0 {
		return errChannelDrained
	}
	fc.cyclesLeft--
	return nil
}

func (fc *fakeChannel) AwaitAck(ctx context.Context) (string, error) {
	return fc.ack, nil
}

func (fc *fakeChannel) SendUpdates(ctx context.Context, updates []StatusUpdate) error {
	fc.batches = append(fc.batches, updates)
	return nil
}

func (fc *fakeChannel) Close() error {
	fc.closed = true
	return nil
}

func newFeedFixture(t *testing.T) (*commandFixture, StatusFeedService) {
	t.Helper()
	f := newCommandFixture(t)
	feed := NewStatusFeedService(testutil.Logger(t), f.events, time.Millisecond, time.Second)
	return f, feed
}

func TestSnapshotUnknownOrder(t *testing.T) {
	_, feed := newFeedFixture(t)

	_, err := feed.Snapshot(context.Background(), uuid.New())
	if !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty timeline, got %v", err)
	}
}

func TestSnapshotReturnsTimeline(t *testing.T) {
	f, feed := newFeedFixture(t)
	ctx := context.Background()

	ord := f.create(t, ctx)
	updates, err := feed.Snapshot(ctx, ord.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(updates) != 1 || updates[0].Name != order.EventOrderCreated {
		t.Fatalf("unexpected snapshot: %+v", updates)
	}
}

func TestRunDeliversDeltaOnce(t *testing.T) {
	f, feed := newFeedFixture(t)
	ctx := context.Background()

	ord := f.create(t, ctx)
	if _, err := f.commands.Transition(ctx, ord.ID, (*order.Order).Begin); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	// Two poll cycles: the first delivers the whole timeline, the second
	// finds nothing new and stays silent.
	ch := newFakeChannel(2)
	if err := feed.Run(ctx, ord.ID, ch); !errors.Is(err, errChannelDrained) {
		t.Fatalf("expected drained channel error, got %v", err)
	}

	if len(ch.batches) != 1 {
		t.Fatalf("expected exactly one delivered batch, got %d", len(ch.batches))
	}
	batch := ch.batches[0]
	if len(batch) != 2 || batch[0].Name != order.EventOrderCreated || batch[1].Name != order.EventOrderStarted {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if !ch.closed {
		t.Fatalf("channel must be closed when the feed ends")
	}
}

func TestRunDeliversNewEventsOnLaterPolls(t *testing.T) {
	f, feed := newFeedFixture(t)
	ctx := context.Background()

	ord := f.create(t, ctx)

	ch := newFakeChannel(2)
	firstDelivered := false

	// Drive the advance from the delivery callback instead of a timer so the
	// test stays deterministic.
	wrapped := &hookedChannel{fakeChannel: ch, onBatch: func() {
		if firstDelivered {
			return
		}
		firstDelivered = true
		if _, err := f.commands.Transition(ctx, ord.ID, (*order.Order).Begin); err != nil {
			t.Errorf("Transition: %v", err)
		}
	}}

	if err := feed.Run(ctx, ord.ID, wrapped); !errors.Is(err, errChannelDrained) {
		t.Fatalf("expected drained channel error, got %v", err)
	}

	if len(ch.batches) != 2 {
		t.Fatalf("expected two delivered batches, got %d", len(ch.batches))
	}
	if len(ch.batches[0]) != 1 || ch.batches[0][0].Name != order.EventOrderCreated {
		t.Fatalf("unexpected first batch: %+v", ch.batches[0])
	}
	if len(ch.batches[1]) != 1 || ch.batches[1][0].Name != order.EventOrderStarted {
		t.Fatalf("unexpected second batch: %+v", ch.batches[1])
	}
}

type hookedChannel struct {
	*fakeChannel
	onBatch func()
}

func (hc *hookedChannel) SendUpdates(ctx context.Context, updates []StatusUpdate) error {
	if err := hc.fakeChannel.SendUpdates(ctx, updates); err != nil {
		return err
	}
	hc.onBatch()
	return nil
}

// slowSendChannel burns most of the heartbeat budget inside SendHeartbeat and
// then insists AwaitAck still has a fresh budget of its own.
type slowSendChannel struct {
	*fakeChannel
	budget time.Duration
}

func (sc *slowSendChannel) SendHeartbeat(ctx context.Context, payload string) error {
	if err := sc.fakeChannel.SendHeartbeat(ctx, payload); err != nil {
		return err
	}
	time.Sleep(sc.budget * 3 / 4)
	return nil
}

func (sc *slowSendChannel) AwaitAck(ctx context.Context) (string, error) {
	d, ok := ctx.Deadline()
	if !ok {
		return "", errors.New("missing ack deadline")
	}
	if time.Until(d) < sc.budget/2 {
		return "", errors.New("ack window consumed by the send")
	}
	return sc.fakeChannel.AwaitAck(ctx)
}

func TestHeartbeatAckGetsOwnTimeout(t *testing.T) {
	f := newCommandFixture(t)
	budget := 200 * time.Millisecond
	feed := NewStatusFeedService(testutil.Logger(t), f.events, time.Millisecond, budget)
	ctx := context.Background()

	ord := f.create(t, ctx)

	ch := &slowSendChannel{fakeChannel: newFakeChannel(1), budget: budget}
	if err := feed.Run(ctx, ord.ID, ch); !errors.Is(err, errChannelDrained) {
		t.Fatalf("expected drained channel error, got %v", err)
	}
	if len(ch.batches) != 1 {
		t.Fatalf("slow send must not starve the cycle, got %d batches", len(ch.batches))
	}
}

func TestRunRejectsBadAck(t *testing.T) {
	f, feed := newFeedFixture(t)
	ctx := context.Background()

	ord := f.create(t, ctx)

	ch := newFakeChannel(1)
	ch.ack = "nope"
	if err := feed.Run(ctx, ord.ID, ch); !errors.Is(err, ErrFeedProtocol) {
		t.Fatalf("expected ErrFeedProtocol, got %v", err)
	}
	if !ch.closed {
		t.Fatalf("channel must be closed after a protocol violation")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f, feed := newFeedFixture(t)

	ord := f.create(t, context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := newFakeChannel(100)
	err := feed.Run(ctx, ord.ID, ch)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !ch.closed {
		t.Fatalf("channel must be closed on cancellation")
	}
}
