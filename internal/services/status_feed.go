package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	orderrepo "github.com/storefront/orderflow/internal/data/repos/order"
	"github.com/storefront/orderflow/internal/domain/order"
	"github.com/storefront/orderflow/internal/platform/logger"
)

// ErrFeedProtocol signals an unexpected acknowledgment payload from the
// subscriber; the session terminates on it.
var ErrFeedProtocol = errors.New("unexpected status feed acknowledgment")

const heartbeatPayload = "ping"
const ackPayload = "pong"

type StatusUpdate struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusChannel is the bidirectional client connection the feed drives. All
// calls honor context deadlines; Close releases the connection and is safe to
// call more than once.
type StatusChannel interface {
	SendHeartbeat(ctx context.Context, payload string) error
	AwaitAck(ctx context.Context) (string, error)
	SendUpdates(ctx context.Context, updates []StatusUpdate) error
	Close() error
}

type StatusFeedService interface {
	Snapshot(ctx context.Context, orderID uuid.UUID) ([]StatusUpdate, error)
	Run(ctx context.Context, orderID uuid.UUID, ch StatusChannel) error
}

type statusFeedService struct {
	log              *logger.Logger
	events           orderrepo.EventStore
	pollInterval     time.Duration
	heartbeatTimeout time.Duration
}

func NewStatusFeedService(log *logger.Logger, events orderrepo.EventStore, pollInterval, heartbeatTimeout time.Duration) StatusFeedService {
	serviceLog := log.With("service", "StatusFeedService")
	return &statusFeedService{
		log:              serviceLog,
		events:           events,
		pollInterval:     pollInterval,
		heartbeatTimeout: heartbeatTimeout,
	}
}

// Snapshot returns the recorded event timeline. An order with zero events has
// never been created, so the subscription is refused with ErrNotFound.
func (sfs *statusFeedService) Snapshot(ctx context.Context, orderID uuid.UUID) ([]StatusUpdate, error) {
	events, err := sfs.events.ListByOrder(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, order.ErrNotFound
	}
	return toUpdates(events), nil
}

// Run drives one subscription until the context is canceled, the channel
// fails, or the subscriber violates the heartbeat protocol. The channel is
// closed on every exit path.
func (sfs *statusFeedService) Run(ctx context.Context, orderID uuid.UUID, ch StatusChannel) error {
	defer func() {
		if err := ch.Close(); err != nil {
			sfs.log.Debug("Status channel close failed", "order_id", orderID, "error", err)
		}
	}()

	var delivered []StatusUpdate
	for {
		if err := sfs.heartbeat(ctx, ch); err != nil {
			return err
		}

		latest, err := sfs.poll(ctx, orderID)
		if err != nil {
			return err
		}

		if delta := diffUpdates(latest, delivered); len(delta) > 0 {
			sendCtx, cancel := context.WithTimeout(ctx, sfs.heartbeatTimeout)
			err := ch.SendUpdates(sendCtx, delta)
			cancel()
			if err != nil {
				return err
			}
			delivered = latest
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sfs.pollInterval):
		}
	}
}

// heartbeat pings the subscriber and waits for the ack. Send and ack each get
// their own full timeout budget.
func (sfs *statusFeedService) heartbeat(ctx context.Context, ch StatusChannel) error {
	sendCtx, cancelSend := context.WithTimeout(ctx, sfs.heartbeatTimeout)
	err := ch.SendHeartbeat(sendCtx, heartbeatPayload)
	cancelSend()
	if err != nil {
		return err
	}

	ackCtx, cancelAck := context.WithTimeout(ctx, sfs.heartbeatTimeout)
	defer cancelAck()
	ack, err := ch.AwaitAck(ackCtx)
	if err != nil {
		return err
	}
	if ack != ackPayload {
		return ErrFeedProtocol
	}
	return nil
}

func (sfs *statusFeedService) poll(ctx context.Context, orderID uuid.UUID) ([]StatusUpdate, error) {
	events, err := sfs.events.ListByOrder(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	return toUpdates(events), nil
}

// diffUpdates keeps entries of latest that were never delivered, matching by
// exact value rather than a timestamp cursor.
func diffUpdates(latest, delivered []StatusUpdate) []StatusUpdate {
	if len(delivered) == 0 {
		return latest
	}

	type key struct {
		name string
		ts   int64
	}
	seen := make(map[key]struct{}, len(delivered))
	for _, u := range delivered {
		seen[key{u.Name, u.CreatedAt.UnixNano()}] = struct{}{}
	}

	var fresh []StatusUpdate
	for _, u := range latest {
		if _, ok := seen[key{u.Name, u.CreatedAt.UnixNano()}]; !ok {
			fresh = append(fresh, u)
		}
	}
	return fresh
}

func toUpdates(events []order.Event) []StatusUpdate {
	updates := make([]StatusUpdate, 0, len(events))
	for _, ev := range events {
		updates = append(updates, StatusUpdate{Name: ev.Name, CreatedAt: ev.CreatedAt})
	}
	return updates
}
