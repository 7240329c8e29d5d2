package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/DoyleJ11/party-sync/pkg/types"
)

var (
	ErrOutboxClosed   = errors.New("outbox closed")
	ErrOutboxOverflow = errors.New("outbox overflow")
)

// Outbox is a connection's pending outbound frames. Send never blocks, so
// the hub loop is never held up by a slow socket; a client that falls
// more than limit frames behind is cut off instead.
type Outbox struct {
	mu    sync.Mutex
	q     *queue.Queue
	limit int
	err   error
	wake  chan struct{}
	log   *zap.Logger
}

func NewOutbox(limit int, log *zap.Logger) *Outbox {
	return &Outbox{
		q:     queue.New(),
		limit: limit,
		wake:  make(chan struct{}, 1),
		log:   log,
	}
}

// Send encodes one event as an Envelope and queues it.
func (o *Outbox) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		o.log.Error("encode payload", zap.String("event", event), zap.Error(err))
		return
	}
	frame, err := json.Marshal(types.Envelope{Event: event, Data: data})
	if err != nil {
		o.log.Error("encode envelope", zap.String("event", event), zap.Error(err))
		return
	}
	o.push(frame)
}

func (o *Outbox) push(frame []byte) {
	o.mu.Lock()
	if o.err != nil {
		o.mu.Unlock()
		return
	}
	if o.q.Length() >= o.limit {
		o.err = ErrOutboxOverflow
		o.mu.Unlock()
		o.log.Warn("client too slow, dropping", zap.Int("queued", o.limit))
		o.signal()
		return
	}
	o.q.Add(frame)
	o.mu.Unlock()
	o.signal()
}

// Next blocks until a frame is available. After Close it drains what is
// left and then returns ErrOutboxClosed; after an overflow it returns
// ErrOutboxOverflow straight away.
func (o *Outbox) Next(ctx context.Context) ([]byte, error) {
	for {
		o.mu.Lock()
		if errors.Is(o.err, ErrOutboxOverflow) {
			o.mu.Unlock()
			return nil, ErrOutboxOverflow
		}
		if o.q.Length() > 0 {
			frame := o.q.Remove().([]byte)
			o.mu.Unlock()
			return frame, nil
		}
		if o.err != nil {
			err := o.err
			o.mu.Unlock()
			return nil, err
		}
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-o.wake:
		}
	}
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.q.Length()
}

func (o *Outbox) Close() {
	o.mu.Lock()
	if o.err == nil {
		o.err = ErrOutboxClosed
	}
	o.mu.Unlock()
	o.signal()
}

func (o *Outbox) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}
