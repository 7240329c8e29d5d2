package hub

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/DoyleJ11/party-sync/internal/session"
)

// HubMsg is anything the hub loop accepts. The loop handles one message
// at a time, which is what keeps party mutations race-free.
type HubMsg interface{ isHubMsg() }

type Connect struct {
	ConnID string
	Out    session.Sender
}

type Disconnect struct {
	ConnID string
}

type Inbound struct {
	ConnID string
	Event  string
	Data   json.RawMessage
}

type GetStats struct {
	Reply chan session.Stats
}

type ShutdownHub struct{}

func (Connect) isHubMsg()     {}
func (Disconnect) isHubMsg()  {}
func (Inbound) isHubMsg()     {}
func (GetStats) isHubMsg()    {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	coord  *session.Coordinator
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, coord *session.Coordinator, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 256),
		coord:  coord,
		log:    log.Named("hub"),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the loop has exited.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Send enqueues m unless the hub has stopped. It reports whether m was
// accepted.
func (h *Hub) Send(m HubMsg) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.done:
		return false
	}
}

// Stats asks the loop for the current counters.
func (h *Hub) Stats(ctx context.Context) (session.Stats, error) {
	reply := make(chan session.Stats, 1)
	if !h.Send(GetStats{Reply: reply}) {
		return session.Stats{}, context.Canceled
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return session.Stats{}, ctx.Err()
	case <-h.done:
		return session.Stats{}, context.Canceled
	}
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			if _, stop := m.(ShutdownHub); stop {
				h.cancel()
				return
			}
			h.handle(m)
		}
	}
}

func (h *Hub) handle(m HubMsg) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("handler panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	switch msg := m.(type) {
	case Connect:
		h.coord.Connect(msg.ConnID, msg.Out)

	case Disconnect:
		h.coord.Disconnect(msg.ConnID)

	case Inbound:
		h.coord.Dispatch(msg.ConnID, msg.Event, msg.Data)

	case GetStats:
		msg.Reply <- h.coord.Stats()
	}
}
