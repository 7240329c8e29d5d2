package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/party-sync/internal/hub"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

const (
	readLimit    = 64 << 10
	writeTimeout = 5 * time.Second
)

type Options struct {
	OriginPatterns []string
	OutboxLimit    int
	PingInterval   time.Duration
}

type Handler struct {
	hub  *hub.Hub
	log  *zap.Logger
	opts Options
}

func NewHandler(h *hub.Hub, log *zap.Logger, opts Options) *Handler {
	if opts.OutboxLimit <= 0 {
		opts.OutboxLimit = 512
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 25 * time.Second
	}
	return &Handler{hub: h, log: log.Named("ws"), opts: opts}
}

// ServeHTTP upgrades the request and pumps frames between the socket and
// the hub until either side goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.opts.OriginPatterns,
	})
	if err != nil {
		h.log.Debug("accept failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	id := uuid.NewString()
	log := h.log.With(zap.String("conn", id))
	out := NewOutbox(h.opts.OutboxLimit, log)

	if !h.hub.Send(hub.Connect{ConnID: id, Out: out}) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer func() {
		out.Close()
		h.hub.Send(hub.Disconnect{ConnID: id})
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Hijacked sockets outlive http.Server.Shutdown; tie them to the hub.
	go func() {
		select {
		case <-h.hub.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	go h.writeLoop(ctx, cancel, conn, out, log)
	go h.pingLoop(ctx, cancel, conn)

	status := h.readLoop(ctx, conn, id, log)
	select {
	case <-h.hub.Done():
		status = websocket.StatusGoingAway
	default:
	}
	conn.Close(status, "")
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, id string, log *zap.Logger) websocket.StatusCode {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					log.Debug("read ended", zap.Error(err))
				}
			}
			return websocket.StatusNormalClosure
		}
		if typ != websocket.MessageText {
			continue
		}

		var env types.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			log.Debug("bad frame", zap.Int("bytes", len(data)))
			continue
		}
		if !h.hub.Send(hub.Inbound{ConnID: id, Event: env.Event, Data: env.Data}) {
			return websocket.StatusGoingAway
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out *Outbox, log *zap.Logger) {
	defer cancel()
	for {
		frame, err := out.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrOutboxOverflow) {
				conn.Close(websocket.StatusPolicyViolation, "client too slow")
			}
			return
		}
		wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(wctx, websocket.MessageText, frame)
		wcancel()
		if err != nil {
			log.Debug("write failed", zap.Error(err))
			return
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				cancel()
				return
			}
		}
	}
}
