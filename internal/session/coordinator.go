// Package session holds the per-connection state machine and every
// inbound event handler. A Coordinator is not safe for concurrent use:
// the hub package feeds it from a single goroutine so each handler runs
// to completion before the next one starts.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/party-sync/internal/ledger"
	"github.com/DoyleJ11/party-sync/internal/party"
	"github.com/DoyleJ11/party-sync/internal/sanitize"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

type handlerFunc func(c *Coordinator, conn *Conn, data json.RawMessage)

var handlers = map[string]handlerFunc{
	types.EvtIdentitySet:  handleIdentitySet,
	types.EvtPartyCreate:  handlePartyCreate,
	types.EvtPartyJoin:    handlePartyJoin,
	types.EvtPartyLeave:   handlePartyLeave,
	types.EvtPartyReady:   handlePartyReady,
	types.EvtPartySync:    handlePartySync,
	types.EvtStateUpdate:  handleStateUpdate,
	types.EvtStateRequest: handleStateRequest,
	types.EvtMatchRequest: handleMatchRequest,
	types.EvtMatchGet:     handleMatchGet,
	types.EvtChat:         handleChat,
	types.EvtPingCheck:    handlePingCheck,
}

type Coordinator struct {
	registry *party.Registry
	conns    map[string]*Conn
	rooms    map[string]map[string]struct{} // party code -> subscribed conn ids
	log      *zap.Logger
	ledger   ledger.Recorder
	now      func() time.Time
	newSeed  func() string
}

type Option func(*Coordinator)

func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

func WithLedger(r ledger.Recorder) Option {
	return func(c *Coordinator) { c.ledger = r }
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithSeedSource replaces the uuid generator used for match seeds.
func WithSeedSource(fn func() string) Option {
	return func(c *Coordinator) { c.newSeed = fn }
}

func New(registry *party.Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: registry,
		conns:    make(map[string]*Conn),
		rooms:    make(map[string]map[string]struct{}),
		log:      zap.NewNop(),
		ledger:   ledger.Nop{},
		now:      time.Now,
		newSeed:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Stats struct {
	Online  int `json:"online"`
	Parties int `json:"parties"`
}

func (c *Coordinator) Stats() Stats {
	return Stats{Online: len(c.conns), Parties: c.registry.Len()}
}

// Conn returns the live connection record for id.
func (c *Coordinator) Conn(id string) (*Conn, bool) {
	conn, ok := c.conns[id]
	return conn, ok
}

// Connect registers a new client and announces the new online count.
func (c *Coordinator) Connect(id string, out Sender) *Conn {
	if old, ok := c.conns[id]; ok {
		c.log.Warn("duplicate connection id, replacing", zap.String("conn", id))
		c.Disconnect(old.ID)
	}
	conn := newConn(id, out)
	conn.moveTo(StateIdle, "")
	c.conns[id] = conn
	c.log.Debug("connected", zap.String("conn", id), zap.Int("online", len(c.conns)))
	c.broadcastAll(types.EvtPresence, types.Presence{Online: len(c.conns)})
	return conn
}

// Disconnect behaves like party:leave without notifying the departed
// client, then forgets the connection.
func (c *Coordinator) Disconnect(id string) {
	conn, ok := c.conns[id]
	if !ok {
		return
	}
	c.leave(conn, false)
	conn.moveTo(StateDisconnected, "")
	delete(c.conns, id)
	c.log.Debug("disconnected", zap.String("conn", id), zap.Int("online", len(c.conns)))
	c.broadcastAll(types.EvtPresence, types.Presence{Online: len(c.conns)})
}

// Dispatch routes one inbound event from connection id.
func (c *Coordinator) Dispatch(id, event string, data json.RawMessage) {
	conn, ok := c.conns[id]
	if !ok {
		c.log.Debug("event from unknown connection", zap.String("conn", id), zap.String("event", event))
		return
	}
	h, ok := handlers[event]
	if !ok {
		c.log.Debug("unknown event", zap.String("conn", id), zap.String("event", event))
		return
	}
	h(c, conn, data)
}

// currentParty resolves the party a connection belongs to, if any.
func (c *Coordinator) currentParty(conn *Conn) (*party.Party, bool) {
	if conn.State() != StateInParty {
		return nil, false
	}
	return c.registry.Get(conn.PartyCode())
}

// ensureName adopts raw as the display name when it sanitizes to
// something non-empty and returns the name in effect.
func (c *Coordinator) ensureName(conn *Conn, raw json.RawMessage) string {
	if name := sanitize.Name(raw); name != "" {
		conn.Name = name
	}
	return conn.Name
}

func (c *Coordinator) fail(conn *Conn, err error) {
	conn.send(types.EvtPartyError, types.PartyError{Message: errorMessage(err)})
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, sanitize.ErrEmptyName):
		return "Name must be at least one character."
	case errors.Is(err, party.ErrInvalidCode):
		return "Enter a valid party code."
	case errors.Is(err, party.ErrNotFound):
		return "Party not found."
	case errors.Is(err, party.ErrFull):
		return "Party is full."
	case errors.Is(err, party.ErrNotInParty):
		return "You are not in a party."
	case errors.Is(err, party.ErrMemberNotFound):
		return "Member not found in party."
	default:
		return "Something went wrong."
	}
}

func (c *Coordinator) record(e ledger.Entry) {
	e.At = c.now()
	c.ledger.Record(e)
}

// decode unmarshals an inbound payload; anything that is not the expected
// object shape leaves v at its zero value.
func decode(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}
