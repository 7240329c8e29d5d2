package session

import "fmt"

// State is where a connection sits in its lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateIdle               // connected, not in a party
	StateInParty
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateIdle:
		return "idle"
	case StateInParty:
		return "in-party"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateDisconnected: {StateIdle},
	StateIdle:         {StateInParty, StateDisconnected},
	StateInParty:      {StateIdle, StateDisconnected},
}

// Sender delivers one outbound event to a client. Implementations must
// not block.
type Sender interface {
	Send(event string, payload any)
}

// Conn is the server-side record of one live client.
type Conn struct {
	ID   string
	Name string

	state     State
	partyCode string
	out       Sender
}

func newConn(id string, out Sender) *Conn {
	c := &Conn{ID: id, out: out}
	c.Name = DefaultName(id)
	return c
}

// DefaultName is the display name assigned on connect.
func DefaultName(id string) string {
	if len(id) > 5 {
		id = id[:5]
	}
	return "Player-" + id
}

func (c *Conn) State() State { return c.state }

// PartyCode is empty unless the connection is in a party.
func (c *Conn) PartyCode() string { return c.partyCode }

func (c *Conn) send(event string, payload any) { c.out.Send(event, payload) }

func (c *Conn) enterParty(code string) { c.moveTo(StateInParty, code) }
func (c *Conn) leaveParty()            { c.moveTo(StateIdle, "") }

func (c *Conn) moveTo(next State, code string) {
	if !allowed(c.state, next) {
		panic(fmt.Sprintf("session: illegal transition %s -> %s for %s", c.state, next, c.ID))
	}
	c.state = next
	c.partyCode = code
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
