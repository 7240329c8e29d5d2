package types

import "encoding/json"

// Every frame on the wire, in either direction, is an Envelope.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client -> Server
const (
	EvtIdentitySet  = "identity:set"
	EvtPartyCreate  = "party:create"
	EvtPartyJoin    = "party:join"
	EvtPartyLeave   = "party:leave"
	EvtPartyReady   = "party:ready"
	EvtPartySync    = "party:sync"
	EvtStateUpdate  = "state:update"
	EvtStateRequest = "state:request"
	EvtMatchRequest = "match:request"
	EvtMatchGet     = "match:get"
	EvtChat         = "chat"
	EvtPingCheck    = "pingcheck"
)

// Server -> Client
const (
	EvtPresence     = "presence"
	EvtPongCheck    = "pongcheck"
	EvtPartyUpdate  = "party:update"
	EvtPartyCreated = "party:created"
	EvtPartyJoined  = "party:joined"
	EvtPartyError   = "party:error"
	EvtIdentityAck  = "identity:ack"
	EvtStateBulk    = "state:bulk"
	EvtStateDelta   = "state:delta"
	EvtStateRemove  = "state:remove"
	EvtMatchSeed    = "match:seed"
	EvtMatchSeedAck = "match:seed:ack"
)

// Inbound payloads keep loosely typed fields as raw JSON; the sanitize
// package decides what survives.

type NameRequest struct {
	Name json.RawMessage `json:"name,omitempty"`
}

type JoinRequest struct {
	Code json.RawMessage `json:"code,omitempty"`
	Name json.RawMessage `json:"name,omitempty"`
}

type ReadyRequest struct {
	Ready json.RawMessage `json:"ready,omitempty"`
}

type MatchRequest struct {
	RequestID json.RawMessage `json:"requestId,omitempty"`
}

// Outbound payloads

type Presence struct {
	Online int `json:"online"`
}

type Chat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
	T    int64  `json:"t"`
}

type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// PartyUpdate is the full party view. Code and HostID are null when the
// receiving connection is not in a party.
type PartyUpdate struct {
	Code      *string  `json:"code"`
	HostID    *string  `json:"hostId"`
	Members   []Member `json:"members"`
	MaxSize   int      `json:"maxSize"`
	CreatedAt int64    `json:"createdAt,omitempty"`
}

type PartyCode struct {
	Code string `json:"code"`
}

type PartyError struct {
	Message string `json:"message"`
}

type IdentityAck struct {
	Name string `json:"name"`
}

type StateRemove struct {
	ID string `json:"id"`
}

type MatchSeed struct {
	Seed     string `json:"seed"`
	Counter  int    `json:"counter"`
	IssuedAt int64  `json:"issuedAt"`
	By       string `json:"by"`
}

// MatchSeedAck is unicast to the requester; RequestID is echoed verbatim.
type MatchSeedAck struct {
	RequestID json.RawMessage `json:"requestId"`
	MatchSeed
}
