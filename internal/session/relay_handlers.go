package session

import (
	"encoding/json"

	"github.com/DoyleJ11/party-sync/internal/sanitize"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

// state:update and match:request fire from client loops, so precondition
// failures are dropped silently instead of answered with party:error.

func handleStateUpdate(c *Coordinator, conn *Conn, data json.RawMessage) {
	p, ok := c.currentParty(conn)
	if !ok {
		return
	}
	st, ok := sanitize.PlayerState(data)
	if !ok {
		return
	}
	st.ID = conn.ID
	st.Name = conn.Name
	st = p.States().Put(st)
	c.broadcastRoom(p.Code, types.EvtStateDelta, st, conn.ID)
}

func handleStateRequest(c *Coordinator, conn *Conn, _ json.RawMessage) {
	p, ok := c.currentParty(conn)
	if !ok {
		conn.send(types.EvtStateBulk, []types.PlayerState{})
		return
	}
	conn.send(types.EvtStateBulk, p.States().ActiveExcept(conn.ID))
}
