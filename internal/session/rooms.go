package session

import (
	"github.com/DoyleJ11/party-sync/internal/party"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

// Rooms mirror party membership as broadcast channels. Subscribing twice
// is a no-op.
func (c *Coordinator) subscribe(conn *Conn, code string) {
	room, ok := c.rooms[code]
	if !ok {
		room = make(map[string]struct{})
		c.rooms[code] = room
	}
	room[conn.ID] = struct{}{}
}

func (c *Coordinator) unsubscribe(id, code string) {
	room, ok := c.rooms[code]
	if !ok {
		return
	}
	delete(room, id)
	if len(room) == 0 {
		delete(c.rooms, code)
	}
}

// broadcastRoom sends to every subscriber of code except skip.
func (c *Coordinator) broadcastRoom(code, event string, payload any, skip string) {
	for id := range c.rooms[code] {
		if id == skip {
			continue
		}
		if conn, ok := c.conns[id]; ok {
			conn.send(event, payload)
		}
	}
}

func (c *Coordinator) broadcastAll(event string, payload any) {
	for _, conn := range c.conns {
		conn.send(event, payload)
	}
}

func (c *Coordinator) broadcastParty(p *party.Party) {
	c.broadcastRoom(p.Code, types.EvtPartyUpdate, p.View(), "")
}

func (c *Coordinator) sendEmptyParty(conn *Conn) {
	conn.send(types.EvtPartyUpdate, party.EmptyView(c.registry.MaxSize()))
}

// sendStates pushes the other members' live snapshots, skipping empty
// batches.
func (c *Coordinator) sendStates(conn *Conn, p *party.Party) {
	if states := p.States().ActiveExcept(conn.ID); len(states) > 0 {
		conn.send(types.EvtStateBulk, states)
	}
}

func (c *Coordinator) sendLatestSeed(conn *Conn, p *party.Party) {
	if seed, ok := p.LatestSeed(); ok {
		conn.send(types.EvtMatchSeed, seed)
	}
}
