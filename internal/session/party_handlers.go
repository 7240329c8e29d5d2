package session

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/DoyleJ11/party-sync/internal/ledger"
	"github.com/DoyleJ11/party-sync/internal/party"
	"github.com/DoyleJ11/party-sync/internal/sanitize"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

func handleIdentitySet(c *Coordinator, conn *Conn, data json.RawMessage) {
	var req types.NameRequest
	decode(data, &req)

	name := sanitize.Name(req.Name)
	if name == "" {
		c.fail(conn, sanitize.ErrEmptyName)
		return
	}
	conn.Name = name
	if p, ok := c.currentParty(conn); ok && p.Rename(conn.ID, name) {
		c.broadcastParty(p)
	}
	conn.send(types.EvtIdentityAck, types.IdentityAck{Name: name})
}

func handlePartyCreate(c *Coordinator, conn *Conn, data json.RawMessage) {
	var req types.NameRequest
	decode(data, &req)

	name := c.ensureName(conn, req.Name)
	c.leave(conn, false)

	p := c.registry.Create(conn.ID, name)
	c.log.Info("party created", zap.String("party", p.Code), zap.String("host", conn.ID))
	c.record(ledger.Entry{Kind: ledger.KindPartyCreated, PartyCode: p.Code, ConnID: conn.ID})

	c.enter(conn, p)
	conn.send(types.EvtPartyJoined, types.PartyCode{Code: p.Code})
	c.broadcastParty(p)
	conn.send(types.EvtPartyCreated, types.PartyCode{Code: p.Code})
}

func handlePartyJoin(c *Coordinator, conn *Conn, data json.RawMessage) {
	var req types.JoinRequest
	decode(data, &req)

	code := sanitize.PartyCode(req.Code, c.registry.CodeLength())
	if code == "" {
		c.fail(conn, party.ErrInvalidCode)
		return
	}
	p, ok := c.registry.Get(code)
	if !ok {
		c.fail(conn, party.ErrNotFound)
		return
	}
	if err := p.CanJoin(conn.ID); err != nil {
		c.fail(conn, err)
		return
	}

	name := c.ensureName(conn, req.Name)
	if conn.PartyCode() != p.Code {
		c.leave(conn, false)
	}
	if err := p.Join(conn.ID, name); err != nil {
		c.fail(conn, err)
		return
	}
	c.enter(conn, p)

	conn.send(types.EvtPartyJoined, types.PartyCode{Code: p.Code})
	c.sendStates(conn, p)
	c.sendLatestSeed(conn, p)
	c.broadcastParty(p)
}

func handlePartyLeave(c *Coordinator, conn *Conn, _ json.RawMessage) {
	c.leave(conn, true)
}

func handlePartyReady(c *Coordinator, conn *Conn, data json.RawMessage) {
	var req types.ReadyRequest
	decode(data, &req)

	p, ok := c.currentParty(conn)
	if !ok {
		c.fail(conn, party.ErrNotInParty)
		return
	}
	if err := p.SetReady(conn.ID, sanitize.Truthy(req.Ready)); err != nil {
		c.fail(conn, err)
		return
	}
	c.broadcastParty(p)
}

// handlePartySync resends everything a reconnecting client needs, to that
// client only.
func handlePartySync(c *Coordinator, conn *Conn, _ json.RawMessage) {
	p, ok := c.currentParty(conn)
	if !ok {
		c.sendEmptyParty(conn)
		return
	}
	c.subscribe(conn, p.Code)
	conn.send(types.EvtPartyUpdate, p.View())
	c.sendStates(conn, p)
	c.sendLatestSeed(conn, p)
}

// enter moves conn into p's room. p must already list conn as a member.
func (c *Coordinator) enter(conn *Conn, p *party.Party) {
	if conn.State() != StateInParty {
		conn.enterParty(p.Code)
	}
	c.subscribe(conn, p.Code)
}

// leave removes conn from its party, migrating or dissolving as needed.
// notifySelf controls whether conn is told it is now party-less.
func (c *Coordinator) leave(conn *Conn, notifySelf bool) {
	if conn.State() != StateInParty {
		if notifySelf {
			c.sendEmptyParty(conn)
		}
		return
	}

	code := conn.PartyCode()
	conn.leaveParty()
	c.unsubscribe(conn.ID, code)

	if p, ok := c.registry.Get(code); ok {
		if p.Remove(conn.ID) && !p.Empty() {
			c.log.Info("host migrated", zap.String("party", code), zap.String("host", p.HostID))
		}
		c.broadcastRoom(code, types.EvtStateRemove, types.StateRemove{ID: conn.ID}, conn.ID)
		if c.registry.RemoveIfEmpty(p) {
			delete(c.rooms, code)
			c.log.Info("party dissolved", zap.String("party", code))
			c.record(ledger.Entry{Kind: ledger.KindPartyDissolved, PartyCode: code, ConnID: conn.ID})
		} else {
			c.broadcastParty(p)
		}
	}

	if notifySelf {
		c.sendEmptyParty(conn)
	}
}
