package session

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/DoyleJ11/party-sync/internal/ledger"
	"github.com/DoyleJ11/party-sync/internal/sanitize"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

func handleMatchRequest(c *Coordinator, conn *Conn, data json.RawMessage) {
	p, ok := c.currentParty(conn)
	if !ok {
		return
	}
	var req types.MatchRequest
	decode(data, &req)

	seed := p.IssueSeed(c.newSeed(), conn.ID)
	c.log.Info("match seed issued",
		zap.String("party", p.Code), zap.Int("counter", seed.Counter), zap.String("by", conn.ID))
	c.record(ledger.Entry{
		Kind:      ledger.KindMatchSeed,
		PartyCode: p.Code,
		ConnID:    conn.ID,
		Counter:   seed.Counter,
		Seed:      seed.Seed,
	})

	c.broadcastRoom(p.Code, types.EvtMatchSeed, seed, "")
	if sanitize.Truthy(req.RequestID) {
		conn.send(types.EvtMatchSeedAck, types.MatchSeedAck{RequestID: req.RequestID, MatchSeed: seed})
	}
}

func handleMatchGet(c *Coordinator, conn *Conn, _ json.RawMessage) {
	if p, ok := c.currentParty(conn); ok {
		c.sendLatestSeed(conn, p)
	}
}
