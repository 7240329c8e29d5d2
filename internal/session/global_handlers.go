package session

import (
	"encoding/json"

	"github.com/DoyleJ11/party-sync/internal/sanitize"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

// Chat is global, not party-scoped.
func handleChat(c *Coordinator, conn *Conn, data json.RawMessage) {
	short := conn.ID
	if len(short) > 5 {
		short = short[:5]
	}
	c.broadcastAll(types.EvtChat, types.Chat{
		ID:   short,
		Name: conn.Name,
		Msg:  sanitize.Chat(data),
		T:    c.now().UnixMilli(),
	})
}

func handlePingCheck(_ *Coordinator, conn *Conn, data json.RawMessage) {
	conn.send(types.EvtPongCheck, data)
}
