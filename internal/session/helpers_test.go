package session

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/party-sync/internal/party"
	"github.com/DoyleJ11/party-sync/pkg/types"
)

type sent struct {
	Event   string
	Payload any
}

// recorder is a Sender that keeps everything it was asked to send.
type recorder struct {
	msgs []sent
}

func (r *recorder) Send(event string, payload any) {
	r.msgs = append(r.msgs, sent{Event: event, Payload: payload})
}

func (r *recorder) events() []string {
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Event)
	}
	return out
}

// last returns the payload of the most recent event with the given name.
func (r *recorder) last(t *testing.T, event string) any {
	t.Helper()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if r.msgs[i].Event == event {
			return r.msgs[i].Payload
		}
	}
	t.Fatalf("no %q event in %v", event, r.events())
	return nil
}

func (r *recorder) count(event string) int {
	n := 0
	for _, m := range r.msgs {
		if m.Event == event {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.msgs = nil }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func scriptedCodes(codes ...string) func(int) int {
	var idx []int
	for _, c := range codes {
		for _, ch := range c {
			idx = append(idx, strings.IndexRune(party.CodeAlphabet, ch))
		}
	}
	return func(int) int {
		next := idx[0]
		idx = idx[1:]
		return next
	}
}

type fixture struct {
	c     *Coordinator
	clock *fakeClock
	seeds int
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()
	f := &fixture{clock: &fakeClock{t: time.UnixMilli(1_700_000_000_000)}}
	opts := []party.Option{party.WithClock(f.clock.Now)}
	if len(codes) > 0 {
		opts = append(opts, party.WithRand(scriptedCodes(codes...)))
	}
	f.c = New(party.NewRegistry(opts...),
		WithClock(f.clock.Now),
		WithSeedSource(func() string {
			f.seeds++
			return "seed-" + string(rune('0'+f.seeds))
		}),
	)
	return f
}

func (f *fixture) connect(id string) *recorder {
	r := &recorder{}
	f.c.Connect(id, r)
	return r
}

func (f *fixture) send(t *testing.T, id, event string, payload any) {
	t.Helper()
	var data json.RawMessage
	switch p := payload.(type) {
	case nil:
	case string:
		data = json.RawMessage(p)
	default:
		b, err := json.Marshal(p)
		require.NoError(t, err)
		data = b
	}
	f.c.Dispatch(id, event, data)
}

func partyUpdate(t *testing.T, r *recorder) types.PartyUpdate {
	t.Helper()
	return r.last(t, types.EvtPartyUpdate).(types.PartyUpdate)
}

func memberIDs(u types.PartyUpdate) []string {
	out := make([]string, 0, len(u.Members))
	for _, m := range u.Members {
		out = append(out, m.ID)
	}
	return out
}
