package party

import (
	"slices"
	"strings"
	"time"

	"github.com/DoyleJ11/party-sync/pkg/types"
)

const StateTTL = 15 * time.Second

// StateCache keeps the last snapshot per member. Expired entries are
// purged lazily by every read accessor rather than by a timer, so a stale
// snapshot lingers in memory until the next read but is never returned.
type StateCache struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]types.PlayerState
}

func NewStateCache(ttl time.Duration, now func() time.Time) *StateCache {
	if now == nil {
		now = time.Now
	}
	return &StateCache{ttl: ttl, now: now, entries: make(map[string]types.PlayerState)}
}

// Put stamps st with the current time and replaces the snapshot for st.ID
// wholesale; fields absent from st do not carry over.
func (c *StateCache) Put(st types.PlayerState) types.PlayerState {
	st.UpdatedAt = c.now().UnixMilli()
	c.entries[st.ID] = st
	return st
}

func (c *StateCache) Delete(id string) {
	delete(c.entries, id)
}

// Get returns the live snapshot for id.
func (c *StateCache) Get(id string) (types.PlayerState, bool) {
	c.sweep()
	st, ok := c.entries[id]
	return st, ok
}

// ActiveExcept returns live snapshots other than id's own, ordered by id.
// An empty id returns every live snapshot.
func (c *StateCache) ActiveExcept(id string) []types.PlayerState {
	c.sweep()
	out := make([]types.PlayerState, 0, len(c.entries))
	for key, st := range c.entries {
		if key == id {
			continue
		}
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b types.PlayerState) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (c *StateCache) sweep() {
	now := c.now().UnixMilli()
	ttl := c.ttl.Milliseconds()
	for id, st := range c.entries {
		if now-st.UpdatedAt > ttl {
			delete(c.entries, id)
		}
	}
}
