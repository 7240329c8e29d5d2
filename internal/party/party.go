package party

import (
	"slices"
	"time"

	"github.com/DoyleJ11/party-sync/pkg/types"
)

type Member struct {
	ID    string
	Name  string
	Ready bool
}

// Match holds the party's seed counter and the highest-counter payload
// issued so far. Counter is 0 and Latest nil until the first request.
type Match struct {
	Counter int
	Latest  *types.MatchSeed
}

// Party is one live group of connections. It is not safe for concurrent
// use; callers serialise access (see the hub package).
type Party struct {
	Code      string
	HostID    string
	CreatedAt time.Time

	maxSize int
	members map[string]*Member
	order   []string // join order; drives host migration
	states  *StateCache
	match   Match
	now     func() time.Time
}

func newParty(code string, maxSize int, ttl time.Duration, now func() time.Time) *Party {
	return &Party{
		Code:      code,
		CreatedAt: now(),
		maxSize:   maxSize,
		members:   make(map[string]*Member),
		states:    NewStateCache(ttl, now),
		now:       now,
	}
}

func (p *Party) Len() int     { return len(p.order) }
func (p *Party) MaxSize() int { return p.maxSize }
func (p *Party) Empty() bool  { return len(p.order) == 0 }

func (p *Party) Has(id string) bool {
	_, ok := p.members[id]
	return ok
}

func (p *Party) Member(id string) (Member, bool) {
	m, ok := p.members[id]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Members returns a copy of the member list in join order.
func (p *Party) Members() []Member {
	out := make([]Member, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.members[id])
	}
	return out
}

// Join adds id as a member, or refreshes it if already present. Either
// way the member's ready flag is cleared. A party at capacity only
// rejects newcomers.
func (p *Party) Join(id, name string) error {
	if m, ok := p.members[id]; ok {
		m.Name = name
		m.Ready = false
		return nil
	}
	if len(p.order) >= p.maxSize {
		return ErrFull
	}
	p.members[id] = &Member{ID: id, Name: name}
	p.order = append(p.order, id)
	if p.HostID == "" {
		p.HostID = id
	}
	return nil
}

// CanJoin reports whether Join(id, ...) would succeed.
func (p *Party) CanJoin(id string) error {
	if p.Has(id) || len(p.order) < p.maxSize {
		return nil
	}
	return ErrFull
}

// Remove drops the member and its cached state. When the host leaves,
// authority moves to the earliest-joined remaining member. It returns
// whether the host changed.
func (p *Party) Remove(id string) (hostChanged bool) {
	if _, ok := p.members[id]; !ok {
		return false
	}
	delete(p.members, id)
	p.order = slices.DeleteFunc(p.order, func(m string) bool { return m == id })
	p.states.Delete(id)

	if p.HostID != id {
		return false
	}
	if len(p.order) == 0 {
		p.HostID = ""
	} else {
		p.HostID = p.order[0]
	}
	return true
}

func (p *Party) SetReady(id string, ready bool) error {
	m, ok := p.members[id]
	if !ok {
		return ErrMemberNotFound
	}
	m.Ready = ready
	return nil
}

// Rename updates a member's display name; it reports false for strangers.
func (p *Party) Rename(id, name string) bool {
	m, ok := p.members[id]
	if !ok {
		return false
	}
	m.Name = name
	return true
}

func (p *Party) States() *StateCache { return p.states }

// IssueSeed bumps the match counter and records the new payload as the
// latest seed.
func (p *Party) IssueSeed(seed, by string) types.MatchSeed {
	p.match.Counter++
	payload := types.MatchSeed{
		Seed:     seed,
		Counter:  p.match.Counter,
		IssuedAt: p.now().UnixMilli(),
		By:       by,
	}
	p.match.Latest = &payload
	return payload
}

func (p *Party) LatestSeed() (types.MatchSeed, bool) {
	if p.match.Latest == nil {
		return types.MatchSeed{}, false
	}
	return *p.match.Latest, true
}

// View renders the party as sent in party:update.
func (p *Party) View() types.PartyUpdate {
	code, host := p.Code, p.HostID
	members := make([]types.Member, 0, len(p.order))
	for _, m := range p.Members() {
		members = append(members, types.Member{ID: m.ID, Name: m.Name, Ready: m.Ready})
	}
	return types.PartyUpdate{
		Code:      &code,
		HostID:    &host,
		Members:   members,
		MaxSize:   p.maxSize,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

// EmptyView is the party:update sent to a connection outside any party.
func EmptyView(maxSize int) types.PartyUpdate {
	return types.PartyUpdate{Members: []types.Member{}, MaxSize: maxSize}
}
