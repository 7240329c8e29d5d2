package party

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/party-sync/pkg/types"
)

// scriptedCodes makes the registry draw the given codes in order.
func scriptedCodes(codes ...string) func(int) int {
	var idx []int
	for _, c := range codes {
		for _, ch := range c {
			idx = append(idx, strings.IndexRune(CodeAlphabet, ch))
		}
	}
	return func(int) int {
		next := idx[0]
		idx = idx[1:]
		return next
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.UnixMilli(1_700_000_000_000)} }

func TestRegistry_CreateAssignsCodeAndHost(t *testing.T) {
	r := NewRegistry(WithRand(scriptedCodes("AB3K")))

	p := r.Create("host", "Host")

	assert.Equal(t, "AB3K", p.Code)
	assert.Equal(t, "host", p.HostID)
	assert.Equal(t, 1, p.Len())
	_, seeded := p.LatestSeed()
	assert.False(t, seeded)

	got, ok := r.Get("AB3K")
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestRegistry_GenerateCodeSkipsLiveCodes(t *testing.T) {
	r := NewRegistry(WithRand(scriptedCodes("AB3K", "AB3K", "ZZ22")))
	first := r.Create("a", "A")
	second := r.Create("b", "B")

	assert.Equal(t, "AB3K", first.Code)
	assert.Equal(t, "ZZ22", second.Code)
}

func TestRegistry_FreedCodeCanBeReused(t *testing.T) {
	r := NewRegistry(WithRand(scriptedCodes("AB3K", "AB3K")))
	p := r.Create("a", "A")
	p.Remove("a")
	require.True(t, r.RemoveIfEmpty(p))

	_, ok := r.Get("AB3K")
	assert.False(t, ok)
	assert.Equal(t, "AB3K", r.Create("b", "B").Code)
}

func TestRegistry_GetNeverCreates(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("NOPE")
	assert.False(t, ok)
	_, ok = r.Get("")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_GeneratedCodesUseAlphabet(t *testing.T) {
	r := NewRegistry(WithCodeLength(6))
	for i := 0; i < 50; i++ {
		code := r.GenerateCode()
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.Contains(t, CodeAlphabet, string(ch))
		}
	}
}

func TestParty_CapacityAndRefresh(t *testing.T) {
	r := NewRegistry(WithMaxSize(2))
	p := r.Create("a", "A")

	require.NoError(t, p.Join("b", "B"))
	assert.ErrorIs(t, p.Join("c", "C"), ErrFull)
	assert.ErrorIs(t, p.CanJoin("c"), ErrFull)

	require.NoError(t, p.SetReady("b", true))
	require.NoError(t, p.CanJoin("b"))
	require.NoError(t, p.Join("b", "Bee"))

	m, ok := p.Member("b")
	require.True(t, ok)
	assert.False(t, m.Ready)
	assert.Equal(t, "Bee", m.Name)
	assert.Equal(t, 2, p.Len())
}

func TestParty_HostMigratesToEarliestMember(t *testing.T) {
	r := NewRegistry()
	p := r.Create("a", "A")
	require.NoError(t, p.Join("b", "B"))
	require.NoError(t, p.Join("c", "C"))

	assert.False(t, p.Remove("b"))
	assert.Equal(t, "a", p.HostID)

	assert.True(t, p.Remove("a"))
	assert.Equal(t, "c", p.HostID)

	assert.True(t, p.Remove("c"))
	assert.Equal(t, "", p.HostID)
	assert.True(t, r.RemoveIfEmpty(p))
	assert.Equal(t, 0, r.Len())
}

func TestParty_SetReadyUnknownMember(t *testing.T) {
	p := NewRegistry().Create("a", "A")
	assert.ErrorIs(t, p.SetReady("ghost", true), ErrMemberNotFound)
}

// Random join/leave churn must never break the size and host invariants.
func TestParty_InvariantsUnderChurn(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := NewRegistry(WithMaxSize(4))
	p := r.Create("m0", "m0")

	for step := 0; step < 2000; step++ {
		id := fmt.Sprintf("m%d", rng.Intn(8))
		if rng.Intn(2) == 0 {
			_ = p.Join(id, id)
		} else {
			p.Remove(id)
		}

		require.LessOrEqual(t, p.Len(), 4)
		if p.Empty() {
			require.Equal(t, "", p.HostID)
			_ = p.Join(id, id)
		}
		require.True(t, p.Has(p.HostID), "host %q must be a member", p.HostID)
	}
}

func TestParty_IssueSeedIsMonotonic(t *testing.T) {
	clock := newClock()
	p := NewRegistry(WithClock(clock.Now)).Create("a", "A")

	_, ok := p.LatestSeed()
	assert.False(t, ok)

	prev := 0
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		seed := p.IssueSeed(fmt.Sprintf("seed-%d", i), "a")
		assert.Greater(t, seed.Counter, prev)
		assert.Equal(t, clock.Now().UnixMilli(), seed.IssuedAt)
		prev = seed.Counter

		latest, ok := p.LatestSeed()
		require.True(t, ok)
		assert.Equal(t, seed, latest)
	}
	latest, _ := p.LatestSeed()
	assert.Equal(t, 5, latest.Counter)
}

func TestParty_ViewIsStable(t *testing.T) {
	p := NewRegistry(WithRand(scriptedCodes("AB3K"))).Create("a", "A")
	require.NoError(t, p.Join("b", "B"))

	v1, v2 := p.View(), p.View()
	assert.Equal(t, v1, v2)
	assert.Equal(t, "AB3K", *v1.Code)
	assert.Equal(t, "a", *v1.HostID)
	assert.Equal(t, []types.Member{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, v1.Members)
	assert.Equal(t, DefaultMaxSize, v1.MaxSize)
}
