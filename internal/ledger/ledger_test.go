package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memStore struct {
	mu      sync.Mutex
	entries []Entry
	closed  bool
}

func (m *memStore) Save(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

func (m *memStore) snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

func TestAsync_FlushesOnShutdown(t *testing.T) {
	store := &memStore{}
	a := NewAsync(store, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = a.Run(ctx) }()

	a.Record(Entry{Kind: KindPartyCreated, PartyCode: "AB3K", ConnID: "c1"})
	a.Record(Entry{Kind: KindMatchSeed, PartyCode: "AB3K", Counter: 1, Seed: "s"})
	cancel()

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatalf("ledger worker did not stop")
	}

	got := store.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, KindPartyCreated, got[0].Kind)
	assert.Equal(t, 1, got[1].Counter)

	require.NoError(t, a.Close())
	assert.True(t, store.closed)
}

func TestAsync_FlushesFullBatch(t *testing.T) {
	store := &memStore{}
	a := NewAsync(store, zaptest.NewLogger(t))
	a.batch = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()

	a.Record(Entry{Kind: KindPartyCreated, PartyCode: "A"})
	a.Record(Entry{Kind: KindPartyDissolved, PartyCode: "A"})

	require.Eventually(t, func() bool { return len(store.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestAsync_DropsWhenBufferFull(t *testing.T) {
	a := NewAsync(&memStore{}, zaptest.NewLogger(t))
	for i := 0; i < defaultBuffer+10; i++ {
		a.Record(Entry{Kind: KindMatchSeed})
	}
	assert.Len(t, a.in, defaultBuffer)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.Record(Entry{Kind: KindPartyCreated})
}
