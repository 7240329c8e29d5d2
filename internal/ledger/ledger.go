// Package ledger keeps an append-only audit trail of party lifecycle and
// issued match seeds. It is write-only: nothing in it is ever read back
// into live session state.
package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Kind string

const (
	KindPartyCreated   Kind = "party.created"
	KindPartyDissolved Kind = "party.dissolved"
	KindMatchSeed      Kind = "match.seed"
)

type Entry struct {
	Kind      Kind
	PartyCode string
	ConnID    string
	Counter   int
	Seed      string
	At        time.Time
}

// Recorder must never block the caller.
type Recorder interface {
	Record(Entry)
}

type Nop struct{}

func (Nop) Record(Entry) {}

// Store persists a batch of entries.
type Store interface {
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

const (
	defaultBuffer    = 1024
	defaultBatchSize = 64
	flushInterval    = 2 * time.Second
)

// Async buffers entries in memory and writes them to a Store from a single
// worker goroutine. Entries arriving while the buffer is full are dropped.
type Async struct {
	store  Store
	log    *zap.Logger
	in     chan Entry
	batch  int
	finish chan struct{}
}

func NewAsync(store Store, log *zap.Logger) *Async {
	return &Async{
		store:  store,
		log:    log.Named("ledger"),
		in:     make(chan Entry, defaultBuffer),
		batch:  defaultBatchSize,
		finish: make(chan struct{}),
	}
}

func (a *Async) Record(e Entry) {
	select {
	case a.in <- e:
	default:
		a.log.Warn("ledger buffer full, dropping entry",
			zap.String("kind", string(e.Kind)), zap.String("party", e.PartyCode))
	}
}

// Run drains the buffer until ctx is cancelled, then flushes what is left.
func (a *Async) Run(ctx context.Context) error {
	defer close(a.finish)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	pending := make([]Entry, 0, a.batch)
	flush := func(ctx context.Context) {
		if len(pending) == 0 {
			return
		}
		if err := a.store.Save(ctx, pending); err != nil {
			a.log.Error("ledger write failed", zap.Int("entries", len(pending)), zap.Error(err))
		}
		pending = pending[:0]
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-a.in:
					pending = append(pending, e)
				default:
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					flush(shutdownCtx)
					cancel()
					return nil
				}
			}
		case e := <-a.in:
			pending = append(pending, e)
			if len(pending) >= a.batch {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (a *Async) Done() <-chan struct{} { return a.finish }

func (a *Async) Close() error { return a.store.Close() }
