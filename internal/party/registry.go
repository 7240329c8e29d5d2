package party

import (
	"crypto/rand"
	"math/big"
	"time"
)

// CodeAlphabet leaves out I, O, 0 and 1.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	DefaultMaxSize    = 4
	DefaultCodeLength = 4
)

// Registry owns every live party, keyed by code. Like Party it expects
// a single caller at a time.
type Registry struct {
	parties map[string]*Party
	maxSize int
	codeLen int
	ttl     time.Duration
	now     func() time.Time
	intn    func(n int) int
}

type Option func(*Registry)

func WithMaxSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxSize = n
		}
	}
}

func WithCodeLength(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.codeLen = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithStateTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// WithRand replaces the crypto/rand index source used for codes.
func WithRand(intn func(n int) int) Option {
	return func(r *Registry) { r.intn = intn }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		parties: make(map[string]*Party),
		maxSize: DefaultMaxSize,
		codeLen: DefaultCodeLength,
		ttl:     StateTTL,
		now:     time.Now,
		intn:    cryptoIntn,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) MaxSize() int    { return r.maxSize }
func (r *Registry) CodeLength() int { return r.codeLen }
func (r *Registry) Len() int        { return len(r.parties) }

// GenerateCode draws codes until one is not held by a live party.
func (r *Registry) GenerateCode() string {
	for {
		b := make([]byte, r.codeLen)
		for i := range b {
			b[i] = CodeAlphabet[r.intn(len(CodeAlphabet))]
		}
		code := string(b)
		if _, taken := r.parties[code]; !taken {
			return code
		}
	}
}

// Create registers a fresh party with hostID as its host and first member.
func (r *Registry) Create(hostID, hostName string) *Party {
	p := newParty(r.GenerateCode(), r.maxSize, r.ttl, r.now)
	p.HostID = hostID
	_ = p.Join(hostID, hostName) // an empty party always has room
	r.parties[p.Code] = p
	return p
}

func (r *Registry) Get(code string) (*Party, bool) {
	if code == "" {
		return nil, false
	}
	p, ok := r.parties[code]
	return p, ok
}

// RemoveIfEmpty drops p once its last member is gone. It must follow
// every member removal.
func (r *Registry) RemoveIfEmpty(p *Party) bool {
	if p == nil || !p.Empty() {
		return false
	}
	if r.parties[p.Code] == p {
		delete(r.parties, p.Code)
	}
	return true
}

func cryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("party: crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}
