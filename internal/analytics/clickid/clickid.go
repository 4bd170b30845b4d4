// Package clickid generates click event identifiers.
//
// An id is the current Unix time in seconds multiplied by 1000 plus a random
// value in [0, 1000). Two events in the same second collide with probability
// 1/1000 per pair and the event table does not enforce uniqueness. This is a
// known, unresolved risk; the scheme is kept so ids stay roughly time ordered.
package clickid

import (
	"math/rand/v2"
	"time"
)

const spread = 1000

// Generator produces ids. The zero value is not usable; use New.
type Generator struct {
	now  func() time.Time
	rand func(n uint64) uint64
}

type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithRand overrides the random source. fn must return a value in [0, n).
func WithRand(fn func(n uint64) uint64) Option {
	return func(g *Generator) {
		g.rand = fn
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rand: rand.Uint64N,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// NextID is safe for concurrent use: it shares nothing but the clock and the
// goroutine-safe global random source.
func (g *Generator) NextID() uint64 {
	return uint64(g.now().Unix())*spread + g.rand(spread)
}

// Seconds returns the timestamp component of id.
func Seconds(id uint64) int64 {
	return int64(id / spread)
}

var defaultGenerator = New()

// NextID generates an id with the default clock and random source.
func NextID() uint64 {
	return defaultGenerator.NextID()
}
