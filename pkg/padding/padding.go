// Package padding generates the filler bytes written into alignment gaps and
// padding blocks.
package padding

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// Policy fills a region of a buffer that is being written as filler.
//
// On entry region already holds whatever bytes currently occupy that range
// of the destination, so a policy that leaves it alone reproduces stale
// scratch memory the way the game itself does.
type Policy interface {
	Fill(region []byte)
	Name() string
}

// Generate returns n filler bytes from p, starting from an all-zero region.
func Generate(p Policy, n int) []byte {
	out := make([]byte, n)
	if p != nil {
		p.Fill(out)
	}
	return out
}

type echoPolicy struct{}

func (echoPolicy) Fill([]byte)  {}
func (echoPolicy) Name() string { return "echo" }

type zeroPolicy struct{}

func (zeroPolicy) Fill(region []byte) { clear(region) }
func (zeroPolicy) Name() string       { return "zero" }

var (
	// Echo keeps the bytes already present in the region.
	Echo Policy = echoPolicy{}
	// Zero clears the region.
	Zero Policy = zeroPolicy{}
)

// Pattern cycles a caller-supplied byte sequence across the region. The cycle
// restarts at the start of every region. An empty pattern behaves like Zero.
type Pattern []byte

func (p Pattern) Fill(region []byte) {
	if len(p) == 0 {
		clear(region)
		return
	}
	for i := range region {
		region[i] = p[i%len(p)]
	}
}

func (p Pattern) Name() string { return "pattern" }

// Random fills regions from a seeded PCG source. It is safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) Fill(region []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < len(region); i += 8 {
		v := r.rng.Uint64()
		for j := 0; j < 8 && i+j < len(region); j++ {
			region[i+j] = byte(v >> (8 * j))
		}
	}
}

func (r *Random) Name() string { return "random" }

// Parse builds a policy from its configuration name. pattern is a hex string
// and is only consulted for the "pattern" policy.
func Parse(name, pattern string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "echo":
		return Echo, nil
	case "zero", "zeros":
		return Zero, nil
	case "pattern":
		raw, err := hex.DecodeString(strings.ReplaceAll(pattern, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("padding: invalid pattern %q: %w", pattern, err)
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("padding: pattern policy needs a non-empty pattern")
		}
		return Pattern(raw), nil
	case "random":
		return NewRandom(rand.Uint64()), nil
	default:
		return nil, fmt.Errorf("padding: unknown policy %q", name)
	}
}
