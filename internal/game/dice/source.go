// Package dice provides the randomness abstraction for the arena combat engine.
//
// Every probabilistic rule (proc chances, dodge rolls, damage variance, AI jitter,
// initiative tie-breaks) draws from an injected Source so that a fixed seed
// reproduces a combat exactly.
package dice

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source is the randomness provider for combat rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in their range.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure random float in [0, 1).
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	// 53 random mantissa bits.
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// SeededSource is a deterministic Source whose full generator state can be
// captured and restored, so a suspended combat resumes on the same stream.
type SeededSource struct {
	mu  sync.Mutex
	pcg *mrand.PCG
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source seeded with seed.
//
// Postcondition: two sources built from the same seed produce identical streams.
func NewSeededSource(seed uint64) *SeededSource {
	pcg := mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &SeededSource{pcg: pcg, rng: mrand.New(pcg)}
}

// Intn returns a deterministic int in [0, n).
//
// Precondition: n > 0.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Float64 returns a deterministic float in [0, 1).
func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// MarshalBinary captures the generator state.
func (s *SeededSource) MarshalBinary() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pcg.MarshalBinary()
}

// UnmarshalBinary restores a state captured by MarshalBinary.
//
// Postcondition: on success the source continues the captured stream.
func (s *SeededSource) UnmarshalBinary(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pcg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("dice: restoring seeded source: %w", err)
	}
	return nil
}

// ScriptedSource replays fixed sequences of values, cycling when exhausted.
// It is intended for scenario tests that need exact control over every roll.
type ScriptedSource struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
	ii, fi int
}

// NewScriptedSource returns a Source that yields ints and floats in order.
//
// Precondition: every float must be in [0, 1).
// Postcondition: an empty ints slice yields 0; an empty floats slice yields 0.
func NewScriptedSource(ints []int, floats []float64) *ScriptedSource {
	for _, f := range floats {
		if f < 0 || f >= 1 {
			panic(fmt.Sprintf("dice: scripted float %v outside [0, 1)", f))
		}
	}
	return &ScriptedSource{ints: ints, floats: floats}
}

// Intn returns the next scripted int reduced modulo n.
func (s *ScriptedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float.
func (s *ScriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}
