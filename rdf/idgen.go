package rdf

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces fresh local names for reification contexts.
type IDGenerator interface {
	Next() string
}

// CounterGenerator yields prefix1, prefix2, ... and is the deterministic
// default.
type CounterGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCounterGenerator creates a counter starting at 1.
func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{prefix: prefix}
}

// Next returns the next name.
func (g *CounterGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return g.prefix + strconv.Itoa(g.n)
}

// SeededGenerator yields pseudo-random base-36 names from a fixed seed, so
// two generators with the same seed produce the same sequence.
type SeededGenerator struct {
	mu     sync.Mutex
	prefix string
	rng    *rand.Rand
}

// NewSeededGenerator creates a generator from seed.
func NewSeededGenerator(prefix string, seed int64) *SeededGenerator {
	return &SeededGenerator{prefix: prefix, rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next name.
func (g *SeededGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prefix + strconv.FormatUint(g.rng.Uint64(), 36)
}

// UUIDGenerator yields random UUID-based names. Output is not reproducible.
type UUIDGenerator struct {
	prefix string
}

// NewUUIDGenerator creates a UUID generator.
func NewUUIDGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Next returns the next name.
func (g *UUIDGenerator) Next() string {
	return g.prefix + uuid.NewString()
}

// GeneratorKind names an IDGenerator implementation in configuration.
type GeneratorKind string

// Generator kinds.
const (
	GeneratorCounter GeneratorKind = "counter"
	GeneratorSeeded  GeneratorKind = "seeded"
	GeneratorUUID    GeneratorKind = "uuid"
)

// NewGenerator builds a generator by kind. Seed is only used by the seeded
// generator.
func NewGenerator(kind GeneratorKind, prefix string, seed int64) (IDGenerator, error) {
	switch kind {
	case GeneratorCounter, "":
		return NewCounterGenerator(prefix), nil
	case GeneratorSeeded:
		return NewSeededGenerator(prefix, seed), nil
	case GeneratorUUID:
		return NewUUIDGenerator(prefix), nil
	default:
		return nil, fmt.Errorf("unknown id generator %q (valid: counter, seeded, uuid)", kind)
	}
}
