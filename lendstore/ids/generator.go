package ids

import "math/rand/v2"

// Source yields uniformly distributed 32-bit values.
type Source func() uint32

// Generator mints identifiers that are unused and never below MinID.
type Generator struct {
	source Source
}

// NewGenerator creates a generator drawing from source, or from math/rand/v2 when source is
// nil.
func NewGenerator(source Source) *Generator {
	if source == nil {
		source = rand.Uint32
	}
	return &Generator{source: source}
}

// Mint draws values until one is at least MinID and not reported live by taken. There is no
// retry bound: with a 32-bit space a long run of collisions does not happen in practice.
func (g *Generator) Mint(taken func(ID) bool) ID {
	for {
		id := ID(g.source())
		if id < MinID {
			continue
		}
		if taken != nil && taken(id) {
			continue
		}
		return id
	}
}
