package cpu

import "math/rand/v2"

// Random is the byte source consumed by the random-AND instruction.
type Random interface {
	Byte() byte
}

type pcgRandom struct {
	rng *rand.Rand
}

// NewRandom returns a randomly seeded source.
func NewRandom() Random {
	return NewSeededRandom(rand.Uint64())
}

// NewSeededRandom returns a source that repeats for the same seed.
func NewSeededRandom(seed uint64) Random {
	return &pcgRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (r *pcgRandom) Byte() byte {
	return byte(r.rng.UintN(256))
}

// Sequence replays a fixed list of bytes, wrapping at the end. An empty
// sequence always yields zero.
type Sequence struct {
	Bytes []byte
	pos   int
}

func (s *Sequence) Byte() byte {
	if len(s.Bytes) == 0 {
		return 0
	}
	b := s.Bytes[s.pos%len(s.Bytes)]
	s.pos++
	return b
}
