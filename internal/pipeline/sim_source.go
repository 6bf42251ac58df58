package pipeline

import (
	"math/rand"
	"sync"
)

// Drift tuning for the simulated sensors. Values wander around a per-pin
// baseline with bounded steps, the same shape a warmed-up MQ sensor shows.
const (
	simBaseline = 900
	simSpread   = 600
	simStep     = 40
	simFloor    = 60
	simCeiling  = LocalADCMax - 60
)

// SimSource is a software stand-in for the ADC: each pin performs a bounded
// random walk around its own baseline. Used on hosts without sensor
// hardware and throughout the tests.
type SimSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	state map[int]int
}

func NewSimSource(seed int64) *SimSource {
	return &SimSource{
		rng:   rand.New(rand.NewSource(seed)),
		state: make(map[int]int),
	}
}

func (s *SimSource) Read(pin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.state[pin]
	if !ok {
		v = simBaseline + s.rng.Intn(simSpread)
	}
	v += s.rng.Intn(2*simStep+1) - simStep
	if v < simFloor {
		v = simFloor
	}
	if v > simCeiling {
		v = simCeiling
	}
	s.state[pin] = v
	return v
}
