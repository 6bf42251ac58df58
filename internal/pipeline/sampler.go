package pipeline

import (
	"time"

	"foodsense"
)

// AnalogSource reads one analog pin. Reads cannot fail: a disconnected
// sensor simply sits at or near a rail, which the startup probe detects.
type AnalogSource interface {
	Read(pin int) int
}

// Probe thresholds: a live gas sensor wanders by at least minVariation
// counts over a short burst and idles well away from both rails.
const (
	probeSamples  = 10
	minVariation  = 50
	minProbeMean  = 100
	maxProbeMean  = 3900
	defaultSettle = 50 * time.Millisecond
	probeSettle   = 100 * time.Millisecond
)

// Sampler reads all channels in fixed index order, one sample per channel
// per cycle, with a settle delay between reads.
type Sampler struct {
	src      AnalogSource
	channels []foodsense.Channel
	settle   time.Duration
	sleep    func(time.Duration)

	// disabled[i] is set by Probe for channels classified as disconnected;
	// they report 0 for the rest of the process and are never re-probed.
	disabled []bool
}

func NewSampler(src AnalogSource, channels []foodsense.Channel, settle time.Duration) *Sampler {
	if settle <= 0 {
		settle = defaultSettle
	}
	return &Sampler{
		src:      src,
		channels: channels,
		settle:   settle,
		sleep:    time.Sleep,
		disabled: make([]bool, len(channels)),
	}
}

// Channels returns the fixed channel descriptors in read order.
func (s *Sampler) Channels() []foodsense.Channel { return s.channels }

// Sample performs one round-robin pass and returns one raw value per
// channel, in channel order.
func (s *Sampler) Sample() []int {
	raws := make([]int, len(s.channels))
	for i, ch := range s.channels {
		if s.disabled[i] {
			raws[i] = 0
		} else {
			raws[i] = s.src.Read(ch.Pin)
		}
		if i < len(s.channels)-1 {
			s.sleep(s.settle)
		}
	}
	return raws
}

// Probe takes a burst of samples per channel at startup and disables any
// channel that looks disconnected. A channel is kept iff its burst varied
// by at least minVariation counts and averaged inside (minProbeMean,
// maxProbeMean). Returns the per-channel connected flags.
func (s *Sampler) Probe() []bool {
	connected := make([]bool, len(s.channels))
	for i, ch := range s.channels {
		burst := make([]int, probeSamples)
		for k := range burst {
			burst[k] = s.src.Read(ch.Pin)
			s.sleep(probeSettle)
		}
		connected[i] = classifyBurst(burst)
		s.disabled[i] = !connected[i]
	}
	return connected
}

// classifyBurst reports whether a burst of raw samples looks like a live
// sensor.
func classifyBurst(burst []int) bool {
	if len(burst) == 0 {
		return false
	}
	min, max, sum := burst[0], burst[0], 0
	for _, v := range burst {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	variation := max - min
	average := float64(sum) / float64(len(burst))
	return variation >= minVariation && average > minProbeMean && average < maxProbeMean
}
