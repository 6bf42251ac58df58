package pipeline

import (
	"context"
	"errors"
	"time"

	"foodsense/internal/logger"
)

const defaultCycle = 2 * time.Second

// Agent is the device-side pipeline: connectivity check, one sampling pass,
// normalization, transport send, prediction-cache update, display refresh.
// One iteration per cycle tick, no preemption within an iteration.
type Agent struct {
	sampler   *Sampler
	transport Transport
	guard     *Guard // nil in serial-only deployments
	cache     *PredictionCache
	display   Display
	watchdog  *Watchdog
	log       *logger.Logger
	cycle     time.Duration
	probe     bool
}

// AgentConfig collects the per-deployment knobs; the zero values of Guard
// and Probe select the simplest variant.
type AgentConfig struct {
	Cycle time.Duration
	Probe bool // run the startup sensor-connectivity classifier
}

func NewAgent(sampler *Sampler, transport Transport, guard *Guard, display Display,
	watchdog *Watchdog, log *logger.Logger, cfg AgentConfig) *Agent {
	cycle := cfg.Cycle
	if cycle <= 0 {
		cycle = defaultCycle
	}
	return &Agent{
		sampler:   sampler,
		transport: transport,
		guard:     guard,
		cache:     NewPredictionCache(),
		display:   display,
		watchdog:  watchdog,
		log:       log,
		cycle:     cycle,
		probe:     cfg.Probe,
	}
}

// Cache exposes the prediction cache to embedding callers.
func (a *Agent) Cache() *PredictionCache { return a.cache }

// Run executes the pipeline until ctx is canceled.
func (a *Agent) Run(ctx context.Context) {
	if a.probe {
		connected := a.sampler.Probe()
		for i, ch := range a.sampler.Channels() {
			a.log.Infow("channel_probed", "label", ch.Label, "pin", ch.Pin, "connected", connected[i])
		}
	}

	if a.watchdog != nil {
		go a.watchdog.Run(ctx)
	}

	t := time.NewTicker(a.cycle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.cycleOnce(ctx)
		}
	}
}

// cycleOnce is one pipeline iteration.
func (a *Agent) cycleOnce(ctx context.Context) {
	if a.watchdog != nil {
		a.watchdog.Beat()
	}

	if a.guard != nil && !a.guard.Ensure(ctx) {
		a.display.ShowStatus(textNoNetwork)
		a.refreshPrediction()
		return
	}

	raws := a.sampler.Sample()
	reading := NormalizeAll(raws, time.Now())
	for i, ch := range a.sampler.Channels() {
		a.display.ShowChannel(ch, raws[i], reading.Values[i])
	}

	pred, err := a.transport.Send(ctx, reading)
	if err != nil {
		if errors.Is(err, ErrBadReply) {
			a.log.Infow("reply_decode_failed", "err", err)
		} else {
			a.log.Infow("send_failed", "err", err)
			a.display.ShowStatus(textSendError)
		}
		a.refreshPrediction()
		return
	}
	if pred != nil {
		a.cache.Replace(*pred)
	}
	a.refreshPrediction()
}

// refreshPrediction pushes the held prediction (or the waiting placeholder)
// to the display.
func (a *Agent) refreshPrediction() {
	p, ok := a.cache.Latest()
	if !ok {
		a.display.ShowStatus(textWaiting)
		return
	}
	a.display.ShowPrediction(p.Label, p.Confidence)
}
