package pipeline

import (
	"sync"
	"time"

	"foodsense"
)

// predictionStaleAfter bounds how long a held prediction is still shown
// before the display falls back to its waiting placeholder.
const predictionStaleAfter = 30 * time.Second

// PredictionCache holds the latest-known classification. Label, confidence
// and freshness timestamp are replaced together or not at all.
type PredictionCache struct {
	mu   sync.Mutex
	held *foodsense.Prediction
	now  func() time.Time
}

func NewPredictionCache() *PredictionCache {
	return &PredictionCache{now: time.Now}
}

// Replace installs a new prediction atomically.
func (c *PredictionCache) Replace(p foodsense.Prediction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := p
	c.held = &cp
}

// Latest returns the held prediction and whether it is still fresh. The
// second return is false when nothing has been received yet or the held
// value has gone stale.
func (c *PredictionCache) Latest() (foodsense.Prediction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held == nil {
		return foodsense.Prediction{}, false
	}
	if c.now().Sub(c.held.ReceivedAt) > predictionStaleAfter {
		return *c.held, false
	}
	return *c.held, true
}
