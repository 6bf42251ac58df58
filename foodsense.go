package foodsense

import "time"

// Label is the quality class assigned to a reading.
type Label string

const (
	LabelFresh    Label = "FRESH"
	LabelDegraded Label = "DEGRADED"
	LabelError    Label = "ERROR"
	LabelUnknown  Label = "UNKNOWN"
)

// LabelFromClass maps a wire class index to a Label. The mapping is total:
// anything outside {0,1,2} is UNKNOWN.
func LabelFromClass(class int) Label {
	switch class {
	case 0:
		return LabelFresh
	case 1:
		return LabelDegraded
	case 2:
		return LabelError
	default:
		return LabelUnknown
	}
}

// Class returns the wire class index for a label, -1 for UNKNOWN.
func (l Label) Class() int {
	switch l {
	case LabelFresh:
		return 0
	case LabelDegraded:
		return 1
	case LabelError:
		return 2
	default:
		return -1
	}
}

// Channel is one physical gas-sensor input: a fixed position in the reading
// vector, a human-readable model name and the analog pin it is wired to.
// Immutable for the process lifetime.
type Channel struct {
	Index int    `json:"index"`
	Label string `json:"label"` // e.g. "MQ135"
	Pin   int    `json:"pin"`
}

// Reading is the per-cycle vector of normalized samples, one per channel,
// each in [0,1]. Created by the normalizer, consumed once by the transport.
type Reading struct {
	Values  []float64 `json:"sensors"`
	TakenAt time.Time `json:"-"`
}

// Prediction is the latest classification received from the inference side.
// Label and Confidence are always replaced together.
type Prediction struct {
	Label      Label     `json:"label"`
	Confidence float64   `json:"confidence"`
	ReceivedAt time.Time `json:"received_at"`
}

// PredictionRecord is a persisted classification on the server side.
type PredictionRecord struct {
	ID         string    `json:"id"`
	Label      Label     `json:"prediction_label"`
	Confidence float64   `json:"confidence"`
	SensorData []float64 `json:"sensor_data"`
	CreatedAt  time.Time `json:"datetime"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // never expose the hash
}
