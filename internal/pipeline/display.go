package pipeline

import (
	"fmt"

	"foodsense"
	"foodsense/internal/logger"
)

// Display placeholder texts shown while no usable prediction is held.
const (
	textWaiting   = "Waiting..."
	textNoNetwork = "No WiFi"
	textSendError = "HTTP Error"
)

// Display is the fire-and-forget sink the pipeline pushes status into.
// Implementations render to whatever is attached (LCD, log, nothing); no
// call returns a value and none may block the loop meaningfully.
type Display interface {
	ShowStatus(status string)
	ShowPrediction(label foodsense.Label, confidence float64)
	ShowChannel(ch foodsense.Channel, raw int, normalized float64)
}

// LogDisplay renders the display feed as structured log lines. It stands in
// for a character LCD on deployments without one.
type LogDisplay struct {
	log *logger.Logger
}

func NewLogDisplay(log *logger.Logger) *LogDisplay {
	return &LogDisplay{log: log}
}

func (d *LogDisplay) ShowStatus(status string) {
	d.log.Infow("display_status", "status", status)
}

func (d *LogDisplay) ShowPrediction(label foodsense.Label, confidence float64) {
	d.log.Infow("display_prediction", "label", label, "confidence", fmt.Sprintf("%.3f", confidence))
}

func (d *LogDisplay) ShowChannel(ch foodsense.Channel, raw int, normalized float64) {
	d.log.Debugw("display_channel", "label", ch.Label, "raw", raw, "normalized", fmt.Sprintf("%.6f", normalized))
}
