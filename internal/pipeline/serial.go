package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"foodsense"
	"foodsense/internal/logger"
)

// SerialTransport writes SENSOR_DATA records to a local serial link and
// collects asynchronous PREDICTION replies. The link is assumed always
// present, so sends are never gated on connectivity.
//
// Inbound replies are read by a single background goroutine and handed to
// Send as immutable snapshots over a buffered channel; nothing is shared
// mutably between the reader and the pipeline loop.
type SerialTransport struct {
	port    io.ReadWriter
	log     *logger.Logger
	inbound chan foodsense.Prediction
	now     func() time.Time
}

// NewSerialTransport wraps an open serial port. The caller owns the port's
// lifetime. Call StartReader to enable inbound predictions; without it the
// transport is write-only, matching the simplest device variant.
func NewSerialTransport(port io.ReadWriter, log *logger.Logger) *SerialTransport {
	return &SerialTransport{
		port:    port,
		log:     log,
		inbound: make(chan foodsense.Prediction, 8),
		now:     time.Now,
	}
}

// StartReader launches the inbound line reader. It stops when the port
// returns an error (typically on close) or the context is canceled.
func (t *SerialTransport) StartReader(ctx context.Context) {
	go t.readLoop(ctx)
}

func (t *SerialTransport) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(t.port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, predictionPrefix) {
			continue
		}
		class, conf, err := ParsePredictionLine(line)
		if err != nil {
			t.log.Infow("serial_reply_skipped", "line", line, "err", err)
			continue
		}
		p := foodsense.Prediction{
			Label:      foodsense.LabelFromClass(class),
			Confidence: conf,
			ReceivedAt: t.now(),
		}
		select {
		case t.inbound <- p:
		default:
			// pipeline is behind; drop the oldest by draining one slot
			select {
			case <-t.inbound:
			default:
			}
			t.inbound <- p
		}
	}
	if err := scanner.Err(); err != nil {
		t.log.Infow("serial_reader_stopped", "err", err)
	}
}

// Send writes one SENSOR_DATA record and returns the newest inbound
// prediction if one arrived since the previous cycle, nil otherwise.
func (t *SerialTransport) Send(_ context.Context, r foodsense.Reading) (*foodsense.Prediction, error) {
	line := EncodeSensorLine(r) + "\n"
	if _, err := io.WriteString(t.port, line); err != nil {
		return nil, fmt.Errorf("serial write: %w", err)
	}

	var latest *foodsense.Prediction
	for {
		select {
		case p := <-t.inbound:
			cp := p
			latest = &cp
		default:
			return latest, nil
		}
	}
}
