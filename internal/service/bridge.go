package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"foodsense/internal/logger"
	"foodsense/internal/pipeline"
)

// SerialBridge is the serial-link counterpart of the HTTP predict endpoint:
// it reads SENSOR_DATA records from a directly attached device, classifies
// each complete vector and writes a PREDICTION reply back on the same link.
// Malformed lines are skipped; the loop only ends with the port or context.
type SerialBridge struct {
	port       io.ReadWriter
	classifier Classifier
	channels   int
	log        *logger.Logger
}

func NewSerialBridge(port io.ReadWriter, classifier Classifier, channels int, log *logger.Logger) *SerialBridge {
	return &SerialBridge{
		port:       port,
		classifier: classifier,
		channels:   channels,
		log:        log,
	}
}

// Run consumes the link line by line until ctx is canceled or the port
// errors out.
func (b *SerialBridge) Run(ctx context.Context) {
	scanner := bufio.NewScanner(b.port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "SENSOR_DATA") {
			continue
		}
		b.handleLine(ctx, line)
	}
	if err := scanner.Err(); err != nil {
		b.log.Infow("serial_bridge_stopped", "err", err)
	}
}

func (b *SerialBridge) handleLine(ctx context.Context, line string) {
	sensors, err := pipeline.ParseSensorLine(line, b.channels)
	if err != nil {
		b.log.Infow("serial_record_skipped", "line", line, "err", err)
		return
	}

	rec, err := b.classifier.Classify(ctx, sensors)
	if err != nil {
		b.log.Errorw("serial_classify_failed", "err", err)
		return
	}

	reply := fmt.Sprintf("PREDICTION,%d,%.3f\n", rec.Label.Class(), rec.Confidence)
	if _, err := io.WriteString(b.port, reply); err != nil {
		b.log.Errorw("serial_reply_failed", "err", err)
		return
	}
	b.log.Infow("serial_classified", "label", rec.Label, "confidence", rec.Confidence)
}
