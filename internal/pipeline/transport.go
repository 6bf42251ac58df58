package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"foodsense"
)

// Transport ships one Reading to the inference side. A nil Prediction with a
// nil error means the send went out but no classification came back this
// cycle (normal for the serial link, which replies asynchronously).
//
// Transports never retry internally; the next pipeline cycle is the retry,
// naturally rate-limited by the cycle delay.
type Transport interface {
	Send(ctx context.Context, r foodsense.Reading) (*foodsense.Prediction, error)
}

// Wire prefixes shared by the serial-text protocol on both ends.
const (
	sensorDataPrefix = "SENSOR_DATA"
	predictionPrefix = "PREDICTION"
)

var (
	// ErrBadReply marks a reply that arrived but could not be decoded. The
	// held prediction must stay unchanged when this is returned.
	ErrBadReply = errors.New("undecodable prediction reply")

	// ErrLinkDown is returned when a send is refused because the network
	// link is known to be down.
	ErrLinkDown = errors.New("network link down")
)

// EncodeSensorLine renders a Reading as the serial-text record:
// SENSOR_DATA followed by one %.6f field per channel.
func EncodeSensorLine(r foodsense.Reading) string {
	var b strings.Builder
	b.WriteString(sensorDataPrefix)
	for _, v := range r.Values {
		fmt.Fprintf(&b, ",%.6f", v)
	}
	return b.String()
}

// ParseSensorLine decodes a SENSOR_DATA record into its values. want is the
// expected channel count; a record with any other field count is rejected.
func ParseSensorLine(line string, want int) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != want+1 || parts[0] != sensorDataPrefix {
		return nil, fmt.Errorf("%w: %q", ErrBadReply, line)
	}
	values := make([]float64, want)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrBadReply, i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

// ParsePredictionLine decodes an inbound PREDICTION,<class>,<confidence>
// record. Splitting is on the first two commas only, so a confidence field
// containing no comma is the whole remainder.
func ParsePredictionLine(line string) (int, float64, error) {
	parts := strings.SplitN(strings.TrimSpace(line), ",", 3)
	if len(parts) != 3 || parts[0] != predictionPrefix {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadReply, line)
	}
	class, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: class: %v", ErrBadReply, err)
	}
	conf, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: confidence: %v", ErrBadReply, err)
	}
	return class, conf, nil
}
