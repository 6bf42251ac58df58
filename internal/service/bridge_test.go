package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"foodsense"
	"foodsense/internal/logger"
)

type bridgePort struct {
	in  io.Reader
	out bytes.Buffer
}

func (p *bridgePort) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *bridgePort) Write(b []byte) (int, error) { return p.out.Write(b) }

type classifierStub struct {
	rec   foodsense.PredictionRecord
	err   error
	calls [][]float64
}

func (c *classifierStub) Classify(_ context.Context, sensors []float64) (foodsense.PredictionRecord, error) {
	c.calls = append(c.calls, append([]float64(nil), sensors...))
	return c.rec, c.err
}

func TestSerialBridge_RepliesWithPrediction(t *testing.T) {
	t.Parallel()

	port := &bridgePort{in: strings.NewReader("SENSOR_DATA,0.500000,0.500000\n")}
	cls := &classifierStub{rec: foodsense.PredictionRecord{
		Label:      foodsense.LabelDegraded,
		Confidence: 0.87,
	}}
	b := NewSerialBridge(port, cls, 2, logger.Get(logger.InfoLevel))

	b.Run(context.Background()) // returns at EOF

	if len(cls.calls) != 1 {
		t.Fatalf("classifications: want 1, got %d", len(cls.calls))
	}
	if cls.calls[0][0] != 0.5 || cls.calls[0][1] != 0.5 {
		t.Errorf("sensor vector: want [0.5 0.5], got %v", cls.calls[0])
	}
	if got, want := port.out.String(), "PREDICTION,1,0.870\n"; got != want {
		t.Errorf("reply: want %q, got %q", want, got)
	}
}

func TestSerialBridge_SkipsMalformedRecords(t *testing.T) {
	t.Parallel()

	// wrong field count, non-numeric field, unrelated noise
	in := "SENSOR_DATA,0.1\nSENSOR_DATA,0.1,abc\nhello world\n"
	port := &bridgePort{in: strings.NewReader(in)}
	cls := &classifierStub{}
	b := NewSerialBridge(port, cls, 2, logger.Get(logger.InfoLevel))

	b.Run(context.Background())

	if len(cls.calls) != 0 {
		t.Errorf("malformed input must not be classified, got %d calls", len(cls.calls))
	}
	if port.out.Len() != 0 {
		t.Errorf("no reply may be written for malformed input, got %q", port.out.String())
	}
}

func TestSerialBridge_ClassifierFailureWritesNothing(t *testing.T) {
	t.Parallel()

	port := &bridgePort{in: strings.NewReader("SENSOR_DATA,0.100000,0.100000\n")}
	cls := &classifierStub{err: io.ErrUnexpectedEOF}
	b := NewSerialBridge(port, cls, 2, logger.Get(logger.InfoLevel))

	b.Run(context.Background())

	if port.out.Len() != 0 {
		t.Errorf("failed classification must not produce a reply, got %q", port.out.String())
	}
}
