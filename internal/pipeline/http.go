package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"foodsense"
)

// Request/response timeouts for the inference endpoint. The connect budget
// is separate from the overall request budget so a dead host fails fast.
const (
	httpConnectTimeout = 8 * time.Second
	httpRequestTimeout = 15 * time.Second
)

// ConnectivityReporter gates networked sends. Nil means "always up".
type ConnectivityReporter interface {
	Connected() bool
}

// HTTPTransport posts readings to the inference server as JSON and decodes
// the classification reply synchronously.
type HTTPTransport struct {
	url    string
	client *http.Client
	guard  ConnectivityReporter
	now    func() time.Time
}

// NewHTTPTransport builds a transport for the given endpoint URL. guard may
// be nil; when set, Send refuses to go out while the link is reported down.
func NewHTTPTransport(url string, guard ConnectivityReporter) *HTTPTransport {
	return &HTTPTransport{
		url: url,
		client: &http.Client{
			Timeout: httpRequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: httpConnectTimeout}).DialContext,
			},
		},
		guard: guard,
		now:   time.Now,
	}
}

// predictReply is the inference server's success body. Pointer fields so a
// missing key is distinguishable from a zero value: both must be present or
// the reply is a decode failure and the held prediction stays unchanged.
type predictReply struct {
	Prediction *int     `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

// Send posts {"sensors":[...]} and returns the decoded prediction. Non-200
// statuses and connection errors are transport failures; the caller skips
// this cycle's prediction update and the next cycle retries naturally.
func (t *HTTPTransport) Send(ctx context.Context, r foodsense.Reading) (*foodsense.Prediction, error) {
	if t.guard != nil && !t.guard.Connected() {
		return nil, ErrLinkDown
	}

	body, err := json.Marshal(struct {
		Sensors []float64 `json:"sensors"`
	}{Sensors: r.Values})
	if err != nil {
		return nil, fmt.Errorf("encode reading: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post reading: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference server returned %d", resp.StatusCode)
	}

	var reply predictReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	if reply.Prediction == nil || reply.Confidence == nil {
		return nil, fmt.Errorf("%w: missing prediction or confidence", ErrBadReply)
	}

	return &foodsense.Prediction{
		Label:      foodsense.LabelFromClass(*reply.Prediction),
		Confidence: *reply.Confidence,
		ReceivedAt: t.now(),
	}, nil
}
