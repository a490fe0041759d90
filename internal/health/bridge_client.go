package health

import (
	"bytes"
	"context"
	"dailytrack/internal/models"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// BridgeClient talks JSON over HTTP to the on-device health bridge.
type BridgeClient struct {
	baseURL string
	client  *http.Client
}

func NewBridgeClient(baseURL string, timeout time.Duration) *BridgeClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BridgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type samplesResponse struct {
	Samples []models.Sample `json:"samples"`
}

type saveWeightRequest struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (b *BridgeClient) QueryStepSamples(ctx context.Context, r models.DateRange) ([]models.Sample, error) {
	return b.querySamples(ctx, "/steps", r)
}

func (b *BridgeClient) QueryWeightSamples(ctx context.Context, r models.DateRange) ([]models.Sample, error) {
	return b.querySamples(ctx, "/weight", r)
}

func (b *BridgeClient) querySamples(ctx context.Context, path string, r models.DateRange) ([]models.Sample, error) {
	q := url.Values{}
	q.Set("start", r.Start.Format(time.RFC3339))
	q.Set("end", r.End.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", path, err)
	}

	body, err := b.do(req)
	if err != nil {
		return nil, err
	}

	var resp samplesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return resp.Samples, nil
}

func (b *BridgeClient) SaveWeight(ctx context.Context, value float64, unit string) error {
	payload, err := json.Marshal(saveWeightRequest{Value: value, Unit: unit})
	if err != nil {
		return fmt.Errorf("failed to marshal weight: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/weight", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create weight request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = b.do(req)
	return err
}

func (b *BridgeClient) do(req *http.Request) ([]byte, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call health bridge %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read health bridge response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("health bridge error %d on %s: %s", resp.StatusCode, req.URL.Path, strings.TrimSpace(string(body)))
	}
	return body, nil
}

var _ ClientInterface = (*BridgeClient)(nil)
