package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/prometheus/prompb"
)

// Client pushes gathered metric families to a Prometheus remote-write
// endpoint (VictoriaMetrics, Prometheus with remote-write receiver, etc.).
type Client struct {
	url        string
	httpClient *http.Client
	labels     map[string]string
}

// NewClient creates a push client for the given base URL. The extra labels
// are attached to every pushed series; use them for instance or job tags.
func NewClient(url string, labels map[string]string) *Client {
	return &Client{
		url:        url + "/api/v1/write",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		labels:     labels,
	}
}

// Push writes the metric families to the remote endpoint.
func (c *Client) Push(ctx context.Context, families []*dto.MetricFamily) error {
	timeseries := c.familiesToTimeSeries(families)
	if len(timeseries) == 0 {
		return nil
	}

	req := &prompb.WriteRequest{
		Timeseries: timeseries,
	}

	data, err := proto.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling write request: %w", err)
	}

	compressed := snappy.Encode(nil, data)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// familiesToTimeSeries flattens gathered families into remote-write series.
// Only counters and gauges are produced by this package; other family types
// are skipped.
func (c *Client) familiesToTimeSeries(families []*dto.MetricFamily) []prompb.TimeSeries {
	now := time.Now().UnixMilli()

	var timeseries []prompb.TimeSeries
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				value = metric.GetGauge().GetValue()
			default:
				continue
			}

			labels := make([]prompb.Label, 0, len(metric.GetLabel())+len(c.labels)+1)
			labels = append(labels, prompb.Label{
				Name:  "__name__",
				Value: family.GetName(),
			})
			for _, pair := range metric.GetLabel() {
				labels = append(labels, prompb.Label{
					Name:  pair.GetName(),
					Value: pair.GetValue(),
				})
			}
			for name, val := range c.labels {
				labels = append(labels, prompb.Label{
					Name:  name,
					Value: val,
				})
			}

			timeseries = append(timeseries, prompb.TimeSeries{
				Labels:  labels,
				Samples: []prompb.Sample{{Value: value, Timestamp: now}},
			})
		}
	}
	return timeseries
}
