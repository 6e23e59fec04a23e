package simevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitEvents submits mission completions concurrently using a worker pool.
func submitEvents(ctx context.Context, config *Config, events []MissionEvent, stats *Stats) error {
	log.Printf("📤 Submitting %d mission completions with %d workers...", len(events), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/events/mission-completed"

	var (
		created   int64
		duplicate int64
		skipped   int64
		failed    int64
		submitted int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	eventChan := make(chan MissionEvent, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for event := range eventChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result := submitSingleEvent(ctx, client, url, event)

				atomic.AddInt64(&submitted, 1)
				switch result {
				case "created":
					atomic.AddInt64(&created, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "skipped":
					atomic.AddInt64(&skipped, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}

				if time.Since(lastReport) >= reportInterval {
					lastReport = time.Now()
					log.Printf("📊 Progress: %d/%d submitted (created: %d, duplicate: %d, skipped: %d, failed: %d)",
						atomic.LoadInt64(&submitted), len(events),
						atomic.LoadInt64(&created), atomic.LoadInt64(&duplicate),
						atomic.LoadInt64(&skipped), atomic.LoadInt64(&failed))
				}
			}
		}()
	}

	go func() {
		defer close(eventChan)
		for _, event := range events {
			select {
			case <-ctx.Done():
				return
			case eventChan <- event:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsCreated = int(atomic.LoadInt64(&created))
	stats.EventsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EventsSkipped = int(atomic.LoadInt64(&skipped))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Event submission completed:
   Created: %d
   Duplicate: %d
   Skipped: %d
   Failed: %d
`, stats.EventsCreated, stats.EventsDuplicate, stats.EventsSkipped, stats.EventsFailed)

	return nil
}

// submitSingleEvent submits a single completion and classifies the ack.
func submitSingleEvent(ctx context.Context, client *HTTPClient, url string, event MissionEvent) string {
	resp, err := client.Post(ctx, url, event)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		return "created"
	case http.StatusOK:
		var ack MissionAck
		if err := json.Unmarshal(body, &ack); err == nil && ack.Status != "" {
			return ack.Status
		}
		return "skipped"
	default:
		return "failed"
	}
}
