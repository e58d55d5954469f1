package stream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// SSESource streams chunks from a live server-sent-events endpoint. The
// connection is retried on initial failure only; once the event stream is
// open, a broken stream surfaces as a transport error and the accumulated
// state keeps whatever arrived.
type SSESource struct {
	*ReplaySource
}

// OpenSSE connects to endpoint and returns a source over its event stream.
func OpenSSE(ctx context.Context, endpoint string, retryMax int, headers map[string]string) (*SSESource, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream endpoint returned status %d", resp.StatusCode)
	}
	return &SSESource{ReplaySource: NewReplaySource(resp.Body)}, nil
}
