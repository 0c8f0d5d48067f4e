package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"relume/api/internal/apperr"
	"relume/api/internal/resilience"
)

const serviceName = "vision"

// features requested from the analysis backend. Faces are not modeled
// separately; they ride along inside the raw document.
const features = "Description,Tags,Faces"

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    resilience.NewBreaker(serviceName),
	}
}

// Configured reports whether an analysis backend was provided at startup.
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

// Analyze posts the raw payload bytes to the analysis backend and returns the
// decoded response document. The payload is always sent as bytes, never as a
// URL, so private containers work and storage credentials never leave the
// process. Transport failures, non-2xx statuses and undecodable bodies all
// come back as *apperr.DependencyError.
func (c *Client) Analyze(ctx context.Context, data []byte) (map[string]any, error) {
	if !c.Configured() {
		return nil, apperr.Dependency(serviceName, 0, apperr.ErrDependencyUnavailable)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, data)
	})
	if err != nil {
		if de, ok := apperr.AsDependency(err); ok {
			return nil, de
		}
		return nil, apperr.Dependency(serviceName, 0, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperr.Dependency(serviceName, 0, fmt.Errorf("decode response: %w", err))
	}
	return doc, nil
}

func (c *Client) post(ctx context.Context, data []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/analyze?visualFeatures=%s", c.endpoint, features)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Dependency(serviceName, 0, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.apiKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Dependency(serviceName, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Dependency(serviceName, 0, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Dependency(serviceName, resp.StatusCode, fmt.Errorf("analysis rejected: %s", strings.TrimSpace(string(body))))
	}
	return body, nil
}
