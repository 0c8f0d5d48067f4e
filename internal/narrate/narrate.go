// Package narrate turns a tag list into a short textual description by way
// of an external text-generation function.
package narrate

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

const serviceName = "narration"

const (
	defaultSubject = "uma imagem sem tags"
	maxTokens      = 120
	temperature    = 0.7
)

const promptTemplate = "Escreva uma narrativa curta e calorosa, em uma frase, sobre uma foto que contém: %s."

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

func (c *Client) Configured() bool {
	return c.endpoint != ""
}

// BuildPrompt interpolates the joined tags into the fixed template. An empty
// list falls back to a fixed subject so the prompt never contains a hole.
func BuildPrompt(tags []string) string {
	subject := defaultSubject
	if len(tags) > 0 {
		subject = strings.Join(tags, ", ")
	}
	return fmt.Sprintf(promptTemplate, subject)
}

// Narrate validates the tag field, builds the prompt and forwards it to the
// generation backend. The tags argument is the raw decoded JSON value: a
// present but non-array value is a validation error and the backend is never
// called. Backend failures come back as *apperr.DependencyError.
func (c *Client) Narrate(ctx context.Context, rawTags any) (string, error) {
	tags, err := coerceTags(rawTags)
	if err != nil {
		return "", err
	}
	if !c.Configured() {
		return "", apperr.Dependency(serviceName, 0, apperr.ErrDependencyUnavailable)
	}

	payload, err := json.Marshal(map[string]any{
		"prompt":      BuildPrompt(tags),
		"max_tokens":  maxTokens,
		"temperature": temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		if de, ok := apperr.AsDependency(err); ok {
			return "", de
		}
		return "", apperr.Dependency(serviceName, 0, err)
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", apperr.Dependency(serviceName, 0, fmt.Errorf("decode response: %w", err))
	}
	return strings.TrimSpace(response.Text), nil
}

func coerceTags(rawTags any) ([]string, error) {
	if rawTags == nil {
		return nil, nil
	}
	elements, ok := rawTags.([]any)
	if !ok {
		return nil, apperr.Validation("tags", "must be a list of strings")
	}

	tags := make([]string, 0, len(elements))
	for _, element := range elements {
		tag, ok := element.(string)
		if !ok {
			return nil, apperr.Validation("tags", "must be a list of strings")
		}
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Dependency(serviceName, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
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
		return nil, apperr.Dependency(serviceName, resp.StatusCode, fmt.Errorf("generation rejected: %s", strings.TrimSpace(string(body))))
	}
	return body, nil
}
