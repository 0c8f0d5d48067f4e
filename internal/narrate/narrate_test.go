package narrate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relume/api/internal/apperr"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{"praia", "pôr do sol"})
	assert.Contains(t, prompt, "praia, pôr do sol")

	empty := BuildPrompt(nil)
	assert.Contains(t, empty, "uma imagem sem tags")
}

func TestNarrateForwardsPromptAndParameters(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"text":"  Uma tarde na praia com o cachorro.  "}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", 5*time.Second)
	text, err := client.Narrate(context.Background(), []any{"praia", "cachorro"})
	require.NoError(t, err)

	assert.Equal(t, "Uma tarde na praia com o cachorro.", text)
	prompt, _ := captured["prompt"].(string)
	assert.Contains(t, prompt, "praia, cachorro")
	assert.Equal(t, float64(120), captured["max_tokens"])
	assert.Equal(t, 0.7, captured["temperature"])
}

func TestNarrateRejectsNonArrayTagsWithoutCallingBackend(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Narrate(context.Background(), "praia")

	assert.True(t, apperr.IsValidation(err))
	assert.False(t, called, "validation failures must not reach the backend")
}

func TestNarrateAbsentTagsUsesDefaultSubject(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"text":"Uma imagem tranquila."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Narrate(context.Background(), nil)
	require.NoError(t, err)

	prompt, _ := captured["prompt"].(string)
	assert.Contains(t, prompt, "uma imagem sem tags")
}

func TestNarrateUpstreamFailureIsDependencyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Narrate(context.Background(), []any{"praia"})

	de, ok := apperr.AsDependency(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, de.Status)
}
