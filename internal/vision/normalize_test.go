package vision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCaptionAndTags(t *testing.T) {
	raw := map[string]any{
		"description": map[string]any{
			"captions": []any{
				map[string]any{"text": "a cat on a sofa", "confidence": 0.91},
				map[string]any{"text": "ignored second caption"},
			},
		},
		"tags": []any{
			map[string]any{"name": "cat", "confidence": 0.99},
			map[string]any{"name": "cat"},
			"dog",
			"dog",
			map[string]any{"name": ""},
			"",
			42,
			nil,
			[]any{"nested"},
		},
	}

	caption, tags := ExtractCaptionAndTags(raw)

	assert.Equal(t, "a cat on a sofa", caption)
	assert.Equal(t, []string{"cat", "dog"}, tags)
}

func TestExtractCaptionAndTagsDegradesOnMalformedShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"null fields", `{"description": null, "tags": null}`},
		{"wrong types", `{"description": "text", "tags": "cat"}`},
		{"captions not a list", `{"description": {"captions": {"text": "x"}}}`},
		{"caption element not an object", `{"description": {"captions": ["plain"]}}`},
		{"caption text wrong type", `{"description": {"captions": [{"text": 7}]}}`},
		{"error document", `{"error": "timeout", "status": 504}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var raw map[string]any
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &raw))

			caption, tags := ExtractCaptionAndTags(raw)

			assert.Empty(t, caption)
			assert.NotNil(t, tags)
			assert.Empty(t, tags)
		})
	}
}

func TestExtractCaptionAndTagsNilInput(t *testing.T) {
	caption, tags := ExtractCaptionAndTags(nil)

	assert.Empty(t, caption)
	assert.Empty(t, tags)
}

func TestExtractTagsPreservesInsertionOrder(t *testing.T) {
	raw := map[string]any{
		"tags": []any{"zebra", map[string]any{"name": "apple"}, "zebra", "mango"},
	}

	_, tags := ExtractCaptionAndTags(raw)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, tags)
}
