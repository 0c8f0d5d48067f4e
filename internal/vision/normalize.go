package vision

// ExtractCaptionAndTags reduces a raw analysis document into the display
// caption and tag list. The upstream shape is loosely typed and frequently
// partial, so every lookup degrades instead of failing: a missing, null or
// wrong-typed field yields an empty caption and/or empty tags, never an
// error.
//
// Caption: first element of description.captions, its "text" field.
// Tags: each element of tags contributes its "name" when it is a structured
// tag object, or itself when it is already a bare string; anything else is
// skipped. The result is deduplicated preserving first occurrence and never
// contains empty strings.
func ExtractCaptionAndTags(raw map[string]any) (string, []string) {
	return extractCaption(raw), extractTags(raw)
}

func extractCaption(raw map[string]any) string {
	description, ok := raw["description"].(map[string]any)
	if !ok {
		return ""
	}
	captions, ok := description["captions"].([]any)
	if !ok || len(captions) == 0 {
		return ""
	}
	first, ok := captions[0].(map[string]any)
	if !ok {
		return ""
	}
	text, _ := first["text"].(string)
	return text
}

func extractTags(raw map[string]any) []string {
	elements, ok := raw["tags"].([]any)
	if !ok {
		return []string{}
	}

	tags := make([]string, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))
	for _, element := range elements {
		var tag string
		switch v := element.(type) {
		case string:
			tag = v
		case map[string]any:
			tag, _ = v["name"].(string)
		default:
			continue
		}
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
