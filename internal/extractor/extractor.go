// Package extractor turns an uploaded file's contents into the flat ordered
// list of texts fed to the classification pipeline. It is pure: same
// filename and content always produce the same texts.
package extractor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/moodboard/internal/apperrors"
)

// MaxTexts caps how many texts a single file may contribute. The request
// builder enforces the same ceiling again before the oracle call.
const MaxTexts = 50

// Extract parses content according to the lowercased extension of filename.
// A nil *Truncation means the whole file fit under the cap.
func Extract(filename, content string) ([]string, *apperrors.Truncation, error) {
	ext := strings.ToLower(extension(filename))

	var texts []string
	switch ext {
	case "txt":
		texts = extractTXT(content)
	case "csv":
		texts = extractCSV(content)
	case "json":
		texts = extractJSON(content)
	default:
		return nil, nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, ext)
	}

	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrEmptyExtraction, filename)
	}

	if len(texts) > MaxTexts {
		trunc := &apperrors.Truncation{Original: len(texts), Kept: MaxTexts}
		slog.Warn("[Extractor] Truncating oversized file",
			slog.String("filename", filename),
			slog.Int("original", trunc.Original),
			slog.Int("kept", trunc.Kept))
		return texts[:MaxTexts], trunc, nil
	}

	return texts, nil, nil
}

func extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx+1:]
}

func extractTXT(content string) []string {
	var texts []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	return texts
}

func extractCSV(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	// A first line mentioning "text" is treated as a header row.
	if strings.Contains(strings.ToLower(lines[0]), "text") {
		lines = lines[1:]
	}

	var texts []string
	for _, line := range lines {
		if text := strings.TrimSpace(firstCSVField(line)); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

// firstCSVField takes the leading field of a CSV line: the quoted content
// when the line opens with a double quote, otherwise everything before the
// first comma. Quote stripping is deliberately naive; the upstream format
// does no escaping beyond doubled quotes inside text we keep verbatim.
func firstCSVField(line string) string {
	if strings.HasPrefix(line, `"`) {
		if end := strings.LastIndex(line[1:], `"`); end >= 0 {
			return line[1 : end+1]
		}
		return line[1:]
	}
	if idx := strings.Index(line, ","); idx >= 0 {
		return line[:idx]
	}
	return line
}

func extractJSON(content string) []string {
	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil
	}

	switch v := parsed.(type) {
	case []any:
		var texts []string
		for _, elem := range v {
			if text := textFromElement(elem, "text", "content", "message"); text != "" {
				texts = append(texts, text)
			}
		}
		return texts
	case map[string]any:
		if raw, ok := v["texts"].([]any); ok {
			// The texts field is taken as-is, no per-element filtering.
			texts := make([]string, 0, len(raw))
			for _, elem := range raw {
				if s, ok := elem.(string); ok {
					texts = append(texts, s)
				} else {
					texts = append(texts, stringify(elem))
				}
			}
			return texts
		}
		if raw, ok := v["data"].([]any); ok {
			texts := make([]string, 0, len(raw))
			for _, elem := range raw {
				texts = append(texts, textFromElement(elem, "text", "content"))
			}
			return texts
		}
	}
	return nil
}

// textFromElement resolves one JSON array element to a text: strings pass
// through verbatim, objects are probed for the named keys in order, and
// anything else is stringified.
func textFromElement(elem any, keys ...string) string {
	switch v := elem.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range keys {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		return stringify(v)
	default:
		return stringify(elem)
	}
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
