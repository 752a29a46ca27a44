// Package frontmatter extracts and parses the YAML front-matter header of a
// project's index.md. Real-world headers in the wild are frequently not
// valid YAML, so parsing is deliberately forgiving: anything that cannot be
// understood simply yields the zero value for that field.
package frontmatter

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Metadata is the coerced result of parsing a front-matter block.
// All fields are optional.
type Metadata struct {
	Title   string
	Level   *int // 1..4, nil when missing, unparsable or out of range
	Pitch   string
	Type    string
	Region  string
	Country string
	Tags    []string
}

// IsZero reports whether no recognized key was found at all.
func (m Metadata) IsZero() bool {
	return m.Title == "" && m.Level == nil && m.Pitch == "" &&
		m.Type == "" && m.Region == "" && m.Country == "" && len(m.Tags) == 0
}

// Parse extracts the leading front-matter block from content and coerces
// the recognized keys. A missing, unterminated or unparsable block returns
// the zero Metadata; Parse never fails.
func Parse(content string) Metadata {
	block, ok := extractBlock(content)
	if !ok {
		return Metadata{}
	}

	fields := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &fields); err != nil || fields == nil {
		// Headers occasionally contain unquoted colons or stray tabs that
		// strict YAML rejects. Fall back to a line-wise key:value scan.
		fields = scanLines(block)
	}
	return coerce(fields)
}

// extractBlock returns the text between the opening and closing delimiter
// lines. The opening delimiter must be the first non-blank line.
func extractBlock(content string) (string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(content), delimiter) {
		return "", false
	}
	lines := strings.Split(content, "\n")
	var body []string
	opened := false
	for _, line := range lines {
		if strings.TrimSpace(line) == delimiter {
			if !opened {
				opened = true
				continue
			}
			return strings.Join(body, "\n"), true
		}
		if opened {
			body = append(body, line)
		}
	}
	return "", false
}

// scanLines is the permissive fallback parser: top-level "key: value" pairs
// only, nested structure ignored.
func scanLines(block string) map[string]any {
	fields := map[string]any{}
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}

func coerce(fields map[string]any) Metadata {
	// Key lookup is case-insensitive.
	lower := make(map[string]any, len(fields))
	for k, v := range fields {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}

	m := Metadata{
		Title:   asString(lower["title"]),
		Pitch:   asString(lower["pitch"]),
		Type:    asString(lower["type"]),
		Region:  asString(lower["region"]),
		Country: asString(lower["country"]),
		Level:   asLevel(lower["level"]),
		Tags:    asTags(lower["tags"]),
	}
	if m.Pitch == "" {
		m.Pitch = asString(lower["one-liner"])
	}
	return m
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.Trim(strings.TrimSpace(s), `"'`)
	case nil:
		return ""
	default:
		return ""
	}
}

// asLevel coerces a level value to an int in 1..4. Hosts store it as an
// int, a float (2.0) or a quoted string ("4"); anything else, and anything
// out of range, is treated as absent.
func asLevel(v any) *int {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case float64:
		n = int(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		n = int(f)
	default:
		return nil
	}
	if n < 1 || n > 4 {
		return nil
	}
	return &n
}

// asTags accepts a YAML list, an inline "[a, b]" scalar, or a plain
// comma-joined scalar, and normalizes to a deduplicated slice.
func asTags(v any) []string {
	var raw []string
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			raw = append(raw, asString(item))
		}
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		raw = strings.Split(s, ",")
	default:
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	var tags []string
	for _, t := range raw {
		t = strings.Trim(strings.TrimSpace(t), `"'`)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
