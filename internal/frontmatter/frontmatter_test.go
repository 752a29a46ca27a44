package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected Metadata
	}{
		{
			name: "full header with list tags",
			content: `---
title: OWASP Example Project
level: 3
pitch: A sample project.
type: documentation
tags:
  - security
  - testing
---

# Body text here
`,
			expected: Metadata{
				Title: "OWASP Example Project",
				Level: intPtr(3),
				Pitch: "A sample project.",
				Type:  "documentation",
				Tags:  []string{"security", "testing"},
			},
		},
		{
			name:     "no front matter delimiters",
			content:  "# Just a markdown file\n\nNothing else.\n",
			expected: Metadata{},
		},
		{
			name:     "unterminated block",
			content:  "---\ntitle: Dangling\n\n# Body\n",
			expected: Metadata{},
		},
		{
			name:     "empty content",
			content:  "",
			expected: Metadata{},
		},
		{
			name:     "level as quoted string is coerced",
			content:  "---\nlevel: \"4\"\n---\n",
			expected: Metadata{Level: intPtr(4)},
		},
		{
			name:     "level out of range is absent",
			content:  "---\nlevel: 7\n---\n",
			expected: Metadata{},
		},
		{
			name:     "level not a number is absent",
			content:  "---\nlevel: \"abc\"\n---\n",
			expected: Metadata{},
		},
		{
			name:     "level as float is truncated",
			content:  "---\nlevel: 2.0\n---\n",
			expected: Metadata{Level: intPtr(2)},
		},
		{
			name:     "tags as comma-joined scalar",
			content:  "---\ntags: security, testing, security\n---\n",
			expected: Metadata{Tags: []string{"security", "testing"}},
		},
		{
			name:     "tags as inline bracket list",
			content:  "---\ntags: [alpha, \"beta\"]\n---\n",
			expected: Metadata{Tags: []string{"alpha", "beta"}},
		},
		{
			name:     "keys are case-insensitive",
			content:  "---\nTitle: Mixed Case\nRegion: Europe\n---\n",
			expected: Metadata{Title: "Mixed Case", Region: "Europe"},
		},
		{
			name:     "one-liner is an alias for pitch",
			content:  "---\none-liner: Short and sweet\n---\n",
			expected: Metadata{Pitch: "Short and sweet"},
		},
		{
			name: "unknown keys are ignored",
			content: `---
title: Known
auto-migrated: 1
document: somewhere
---
`,
			expected: Metadata{Title: "Known"},
		},
		{
			name: "malformed yaml falls back to line scan",
			content: `---
title: Broken: but still has a title
level: 2
	tabbed garbage
---
`,
			expected: Metadata{Title: "Broken: but still has a title", Level: intPtr(2)},
		},
		{
			name:     "chapter header with region and country",
			content:  "---\ntitle: OWASP Example Chapter\nregion: Asia\ncountry: Japan\nlevel: 0\n---\n",
			expected: Metadata{Title: "OWASP Example Chapter", Region: "Asia", Country: "Japan"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Parse(tc.content))
		})
	}
}

func TestMetadataIsZero(t *testing.T) {
	assert.True(t, Metadata{}.IsZero())
	assert.False(t, Metadata{Title: "x"}.IsZero())
	assert.False(t, Metadata{Level: intPtr(1)}.IsZero())
}
