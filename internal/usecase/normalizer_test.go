package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/owasp-bumper/repolist/internal/domain"
)

func TestNormalize_Defaults(t *testing.T) {
	r := Normalize(domain.RepositorySummary{Name: "bare-repo"}, nil, nil, nil)

	assert.Equal(t, "", r.Description)
	assert.Equal(t, "N/A", r.Language)
	assert.Equal(t, 0, r.Stars)
	assert.Nil(t, r.OpenPRCount, "unfetched PR count is unknown, not zero")
	assert.Nil(t, r.Sparkline, "unfetched series is absent, not empty")
	assert.Equal(t, 0, r.ActivityScore)
	assert.Nil(t, r.Level)
	assert.Empty(t, r.Tags)
}

func TestNormalize_Classification(t *testing.T) {
	testCases := []struct {
		name      string
		isProject bool
		isChapter bool
	}{
		{name: "www-project-foo", isProject: true},
		{name: "www-chapter-bar", isChapter: true},
		{name: "random-tool"},
		{name: "WWW-PROJECT-SHOUTING", isProject: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := Normalize(domain.RepositorySummary{Name: tc.name}, nil, nil, nil)
			assert.Equal(t, tc.isProject, r.IsProject)
			assert.Equal(t, tc.isChapter, r.IsChapter)
		})
	}
}

func TestNormalize_SeriesSummary(t *testing.T) {
	weeks := []int{0, 4, 2, 0, 6}
	r := Normalize(domain.RepositorySummary{Name: "active"}, weeks, nil, nil)

	assert.Equal(t, weeks, r.Sparkline)
	assert.Equal(t, 12, r.ActivityScore)
	assert.InDelta(t, 2.4, r.WeeklyMean, 0.001)
}

func TestNormalize_AllZeroSeriesIsNotAbsent(t *testing.T) {
	weeks := make([]int, 52)
	r := Normalize(domain.RepositorySummary{Name: "quiet"}, weeks, nil, nil)

	assert.NotNil(t, r.Sparkline, "a flat year is still a present series")
	assert.Len(t, r.Sparkline, 52)
	assert.Equal(t, 0, r.ActivityScore)
}

func TestNormalize_MetadataFlattening(t *testing.T) {
	level := 2
	meta := &domain.ProjectMetadata{
		Title:  "OWASP Example",
		Level:  &level,
		Pitch:  "One line.",
		Tags:   []string{"web"},
		Region: "Europe",
	}
	prs := 3
	r := Normalize(domain.RepositorySummary{Name: "www-project-example", Language: "Python"}, nil, &prs, meta)

	assert.Equal(t, "OWASP Example", r.Title)
	assert.Equal(t, 2, *r.Level)
	assert.Equal(t, "One line.", r.Pitch)
	assert.Equal(t, []string{"web"}, r.Tags)
	assert.Equal(t, "Europe", r.Region)
	assert.Equal(t, 3, *r.OpenPRCount)
	assert.Equal(t, "Python", r.Language)
	assert.True(t, r.IsProject)
}
