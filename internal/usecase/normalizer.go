package usecase

import (
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/owasp-bumper/repolist/internal/domain"
)

// unknownLanguage is the sentinel shown when the host reports no primary
// language.
const unknownLanguage = "N/A"

// Normalize merges a repository summary with its optional enrichment
// results into the final record. It is a pure function: given the same
// inputs it produces the same record, and it performs no I/O.
//
// Defaulting rules: direct host fields fall back to "" / 0, but the
// separately fetched PR count and commit series keep nil when absent so
// the renderer can show "unknown" instead of a misleading zero.
func Normalize(s domain.RepositorySummary, weeks []int, prCount *int, meta *domain.ProjectMetadata) domain.EnrichedRepository {
	r := domain.EnrichedRepository{
		Name:        s.Name,
		FullName:    s.FullName,
		Description: s.Description,
		HTMLURL:     s.HTMLURL,
		Stars:       s.Stars,
		Forks:       s.Forks,
		OpenIssues:  s.OpenIssues,
		OpenPRCount: prCount,
		Language:    s.Language,
		Archived:    s.Archived,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Sparkline:   weeks,
		IsProject:   strings.Contains(strings.ToLower(s.Name), "www-project"),
		IsChapter:   strings.Contains(strings.ToLower(s.Name), "www-chapter"),
	}
	if r.Language == "" {
		r.Language = unknownLanguage
	}
	if len(weeks) > 0 {
		r.ActivityScore, r.WeeklyMean = summarizeSeries(weeks)
	}
	if meta != nil {
		r.Title = meta.Title
		r.Level = meta.Level
		r.Pitch = meta.Pitch
		r.Type = meta.Type
		r.Region = meta.Region
		r.Country = meta.Country
		r.Tags = meta.Tags
	}
	return r
}

// summarizeSeries reduces the weekly commit series to the total commit
// count ("activity score") and the mean commits per week, rounded to two
// decimals.
func summarizeSeries(weeks []int) (int, float64) {
	data := stats.LoadRawData(weeks)
	sum, err := stats.Sum(data)
	if err != nil {
		return 0, 0
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return int(sum), 0
	}
	return int(sum), math.Round(mean*100) / 100
}
