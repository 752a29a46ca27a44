// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// RepositorySummary is one repository as reported by the organization
// listing. It carries only the base fields; everything else is merged in
// later by the enrichment pipeline.
type RepositorySummary struct {
	Name          string
	Owner         string
	FullName      string
	Description   string
	HTMLURL       string
	Stars         int
	Forks         int
	OpenIssues    int // as reported by the host listing; may include PRs
	Language      string
	Archived      bool
	DefaultBranch string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProjectMetadata is the front-matter header of a repository's index.md.
// Every field is optional; a zero value means the key was missing or
// could not be coerced.
type ProjectMetadata struct {
	Title   string
	Level   *int // 1..4, nil when missing or out of range
	Pitch   string
	Type    string
	Region  string
	Country string
	Tags    []string
}

// EnrichedRepository is the terminal record handed to the renderer. It is
// built once per repository after all enrichment attempts settle and is
// never mutated afterwards.
//
// Sparkline and OpenPRCount use nil to mean "unknown": a failed or skipped
// fetch must render differently from a genuine zero, so both serialize as
// JSON null when absent.
type EnrichedRepository struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	OpenIssues    int       `json:"open_issues_count"`
	OpenPRCount   *int      `json:"open_prs_count"`
	Language      string    `json:"language"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	IsProject     bool      `json:"is_project"`
	IsChapter     bool      `json:"is_chapter"`
	Sparkline     []int     `json:"sparkline"`
	ActivityScore int       `json:"activity_score"`
	WeeklyMean    float64   `json:"weekly_mean"`

	// Flattened index.md front matter.
	Title   string   `json:"title"`
	Level   *int     `json:"level"`
	Pitch   string   `json:"pitch"`
	Type    string   `json:"type"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Tags    []string `json:"tags"`
}
