// Package usecase contains the business logic of the application.
package usecase

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/owasp-bumper/repolist/internal/domain"
	"github.com/owasp-bumper/repolist/internal/gateway"
)

// Options controls which enrichments run and how wide the fan-out is.
type Options struct {
	// Workers bounds the number of repositories enriched concurrently.
	Workers int
	// Sparklines enables the weekly commit series fetch.
	Sparklines bool
	// Metadata enables the index.md and open-PR count fetches.
	Metadata bool
}

const defaultWorkers = 10

// Enricher runs the per-repository enrichment fan-out and merges the
// results into the final record set.
type Enricher struct {
	fetcher  gateway.Fetcher
	governor *gateway.Governor
	logger   *logrus.Logger
	opts     Options
}

// NewEnricher creates an Enricher. A Workers value below 1 falls back to
// the default.
func NewEnricher(fetcher gateway.Fetcher, governor *gateway.Governor, logger *logrus.Logger, opts Options) *Enricher {
	if opts.Workers < 1 {
		opts.Workers = defaultWorkers
	}
	return &Enricher{
		fetcher:  fetcher,
		governor: governor,
		logger:   logger,
		opts:     opts,
	}
}

// Enrich resolves all enabled enrichment fetches for every repository and
// returns one record per input summary, in input order. A fetch failure
// for one repository degrades only that repository's record; it never
// cancels or blocks the others, and Enrich itself fails only on context
// cancellation.
func (e *Enricher) Enrich(ctx context.Context, repos []domain.RepositorySummary) ([]domain.EnrichedRepository, error) {
	// Size the quota check to the calls this fan-out is about to issue.
	batch := 0
	if e.opts.Sparklines {
		batch += len(repos)
	}
	if e.opts.Metadata {
		batch += 2 * len(repos)
	}
	if err := e.governor.Wait(ctx, batch); err != nil {
		return nil, err
	}

	out := make([]domain.EnrichedRepository, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.Workers)

	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			// Results land in the repository's original slot, so the
			// completion order of concurrent fetches never reorders the
			// output.
			out[i] = e.enrichOne(egCtx, repo)
			if (i+1)%50 == 0 {
				e.logger.WithFields(logrus.Fields{"done": i + 1, "total": len(repos)}).Info("Enrichment progress")
			}
			return e.governor.Pace(egCtx)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// enrichOne runs the enabled fetchers for a single repository. Each
// failure is logged and recorded as an absent field; nothing escapes.
func (e *Enricher) enrichOne(ctx context.Context, repo domain.RepositorySummary) domain.EnrichedRepository {
	var (
		weeks   []int
		prCount *int
		meta    *domain.ProjectMetadata
	)

	if e.opts.Sparklines {
		w, pending, err := e.fetcher.FetchParticipation(ctx, repo.Owner, repo.Name)
		switch {
		case err != nil:
			e.logger.WithField("repo", repo.FullName).Debugf("Sparkline unavailable: %v", err)
		case pending:
			e.logger.WithField("repo", repo.FullName).Debug("Sparkline still computing, will pick it up next run")
		default:
			weeks = w
		}
	}

	if e.opts.Metadata {
		if n, err := e.fetcher.FetchOpenPRCount(ctx, repo.Owner, repo.Name); err != nil {
			e.logger.WithField("repo", repo.FullName).Debugf("Open PR count unavailable: %v", err)
		} else {
			prCount = &n
		}

		m, err := e.fetcher.FetchProjectMetadata(ctx, repo.Owner, repo.Name, repo.DefaultBranch)
		if err != nil {
			e.logger.WithField("repo", repo.FullName).Debugf("Metadata unavailable: %v", err)
		} else {
			meta = m
		}
	}

	return Normalize(repo, weeks, prCount, meta)
}
