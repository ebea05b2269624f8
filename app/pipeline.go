// Package app wires the aggregation pipeline: concurrent fetch, per-feed
// normalization, whole-set filtering, final ordering, rendering.
package app

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"cyberbites/domain"
	"cyberbites/internal/aggregate"
	"cyberbites/internal/filter"
)

// Options fix the per-run pipeline behavior. All fields are immutable once
// the run starts.
type Options struct {
	Window   domain.TimeWindow
	Policies []domain.KeywordPolicy
	Order    aggregate.Order
	Workers  int
}

// FeedFailure records a feed that contributed no articles, for the
// end-of-run summary.
type FeedFailure struct {
	Source domain.FeedSource
	Kind   domain.FailureKind
	Err    error
}

// Result is what a completed run hands back to the command layer.
type Result struct {
	Report   domain.Report
	Written  []string
	Failures []FeedFailure
}

type Pipeline struct {
	fetcher    domain.Fetcher
	normalizer domain.Normalizer
	renderers  []domain.Renderer
	opts       Options
}

func NewPipeline(fetcher domain.Fetcher, normalizer domain.Normalizer, renderers []domain.Renderer, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Pipeline{fetcher: fetcher, normalizer: normalizer, renderers: renderers, opts: opts}
}

// Run executes one aggregation pass. Per-feed failures are absorbed into the
// result; only rendering problems surface as an error.
func (p *Pipeline) Run(ctx context.Context, sources []domain.FeedSource, meta domain.ReportMeta) (*Result, error) {
	results := p.fetchAll(ctx, sources)

	res := &Result{}
	var articles []domain.Article
	for _, fr := range results {
		if !fr.OK() {
			log.WithFields(log.Fields{"feed": fr.Source.Name, "kind": fr.Kind.String()}).Warn("feed skipped")
			res.Failures = append(res.Failures, FeedFailure{Source: fr.Source, Kind: fr.Kind, Err: fr.Err})
			continue
		}
		entries, err := p.normalizer.Normalize(fr)
		if err != nil {
			log.WithFields(log.Fields{"feed": fr.Source.Name, "kind": domain.FailureMalformed.String()}).Warn("feed skipped")
			res.Failures = append(res.Failures, FeedFailure{Source: fr.Source, Kind: domain.FailureMalformed, Err: err})
			continue
		}
		log.WithFields(log.Fields{"feed": fr.Source.Name, "entries": len(entries)}).Debug("feed normalized")
		articles = append(articles, entries...)
	}

	articles = filter.Window(articles, p.opts.Window)
	for _, policy := range p.opts.Policies {
		articles = filter.Keywords(articles, policy)
	}

	res.Report = domain.Report{
		Meta:        meta,
		Window:      p.opts.Window,
		GeneratedAt: time.Now().UTC(),
		Articles:    aggregate.Finalize(articles, p.opts.Order),
	}

	for _, r := range p.renderers {
		path, err := r.Render(res.Report)
		if err != nil {
			return nil, err
		}
		res.Written = append(res.Written, path)
	}
	return res, nil
}

// fetchAll retrieves every source through a bounded worker pool. Each task
// owns its own result slot, so completion order never matters and no failure
// crosses task boundaries.
func (p *Pipeline) fetchAll(ctx context.Context, sources []domain.FeedSource) []domain.FetchResult {
	results := make([]domain.FetchResult, len(sources))
	jobs := make(chan int)

	workers := p.opts.Workers
	if workers > len(sources) {
		workers = len(sources)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.fetcher.Fetch(ctx, sources[i])
			}
		}()
	}
	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
