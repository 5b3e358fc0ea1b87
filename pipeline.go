package readinglog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zombar/readinglog/llm"
	"github.com/zombar/readinglog/metrics"
	"github.com/zombar/readinglog/models"
	"github.com/zombar/readinglog/slug"
	"github.com/zombar/readinglog/storage"
)

// Pipeline turns a submitted URL into a stored, enriched article record:
// fetch, extract, classify, then summarize and tag concurrently, then
// persist. Concurrent submissions of the same URL are collapsed into a
// single execution whose result every caller shares.
type Pipeline struct {
	config     Config
	fetcher    *Fetcher
	extractor  *Extractor
	summarizer llm.Summarizer
	repo       Repository
	snapshots  *storage.Storage
	metrics    *metrics.Pipeline
	logger     *slog.Logger

	// group deduplicates in-flight ingestions by URL; singleflight clears
	// each key once its execution completes.
	group singleflight.Group
}

// NewPipeline creates a Pipeline. snapshots and pipelineMetrics may be nil to
// disable snapshotting and instrumentation respectively.
func NewPipeline(config Config, repo Repository, summarizer llm.Summarizer,
	snapshots *storage.Storage, pipelineMetrics *metrics.Pipeline, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		config:     config,
		fetcher:    NewFetcher(config),
		extractor:  NewExtractor(config),
		summarizer: summarizer,
		repo:       repo,
		snapshots:  snapshots,
		metrics:    pipelineMetrics,
		logger:     logger,
	}
}

// Ingest processes a URL submission and returns the stored record.
//
// Re-submitting a known URL returns the existing record without refetching.
// If an ingestion for the same URL is already in flight, the caller joins it
// instead of starting a duplicate fetch. The shared execution runs beyond
// any single caller's cancellation so joined callers still get a result.
func (p *Pipeline) Ingest(ctx context.Context, rawURL string) (*models.Article, error) {
	existing, err := p.repo.FindByURL(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("repository lookup failed: %w", err)
	}
	if existing != nil {
		p.metrics.ObserveIngest("existing")
		return existing, nil
	}

	ch := p.group.DoChan(rawURL, func() (interface{}, error) {
		execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.IngestTimeout)
		defer cancel()
		return p.ingest(execCtx, rawURL)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Article), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ingest runs the pipeline stages for one URL.
func (p *Pipeline) ingest(ctx context.Context, rawURL string) (*models.Article, error) {
	p.metrics.IngestStarted()
	defer p.metrics.IngestFinished()

	page, err := p.fetchWithRetry(ctx, rawURL)
	if err != nil {
		p.metrics.ObserveIngest(outcomeOf(err))
		return nil, err
	}

	start := time.Now()
	extracted, err := p.extractor.Extract(page)
	p.metrics.ObserveStage("extract", time.Since(start).Seconds())
	if err != nil {
		p.metrics.ObserveIngest(outcomeOf(err))
		return nil, err
	}

	if err := Classify(extracted, p.config); err != nil {
		p.metrics.ObserveIngest(outcomeOf(err))
		return nil, err
	}

	// Summarization and tagging are independent, so they run concurrently;
	// persistence waits for both. Either failing degrades the record
	// instead of aborting the ingestion.
	var (
		summary   *string
		llmTags   []string
		localTags []string
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		summary, llmTags = p.summarize(ctx, rawURL, extracted.Text)
	}()
	go func() {
		defer wg.Done()
		localTags = DeriveTags(extracted.Text, extracted.Keywords, p.config.MaxTags)
	}()
	wg.Wait()

	tags := DeriveTags("", append(llmTags, localTags...), p.config.MaxTags)

	record := &models.Article{
		URL:          rawURL,
		Title:        optional(extracted.Title),
		Author:       optional(extracted.Author),
		Content:      extracted.Text,
		Summary:      summary,
		Tags:         tags,
		WordCount:    extracted.WordCount,
		SnapshotPath: p.saveSnapshot(rawURL, page),
	}

	start = time.Now()
	stored, err := p.repo.Insert(ctx, record)
	p.metrics.ObserveStage("persist", time.Since(start).Seconds())
	if errors.Is(err, ErrDuplicateURL) {
		// Lost the insert race to another process; the existing record is
		// the result.
		existing, lookupErr := p.repo.FindByURL(ctx, rawURL)
		if lookupErr == nil && existing != nil {
			p.metrics.ObserveIngest("duplicate")
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		p.metrics.ObserveIngest("persist_error")
		return nil, fmt.Errorf("failed to persist article: %w", err)
	}

	p.metrics.ObserveIngest("stored")
	p.logger.Info("article ingested",
		"url", rawURL,
		"id", stored.ID,
		"word_count", stored.WordCount,
		"summary_present", stored.Summary != nil,
		"tags", len(stored.Tags),
	)
	return stored, nil
}

// fetchWithRetry fetches the page, retrying transient network failures a
// bounded number of times. InvalidURL and ContentTooLarge never retry.
func (p *Pipeline) fetchWithRetry(ctx context.Context, rawURL string) (*models.RawPage, error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveStage("fetch", time.Since(start).Seconds())
	}()

	var page *models.RawPage
	err := retryTransient(ctx, p.config.FetchRetries, p.config.RetryBackoff, func() error {
		var fetchErr error
		page, fetchErr = p.fetcher.Fetch(ctx, rawURL)
		return fetchErr
	})
	return page, err
}

// summarize calls the summarization backend with bounded retries for
// transient failures. On terminal failure it returns an absent summary; the
// record is still valuable without one.
func (p *Pipeline) summarize(ctx context.Context, rawURL, text string) (*string, []string) {
	if p.summarizer == nil {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		p.metrics.ObserveStage("summarize", time.Since(start).Seconds())
	}()

	var result *llm.Result
	err := retryTransient(ctx, p.config.SummaryRetries, p.config.RetryBackoff, func() error {
		var sumErr error
		result, sumErr = p.summarizer.Summarize(ctx, text)
		return sumErr
	})
	if err != nil {
		p.metrics.ObserveIngest(string(KindSummarizationFailed))
		p.logger.Warn("summarization failed, storing degraded record",
			"url", rawURL, "provider", p.summarizer.Name(), "error", err)
		return nil, nil
	}

	return &result.Summary, result.Tags
}

// saveSnapshot best-effort persists the raw page HTML. Snapshot failures
// never fail an ingestion.
func (p *Pipeline) saveSnapshot(rawURL string, page *models.RawPage) string {
	if p.snapshots == nil {
		return ""
	}
	path, err := p.snapshots.SaveSnapshot(page.Body, slug.FromURL(rawURL))
	if err != nil {
		p.logger.Warn("failed to save page snapshot", "url", rawURL, "error", err)
		return ""
	}
	return path
}

// outcomeOf maps an error to a metrics outcome label.
func outcomeOf(err error) string {
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

// optional converts an extraction result to a nullable field: empty strings
// mean the value could not be determined and must not be fabricated.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
