package readinglog

import "time"

// Config contains pipeline configuration. The word-count thresholds and
// retry parameters are deliberately configuration rather than constants;
// DefaultConfig documents the defaults.
type Config struct {
	HTTPTimeout  time.Duration // connect/read timeout for page fetches
	MaxBodyBytes int64         // response body cap; exceeding it rejects the page
	UserAgent    string

	MinWordCount     int     // below this, extraction yields no usable article
	MaxWordCount     int     // above this, the article is rejected, never truncated
	MaxLinkTextRatio float64 // link-text share above which a page is treated as a listing

	MaxTags int // cap on stored tags per article

	FetchRetries   int           // extra attempts for transient fetch failures
	SummaryRetries int           // extra attempts for transient summarization failures
	RetryBackoff   time.Duration // initial backoff between retry attempts

	IngestTimeout time.Duration // wall-clock bound for one whole ingestion
}

// DefaultConfig returns default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout:      30 * time.Second,
		MaxBodyBytes:     5 * 1024 * 1024, // 5MB page cap
		UserAgent:        "Mozilla/5.0 (compatible; readinglog/1.0)",
		MinWordCount:     50,
		MaxWordCount:     5000,
		MaxLinkTextRatio: 0.5,
		MaxTags:          8,
		FetchRetries:     2,
		SummaryRetries:   2,
		RetryBackoff:     500 * time.Millisecond,
		IngestTimeout:    2 * time.Minute,
	}
}
