package readinglog

import (
	"fmt"

	"github.com/zombar/readinglog/models"
)

// Classify decides whether an extracted article is worth summarizing and
// storing. It is pure and deterministic given the configured thresholds, so
// it runs before any paid summarization call.
//
// Rejections carry KindUnreadable: articles below MinWordCount, above
// MaxWordCount (rejected rather than truncated, to keep summarization cost
// bounded), and pages whose link-text share marks them as listing or index
// pages rather than articles.
func Classify(article *models.ExtractedArticle, config Config) error {
	if article.WordCount < config.MinWordCount {
		return &IngestError{Kind: KindUnreadable, Stage: "classify",
			Err: fmt.Errorf("article too short: %d words (minimum %d)", article.WordCount, config.MinWordCount)}
	}
	if article.WordCount > config.MaxWordCount {
		return &IngestError{Kind: KindUnreadable, Stage: "classify",
			Err: fmt.Errorf("article too long: %d words (maximum %d)", article.WordCount, config.MaxWordCount)}
	}
	if article.LinkTextRatio > config.MaxLinkTextRatio {
		return &IngestError{Kind: KindUnreadable, Stage: "classify",
			Err: fmt.Errorf("page looks like a listing: %.0f%% of text is links", article.LinkTextRatio*100)}
	}
	return nil
}
