package models

import (
	"math"
	"time"
)

// Words-per-minute figure used for the estimated read time.
const readingSpeedWPM = 225

// Article represents a stored, enriched web article.
//
// Title, Author and Summary are pointers so that "absent" is distinguishable
// from "empty": extraction never fabricates a title or author, and a record
// may be stored without a summary when the summarization backend failed.
type Article struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     *string   `json:"title"`
	Author    *string   `json:"author"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary,omitempty"`
	Tags      []string  `json:"tags"`
	WordCount int       `json:"word_count"`
	HasRead   bool      `json:"has_read"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// SnapshotPath locates the raw HTML snapshot in filesystem storage;
	// empty when no snapshot was kept.
	SnapshotPath string `json:"snapshot_path,omitempty"`
}

// ReadTimeMinutes estimates reading time from the word count.
func (a *Article) ReadTimeMinutes() int {
	if a.WordCount <= 0 {
		return 0
	}
	minutes := int(math.Round(float64(a.WordCount) / readingSpeedWPM))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// RawPage is the fetched, charset-decoded body of a web page before
// extraction.
type RawPage struct {
	URL         string
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}

// ExtractedArticle holds the structured fields parsed out of a RawPage.
type ExtractedArticle struct {
	URL       string
	Title     string // empty when the page has no determinable title
	Author    string // empty unless present in structured metadata
	Text      string
	WordCount int
	// LinkTextRatio is the share of words that live inside anchor tags.
	// Listing and index pages score high here.
	LinkTextRatio float64
	// Keywords are tag candidates taken from the page's meta keywords.
	Keywords []string
}
