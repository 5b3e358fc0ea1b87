package readinglog

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/zombar/readinglog/models"
)

func parseHTML(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name: "og:title takes priority",
			html: `<html><head>
				<meta property="og:title" content="OG Title">
				<meta name="twitter:title" content="Twitter Title">
				<title>HTML Title</title>
			</head><body><h1>H1 Title</h1></body></html>`,
			expected: "OG Title",
		},
		{
			name: "twitter:title before title tag",
			html: `<html><head>
				<meta name="twitter:title" content="Twitter Title">
				<title>HTML Title</title>
			</head><body></body></html>`,
			expected: "Twitter Title",
		},
		{
			name:     "title tag before h1",
			html:     `<html><head><title>HTML Title</title></head><body><h1>H1 Title</h1></body></html>`,
			expected: "HTML Title",
		},
		{
			name:     "h1 as last resort",
			html:     `<html><head></head><body><h1>H1 Title</h1></body></html>`,
			expected: "H1 Title",
		},
		{
			name:     "no title at all",
			html:     `<html><head></head><body><p>text</p></body></html>`,
			expected: "",
		},
		{
			name:     "whitespace is trimmed",
			html:     `<html><head><title>  Padded Title  </title></head><body></body></html>`,
			expected: "Padded Title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(parseHTML(t, tt.html)); got != tt.expected {
				t.Errorf("extractTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractAuthor(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "meta author",
			html:     `<html><head><meta name="author" content="Jane Roe"></head><body></body></html>`,
			expected: "Jane Roe",
		},
		{
			name:     "article:author property",
			html:     `<html><head><meta property="article:author" content="Sam Smith"></head><body></body></html>`,
			expected: "Sam Smith",
		},
		{
			name:     "no free-text guessing from bylines",
			html:     `<html><body><p>By Someone Famous</p></body></html>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractAuthor(parseHTML(t, tt.html)); got != tt.expected {
				t.Errorf("extractAuthor() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	doc := parseHTML(t, `<html><head>
		<meta name="keywords" content="go, concurrency , ,distributed systems">
	</head><body></body></html>`)

	got := extractKeywords(doc)
	want := []string{"go", "concurrency", "distributed systems"}
	if len(got) != len(want) {
		t.Fatalf("extractKeywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("extractKeywords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLinkTextRatio(t *testing.T) {
	article := parseHTML(t, `<html><body>
		<p>one two three four five six seven eight</p>
		<p><a href="/x">nine ten</a></p>
	</body></html>`)

	got := linkTextRatio(article)
	if got < 0.15 || got > 0.25 {
		t.Errorf("linkTextRatio() = %f, want ~0.2", got)
	}

	listing := parseHTML(t, `<html><body>
		<a href="/1">first article here</a>
		<a href="/2">second article here</a>
	</body></html>`)
	if got := linkTextRatio(listing); got != 1.0 {
		t.Errorf("linkTextRatio() for pure link page = %f, want 1.0", got)
	}
}

func testExtractConfig() Config {
	config := DefaultConfig()
	config.MinWordCount = 5
	return config
}

func TestExtract(t *testing.T) {
	body := `<html>
	<head>
		<title>Understanding Goroutines</title>
		<meta name="author" content="Pat Doe">
		<meta name="keywords" content="go, concurrency">
	</head>
	<body>
		<nav><a href="/">home</a> <a href="/about">about</a></nav>
		<article>
			<p>Goroutines are lightweight threads managed by the Go runtime. They make
			concurrent programming approachable because starting one costs almost nothing
			compared to an operating system thread.</p>
			<p>Channels complement goroutines by providing a way to communicate between
			them without explicit locks, which keeps most programs free of shared-memory
			bugs.</p>
		</article>
		<footer>copyright notice</footer>
	</body>
	</html>`

	extractor := NewExtractor(testExtractConfig())
	page := &models.RawPage{URL: "https://example.com/goroutines", Body: []byte(body)}

	article, err := extractor.Extract(page)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if article.Title != "Understanding Goroutines" {
		t.Errorf("Title = %q, want %q", article.Title, "Understanding Goroutines")
	}
	if article.Author != "Pat Doe" {
		t.Errorf("Author = %q, want %q", article.Author, "Pat Doe")
	}
	if !strings.Contains(article.Text, "lightweight threads") {
		t.Errorf("Text does not contain article content: %q", article.Text)
	}
	if article.WordCount < 30 {
		t.Errorf("WordCount = %d, want at least 30", article.WordCount)
	}
	if len(article.Keywords) != 2 {
		t.Errorf("Keywords = %v, want two entries", article.Keywords)
	}
	if article.URL != page.URL {
		t.Errorf("URL = %q, want %q", article.URL, page.URL)
	}
}

func TestExtractNoContent(t *testing.T) {
	extractor := NewExtractor(DefaultConfig())
	page := &models.RawPage{
		URL:  "https://example.com/empty",
		Body: []byte(`<html><head><title>Empty</title></head><body><p>too short</p></body></html>`),
	}

	_, err := extractor.Extract(page)
	if err == nil {
		t.Fatal("Extract() error = nil, want rejection")
	}
	if got := KindOf(err); got != KindNoExtractableContent {
		t.Errorf("Extract() kind = %q, want %q", got, KindNoExtractableContent)
	}
}

func TestMainTextFallbackPrefersArticleContainer(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<div class="sidebar"><p>sidebar text that should not appear</p></div>
		<article><p>the real story lives here</p></article>
	</body></html>`)

	got := mainText(doc)
	if !strings.Contains(got, "the real story lives here") {
		t.Errorf("mainText() = %q, missing article content", got)
	}
	if strings.Contains(got, "sidebar text") {
		t.Errorf("mainText() = %q, should not include sidebar content", got)
	}
}
