package readinglog

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/zombar/readinglog/models"
)

// Extractor parses raw HTML into structured article fields.
type Extractor struct {
	config Config
}

// NewExtractor creates an Extractor.
func NewExtractor(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract locates title, author and the main content block of a fetched page.
//
// The main text comes from a readability pass with a fallback to a paragraph
// heuristic over the parsed tree. Author is taken from structured metadata
// only, never guessed from free text. Pages whose best content block falls
// below MinWordCount fail with KindNoExtractableContent.
func (e *Extractor) Extract(page *models.RawPage) (*models.ExtractedArticle, error) {
	doc, err := html.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, &IngestError{Kind: KindNoExtractableContent, Stage: "extract",
			Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	text := e.readableText(page)
	if text == "" {
		text = mainText(doc)
	}
	text = strings.Join(strings.Fields(text), " ")

	wordCount := len(strings.Fields(text))
	if wordCount < e.config.MinWordCount {
		return nil, &IngestError{Kind: KindNoExtractableContent, Stage: "extract",
			Err: fmt.Errorf("content block has %d words (minimum %d)", wordCount, e.config.MinWordCount)}
	}

	return &models.ExtractedArticle{
		URL:           page.URL,
		Title:         extractTitle(doc),
		Author:        extractAuthor(doc),
		Text:          text,
		WordCount:     wordCount,
		LinkTextRatio: linkTextRatio(doc),
		Keywords:      extractKeywords(doc),
	}, nil
}

// readableText runs the boilerplate-stripping readability pass. A failure
// here is not fatal: the caller falls back to the paragraph heuristic.
func (e *Extractor) readableText(page *models.RawPage) string {
	parsed, err := url.Parse(page.URL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(page.Body), parsed)
	if err != nil {
		return ""
	}
	return article.TextContent
}

// extractTitle extracts the page title from the parsed document.
// Priority: og:title > twitter:title > h1 > title tag.
func extractTitle(n *html.Node) string {
	var ogTitle, twitterTitle, h1Title, htmlTitle string

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				var property, name, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "property":
						property = strings.ToLower(attr.Val)
					case "name":
						name = strings.ToLower(attr.Val)
					case "content":
						content = attr.Val
					}
				}
				if property == "og:title" && ogTitle == "" {
					ogTitle = content
				} else if name == "twitter:title" && twitterTitle == "" {
					twitterTitle = content
				}
			case "h1":
				if h1Title == "" && n.FirstChild != nil {
					h1Title = textOf(n)
				}
			case "title":
				if htmlTitle == "" && n.FirstChild != nil {
					htmlTitle = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)

	if ogTitle != "" {
		return strings.TrimSpace(ogTitle)
	}
	if twitterTitle != "" {
		return strings.TrimSpace(twitterTitle)
	}
	if htmlTitle != "" {
		return strings.TrimSpace(htmlTitle)
	}
	return strings.TrimSpace(h1Title)
}

// extractAuthor reads the author from meta tags. There is no free-text
// fallback: a page without author metadata stores no author.
func extractAuthor(n *html.Node) string {
	var author string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, property, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "name":
					name = strings.ToLower(attr.Val)
				case "property":
					property = strings.ToLower(attr.Val)
				case "content":
					content = attr.Val
				}
			}
			if author == "" && content != "" && (name == "author" || property == "article:author") {
				author = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(author)
}

// extractKeywords collects tag candidates from the meta keywords element.
func extractKeywords(n *html.Node) []string {
	var keywords []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "name":
					name = strings.ToLower(attr.Val)
				case "content":
					content = attr.Val
				}
			}
			if name == "keywords" && content != "" && len(keywords) == 0 {
				for _, kw := range strings.Split(content, ",") {
					if kw = strings.TrimSpace(kw); kw != "" {
						keywords = append(keywords, kw)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return keywords
}

// boilerplate elements skipped while collecting article text
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"form":     true,
	"iframe":   true,
}

// mainText is the fallback content heuristic: prefer an article/main
// container (or a div with an article-like class), join its paragraph text,
// and fall back to all paragraphs on the page.
func mainText(doc *html.Node) string {
	container := findContentContainer(doc)
	if container == nil {
		container = doc
	}

	paragraphs := collectParagraphs(container)
	if len(paragraphs) == 0 && container != doc {
		paragraphs = collectParagraphs(doc)
	}
	return strings.Join(paragraphs, " ")
}

// findContentContainer locates the most likely main-content element.
func findContentContainer(n *html.Node) *html.Node {
	var article, main, classed *html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "article":
				if article == nil {
					article = n
				}
			case "main":
				if main == nil {
					main = n
				}
			case "div":
				if classed == nil && hasContentClass(n) {
					classed = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)

	if article != nil {
		return article
	}
	if main != nil {
		return main
	}
	return classed
}

func hasContentClass(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(strings.ToLower(attr.Val)) {
			switch class {
			case "content", "article", "post", "entry-content", "article-body":
				return true
			}
		}
	}
	return false
}

// collectParagraphs gathers the text of every non-boilerplate <p> under n.
func collectParagraphs(n *html.Node) []string {
	var paragraphs []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipElements[n.Data] {
				return
			}
			if n.Data == "p" {
				if text := textOf(n); text != "" {
					paragraphs = append(paragraphs, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return paragraphs
}

// textOf extracts the trimmed text content of a node and its children.
func textOf(n *html.Node) string {
	var parts []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.Join(parts, " ")
}

// linkTextRatio computes the share of body words that sit inside anchors.
func linkTextRatio(doc *html.Node) float64 {
	var totalWords, linkWords int
	var f func(n *html.Node, inLink bool)
	f = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode {
			if skipElements[n.Data] {
				return
			}
			if n.Data == "a" {
				inLink = true
			}
		}
		if n.Type == html.TextNode {
			words := len(strings.Fields(n.Data))
			totalWords += words
			if inLink {
				linkWords += words
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c, inLink)
		}
	}
	f(doc, false)

	if totalWords == 0 {
		return 0
	}
	return float64(linkWords) / float64(totalWords)
}
