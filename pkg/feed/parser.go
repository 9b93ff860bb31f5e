package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/feed-digest/pkg/domain"
)

// placeholders for feeds and entries that carry no title
const (
	defaultFeedTitle = "Untitled Feed"
	defaultItemTitle = "No Title"
)

// Parser turns raw feed bytes into normalized entries
type Parser struct{}

// NewParser creates a feed parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses RSS/Atom content. A malformed document is an error; bad
// individual entries are normalized with zero values and filtered downstream.
func (p *Parser) Parse(data []byte) (*domain.ParsedFeed, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	result := &domain.ParsedFeed{
		Title: parsed.Title,
		Items: make([]domain.ParsedItem, 0, len(parsed.Items)),
	}
	if result.Title == "" {
		result.Title = defaultFeedTitle
	}

	for _, item := range parsed.Items {
		entry := domain.ParsedItem{Title: item.Title, Link: item.Link}
		if entry.Title == "" {
			entry.Title = defaultItemTitle
		}

		// prefer published time, fall back to updated
		switch {
		case item.PublishedParsed != nil:
			entry.Published = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			entry.Published = *item.UpdatedParsed
		default:
			// gofeed gave up, try our own layouts on the raw strings
			if ts, ok := parseDate(item.Published); ok {
				entry.Published = ts
			} else if ts, ok := parseDate(item.Updated); ok {
				entry.Published = ts
			}
		}

		// normalize to UTC so cutoff comparison and sorting are uniform
		if !entry.Published.IsZero() {
			entry.Published = entry.Published.UTC()
		}

		result.Items = append(result.Items, entry)
	}

	return result, nil
}
