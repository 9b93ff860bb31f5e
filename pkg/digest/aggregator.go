package digest

import (
	"context"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/umputun/feed-digest/pkg/domain"
	"github.com/umputun/feed-digest/pkg/store"
)

// Fetcher retrieves raw feed content
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Parser turns raw feed bytes into normalized entries
type Parser interface {
	Parse(data []byte) (*domain.ParsedFeed, error)
}

// Aggregator runs the fetch-parse-filter-dedup pipeline over configured feeds
type Aggregator struct {
	fetcher     Fetcher
	parser      Parser
	concurrency int

	nowFn func() time.Time // replaced in tests
}

// FeedArticles is one feed's qualifying articles, newest first
type FeedArticles struct {
	Title    string
	Articles []domain.Article
}

// Result is a complete run outcome. Feeds and Failed both keep the input
// feed order; Total is the number of articles across all feeds.
type Result struct {
	Feeds  []FeedArticles
	Failed []string
	Total  int
}

// NewAggregator creates an aggregator; concurrency bounds the fetch phase
func NewAggregator(fetcher Fetcher, parser Parser, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{fetcher: fetcher, parser: parser, concurrency: concurrency, nowFn: time.Now}
}

// Process fetches all feeds and collects articles newer than maxAgeDays that
// are not in the seen set yet. Fetching and parsing run concurrently, but
// accepted entries are committed against the shared seen set strictly in
// input feed order, so a link shared by two feeds stays with the earliest
// one. Accepted links go into the seen set as a side effect; failed feeds
// never abort the run.
func (a *Aggregator) Process(ctx context.Context, urls []string, seen *store.SeenSet, maxAgeDays int) *Result {
	// single cutoff instant for the whole run
	cutoff := a.nowFn().UTC().AddDate(0, 0, -maxAgeDays)

	type outcome struct {
		feed *domain.ParsedFeed
		err  error
	}
	outcomes := make([]outcome, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, url := range urls {
		g.Go(func() error {
			data, err := a.fetcher.Fetch(gctx, url)
			if err != nil {
				outcomes[i] = outcome{err: err}
				return nil
			}
			parsedFeed, err := a.parser.Parse(data)
			outcomes[i] = outcome{feed: parsedFeed, err: err}
			return nil
		})
	}
	_ = g.Wait() // per-feed errors degrade to failure-list entries

	res := &Result{}
	for i, url := range urls {
		if outcomes[i].err != nil {
			log.Printf("[WARN] feed %s failed: %v", url, outcomes[i].err)
			res.Failed = append(res.Failed, url)
			continue
		}

		articles := accept(outcomes[i].feed, seen, cutoff)
		if len(articles) == 0 {
			log.Printf("[DEBUG] no new articles in %s", url)
			continue
		}

		// newest first, stable so same-time entries keep feed order
		sort.SliceStable(articles, func(k, j int) bool { return articles[k].Published.After(articles[j].Published) })
		res.Feeds = append(res.Feeds, FeedArticles{Title: outcomes[i].feed.Title, Articles: articles})
		res.Total += len(articles)
	}

	return res
}

// accept keeps entries with a link, a resolvable date and a publication time
// at or after cutoff, skipping anything already seen. Accepted links are
// added to the seen set immediately, which also dedups a link repeated
// within the same feed.
func accept(parsedFeed *domain.ParsedFeed, seen *store.SeenSet, cutoff time.Time) []domain.Article {
	var articles []domain.Article
	for _, entry := range parsedFeed.Items {
		if entry.Link == "" || seen.Has(entry.Link) {
			continue
		}
		if entry.Published.IsZero() {
			continue
		}
		if entry.Published.Before(cutoff) {
			continue
		}
		seen.Add(entry.Link)
		articles = append(articles, domain.Article{Title: entry.Title, Link: entry.Link, Published: entry.Published})
	}
	return articles
}
