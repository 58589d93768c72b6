package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"btb-downloader/pkg/domain"
)

var errEmptyFeed = errors.New("feed contains no items")

// RSSFetcher builds the episode catalog from the podcast's RSS feed. It is a
// fallback for when the JSON API is unreachable; feed items carry their
// episode page link directly, so canonical URLs stay stable.
type RSSFetcher struct {
	parser  *gofeed.Parser
	logger  zerolog.Logger
	feedURL string
	filter  TitleFilter
}

// NewRSSFetcher creates an RSS catalog source for the given feed URL.
func NewRSSFetcher(feedURL string, filter TitleFilter, logger zerolog.Logger) *RSSFetcher {
	return &RSSFetcher{
		parser:  gofeed.NewParser(),
		logger:  logger,
		feedURL: feedURL,
		filter:  filter,
	}
}

// Fetch parses the feed and returns at most limit filtered episodes in feed
// order (newest first in every podcast feed that matters here).
func (f *RSSFetcher) Fetch(ctx context.Context, limit int) ([]domain.Episode, error) {
	feed, err := f.parser.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse podcast feed: %w", err)
	}

	episodes, err := episodesFromFeed(feed, f.filter, limit)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().Int("episodes", len(episodes)).Msg("episodes from RSS feed")
	return episodes, nil
}

func episodesFromFeed(feed *gofeed.Feed, filter TitleFilter, limit int) ([]domain.Episode, error) {
	if feed == nil || len(feed.Items) == 0 {
		return nil, errEmptyFeed
	}

	episodes := make([]domain.Episode, 0, limit)
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		ep := domain.Episode{
			Title:       item.Title,
			Description: item.Description,
			PageURL:     item.Link,
		}
		if item.PublishedParsed != nil {
			ep.StartDate = item.PublishedParsed.UnixMilli()
		}
		if item.ITunesExt != nil {
			ep.Duration = parseDurationSeconds(item.ITunesExt.Duration)
		}

		if !filter.Keep(ep) {
			continue
		}
		episodes = append(episodes, ep)
		if len(episodes) == limit {
			break
		}
	}

	if len(episodes) == 0 {
		return nil, errEmptyFeed
	}
	return episodes, nil
}

// parseDurationSeconds handles both itunes:duration forms: plain seconds
// ("5400") and clock notation ("1:30:00" or "30:00"). Unparseable input
// yields zero rather than an error.
func parseDurationSeconds(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if !strings.Contains(raw, ":") {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}

	var total int64
	for _, part := range strings.Split(raw, ":") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}
