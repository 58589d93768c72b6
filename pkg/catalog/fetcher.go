package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"btb-downloader/pkg/domain"
	"btb-downloader/pkg/httpclient"
)

// Source yields an ordered list of at most limit candidate episodes,
// most recent first.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]domain.Episode, error)
}

// page is one response from the paginated episode API. The next-page cursor
// is usually in pageKey; some responses carry it in links.next instead.
type page struct {
	Data    []domain.Episode `json:"data"`
	PageKey string           `json:"pageKey"`
	Links   struct {
		Next string `json:"next"`
	} `json:"links"`
}

// APIFetcher pages through the episode listing API, accumulating raw entries
// and re-filtering the whole accumulated set after each page.
type APIFetcher struct {
	client   *httpclient.Client
	logger   zerolog.Logger
	baseURL  string
	pageSize int
	filter   TitleFilter
	delay    time.Duration
}

// NewAPIFetcher creates a fetcher. delay is slept between page requests as
// rate-limit courtesy; it is not a retry/backoff mechanism.
func NewAPIFetcher(client *httpclient.Client, baseURL string, pageSize int, filter TitleFilter, delay time.Duration, logger zerolog.Logger) *APIFetcher {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &APIFetcher{
		client:   client,
		logger:   logger,
		baseURL:  baseURL,
		pageSize: pageSize,
		filter:   filter,
		delay:    delay,
	}
}

// Fetch returns the first limit filtered episodes in API order. It stops
// when enough filtered episodes accumulated, when a page comes back empty,
// or when the response carries no next-page cursor. Any transport error is
// fatal for the whole fetch; there are no retries.
func (f *APIFetcher) Fetch(ctx context.Context, limit int) ([]domain.Episode, error) {
	var all, filtered []domain.Episode
	pageKey := ""

	for len(filtered) < limit {
		pageURL, err := f.pageURL(pageKey)
		if err != nil {
			return nil, err
		}

		f.logger.Debug().Int("accumulated", len(all)).Msg("fetching episode page")
		body, err := f.client.Get(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch episode page: %w", err)
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode episode page: %w", err)
		}

		if len(p.Data) == 0 {
			f.logger.Debug().Msg("no more episodes available in API")
			break
		}
		all = append(all, p.Data...)

		// Later pages can change which prefix of the raw set we need, so
		// the filter is re-applied to everything accumulated so far.
		filtered = f.filter.Apply(all)
		f.logger.Debug().Int("filtered", len(filtered)).Msg("filtered episodes so far")
		if len(filtered) >= limit {
			break
		}

		pageKey = p.PageKey
		if pageKey == "" {
			pageKey = p.Links.Next
		}
		if pageKey == "" {
			f.logger.Debug().Msg("no more pages available in API")
			break
		}

		if err := sleep(ctx, f.delay); err != nil {
			return nil, err
		}
	}

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (f *APIFetcher) pageURL(pageKey string) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse API base URL: %w", err)
	}

	q := u.Query()
	q.Set("newEnabled", "false")
	q.Set("limit", strconv.Itoa(f.pageSize))
	q.Set("sortBy", "startDate-desc")
	if pageKey != "" {
		q.Set("pageKey", pageKey)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
