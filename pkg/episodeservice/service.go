package episodeservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"btb-downloader/pkg/archive"
	"btb-downloader/pkg/catalog"
	"btb-downloader/pkg/config"
	"btb-downloader/pkg/content"
	"btb-downloader/pkg/domain"
	"btb-downloader/pkg/httpclient"
)

// Service drives one archiving run: build the on-disk index, fetch the
// catalog, then capture each episode that is new or stale. Strictly
// sequential on purpose; the remote service rate-limits aggressively.
type Service struct {
	cfg     config.Config
	client  *httpclient.Client
	sources []catalog.Source
	logger  zerolog.Logger
	delay   time.Duration
}

// New wires a service from config: the API fetcher first, the RSS feed as a
// fallback source when configured.
func New(cfg config.Config, logger zerolog.Logger) *Service {
	client := httpclient.New(cfg.Feed.UserAgent)
	filter := catalog.NewTitleFilter(cfg.Feed.ExcludePhrase)
	delay := time.Duration(cfg.Output.DelaySeconds * float64(time.Second))

	sources := []catalog.Source{
		catalog.NewAPIFetcher(client, cfg.Feed.APIBaseURL, cfg.Feed.PageSize, filter, delay, logger),
	}
	if cfg.Feed.FeedURL != "" {
		sources = append(sources, catalog.NewRSSFetcher(cfg.Feed.FeedURL, filter, logger))
	}

	return &Service{
		cfg:     cfg,
		client:  client,
		sources: sources,
		logger:  logger,
		delay:   delay,
	}
}

// Run performs one full archiving pass. A catalog-level failure aborts the
// run; a single failing episode is logged and skipped.
func (s *Service) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	idx, err := archive.BuildIndex(s.cfg.Output.Dir)
	if err != nil {
		return err
	}
	s.logger.Info().
		Int("known", len(idx.Known)).
		Int("stale", len(idx.Stale)).
		Msg("archive index built")

	episodes, err := s.fetchCatalog(ctx)
	if err != nil {
		return err
	}
	s.logger.Info().Int("episodes", len(episodes)).Msg("catalog fetched")

	saved := 0
	failed := 0
	for i, ep := range episodes {
		url := ep.CanonicalURL()
		progress := fmt.Sprintf("%d/%d", i+1, len(episodes))

		switch {
		case idx.Has(url) && !idx.IsStale(url):
			s.logger.Info().Str("title", ep.Title).Str("episode", progress).
				Msg("skipping already archived episode")
			continue
		case idx.IsStale(url):
			s.logger.Info().Str("title", ep.Title).Str("episode", progress).
				Msg("updating outdated episode")
		default:
			s.logger.Info().Str("title", ep.Title).Str("episode", progress).
				Msg("processing new episode")
		}

		if err := s.processEpisode(ctx, ep, url, idx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			s.logger.Error().Err(err).Str("url", url).Msg("failed to process episode")
			continue
		}
		saved++

		if i < len(episodes)-1 {
			if err := sleep(ctx, s.delay); err != nil {
				return err
			}
		}
	}

	s.logger.Info().Int("saved", saved).Int("failed", failed).Msg("run complete")
	return nil
}

// fetchCatalog tries each configured source in order and returns the first
// non-empty result, mirroring how unreachable feeds fall through to the
// next parser.
func (s *Service) fetchCatalog(ctx context.Context) ([]domain.Episode, error) {
	var lastErr error
	for _, src := range s.sources {
		episodes, err := src.Fetch(ctx, s.cfg.Output.Limit)
		if err != nil {
			lastErr = err
			s.logger.Warn().Err(err).Msg("catalog source failed")
			continue
		}
		if len(episodes) == 0 {
			lastErr = errors.New("catalog source returned no episodes")
			continue
		}
		return episodes, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no catalog sources configured")
	}
	return nil, fmt.Errorf("all catalog sources failed: %w", lastErr)
}

func (s *Service) processEpisode(ctx context.Context, ep domain.Episode, url string, idx *archive.Index) error {
	body, err := s.client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch episode page: %w", err)
	}
	page := string(body)

	transcript, err := content.ExtractTranscript(page)
	if err != nil {
		return fmt.Errorf("extract transcript: %w", err)
	}

	summary, err := content.SanitizeDescription(ep.Description)
	if err != nil {
		summary = ""
	}
	if strings.TrimSpace(summary) == "" {
		// Best-effort recovery from the page itself; an empty summary is
		// not worth failing the episode over.
		if text, err := content.PageSummary(page); err == nil {
			summary = text
		}
	}

	path, err := archive.WriteRecord(s.cfg.Output.Dir, ep, summary, transcript)
	if err != nil {
		return err
	}

	idx.MarkCurrent(url)
	s.logger.Info().Str("title", ep.Title).Str("path", path).Msg("saved episode")
	return nil
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
