package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Defaults used when the API omits the parent podcast fields on an episode.
const (
	DefaultPodcastSlug = "105-behind-the-bastards"
	DefaultPodcastID   = 29236323
)

// Episode represents one podcast episode as returned by the catalog API.
type Episode struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PodcastID   int64  `json:"podcastId"`
	PodcastSlug string `json:"podcastSlug"`

	// StartDate is the air timestamp in milliseconds since epoch. Zero or
	// negative means the API did not provide one.
	StartDate int64 `json:"startDate"`

	// Duration is the episode length in seconds.
	Duration int64 `json:"duration"`

	// Description is the raw HTML description attached by the API.
	Description string `json:"description"`

	// PageURL is set by feed sources that already know the episode page
	// link. When empty the canonical URL is derived from the other fields.
	PageURL string `json:"-"`
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts free text into a URL-friendly slug: lowercase, runs of
// non-alphanumerics replaced by single hyphens, no leading/trailing hyphens.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugInvalid.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return slugHyphens.ReplaceAllString(s, "-")
}

// CanonicalURL returns the episode page URL used as the dedup key across
// runs. It is a pure function of the episode's fields: the same episode
// always yields the same URL.
func (e Episode) CanonicalURL() string {
	if e.PageURL != "" {
		return e.PageURL
	}

	slug := e.PodcastSlug
	if slug == "" {
		slug = DefaultPodcastSlug
	}
	pid := e.PodcastID
	if pid == 0 {
		pid = DefaultPodcastID
	}

	return fmt.Sprintf("https://www.iheart.com/podcast/%s-%d/episode/%s-%d/",
		slug, pid, Slugify(e.Title), e.ID)
}

// FormatDate renders the air date as "Month DD, YYYY", or "Unknown Date"
// when the timestamp is absent.
func (e Episode) FormatDate() string {
	if e.StartDate <= 0 {
		return "Unknown Date"
	}
	return time.UnixMilli(e.StartDate).Format("January 02, 2006")
}

// Filename returns the record filename for this episode:
// <YYYY-MM-DD>_<title-slug>.txt, with "Unknown-Date" when the timestamp is
// absent.
func (e Episode) Filename() string {
	date := "Unknown-Date"
	if e.StartDate > 0 {
		date = time.UnixMilli(e.StartDate).Format("2006-01-02")
	}
	return date + "_" + Slugify(e.Title) + ".txt"
}

// LengthMinutes returns the episode duration in whole minutes.
func (e Episode) LengthMinutes() int64 {
	return e.Duration / 60
}
