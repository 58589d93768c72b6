package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Feed contains settings for the catalog sources.
type Feed struct {
	// APIBaseURL is the paginated episode listing endpoint.
	APIBaseURL string `toml:"api_base_url"`

	// FeedURL is the podcast RSS feed, used as a fallback catalog source
	// when the API is unreachable. Empty disables the fallback.
	FeedURL string `toml:"feed_url"`

	// ExcludePhrase drops catalog entries whose title contains this phrase
	// (case-insensitive). The BTB feed interleaves episodes of a co-hosted
	// show that we do not want to archive.
	ExcludePhrase string `toml:"exclude_phrase"`

	// PageSize is the number of raw entries requested per API page.
	PageSize int `toml:"page_size"`

	UserAgent string `toml:"user_agent"`
}

// Output contains settings for the local episode archive.
type Output struct {
	Dir          string  `toml:"dir"`
	DelaySeconds float64 `toml:"delay_seconds"`
	Limit        int     `toml:"limit"`
}

// Config is the full tool configuration.
type Config struct {
	Feed   Feed   `toml:"feed"`
	Output Output `toml:"output"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		Feed: Feed{
			APIBaseURL:    "https://us.api.iheart.com/api/v3/podcast/podcasts/29236323/episodes",
			FeedURL:       "https://feeds.megaphone.fm/behindthebastards",
			ExcludePhrase: "it could happen here",
			PageSize:      20,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Output: Output{
			Dir:          "episodes",
			DelaySeconds: 1,
			Limit:        10,
		},
	}
}

// Load reads a TOML config file and merges it over the defaults, so partial
// files only override the keys they mention.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
