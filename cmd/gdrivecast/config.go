package main

import (
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/gdrivecast/gdrivecast/pkg/chapters"
	"github.com/gdrivecast/gdrivecast/pkg/drive"
	"github.com/gdrivecast/gdrivecast/pkg/feed"
	"github.com/gdrivecast/gdrivecast/pkg/gauth"
	"github.com/gdrivecast/gdrivecast/pkg/media"
)

type Config struct {
	// Storage is the Drive layout and credential locations
	Storage Storage `toml:"storage"`
	// Downloader is the external audio fetch command
	Downloader media.Config `toml:"downloader"`
	// Feed is channel-level feed defaults
	Feed Feed `toml:"feed"`
	// Chapters is the transcript/LLM enrichment configuration
	Chapters chapters.Config `toml:"chapters"`
}

type Storage struct {
	// RootFolder is the name of the top-level Drive folder holding all
	// channel folders.
	RootFolder string `toml:"root_folder"`
	// CredentialsFile is the OAuth client secret JSON
	CredentialsFile string `toml:"credentials_file"`
	// TokenFile caches the user token between runs
	TokenFile string `toml:"token_file"`
	// MediaCacheDir is where fetched audio files are staged
	MediaCacheDir string `toml:"media_cache_dir"`
	// FeedCacheDir is where feed documents are staged for parse/serialize
	FeedCacheDir string `toml:"feed_cache_dir"`
}

type Feed struct {
	Author   string `toml:"author"`
	Category string `toml:"category"`
	Language string `toml:"language"`
}

// LoadConfig loads TOML configuration from a file path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	config := Config{}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal toml")
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	var result *multierror.Error

	if c.Downloader.Command != "" {
		for _, placeholder := range []string{"{video_id}", "{output_file}"} {
			if !strings.Contains(c.Downloader.Command, placeholder) {
				result = multierror.Append(result,
					errors.Errorf("downloader command must contain the %s placeholder", placeholder))
			}
		}
	}

	return result.ErrorOrNil()
}

func (c *Config) applyDefaults() {
	if c.Storage.RootFolder == "" {
		c.Storage.RootFolder = drive.RootFolderName
	}

	if c.Storage.CredentialsFile == "" {
		c.Storage.CredentialsFile = "credentials.json"
	}

	if c.Storage.TokenFile == "" {
		c.Storage.TokenFile = "token.json"
	}

	if c.Storage.MediaCacheDir == "" {
		c.Storage.MediaCacheDir = "media-cache"
	}

	if c.Storage.FeedCacheDir == "" {
		c.Storage.FeedCacheDir = "feed-cache"
	}

	if c.Chapters.PromptFile == "" {
		c.Chapters.PromptFile = "chapters_prompt.txt"
	}

	if len(c.Chapters.Languages) == 0 {
		c.Chapters.Languages = chapters.DefaultLanguages
	}
}

func (c *Config) authConfig() gauth.Config {
	return gauth.Config{
		CredentialsFile: c.Storage.CredentialsFile,
		TokenFile:       c.Storage.TokenFile,
	}
}

func (c *Config) feedDefaults() feed.Defaults {
	return feed.Defaults{
		Author:   c.Feed.Author,
		Category: c.Feed.Category,
		Language: c.Feed.Language,
	}
}
