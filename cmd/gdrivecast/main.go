package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/gdrivecast/gdrivecast/pkg/chapters"
	"github.com/gdrivecast/gdrivecast/pkg/drive"
	"github.com/gdrivecast/gdrivecast/pkg/feed"
	"github.com/gdrivecast/gdrivecast/pkg/gauth"
	"github.com/gdrivecast/gdrivecast/pkg/library"
	"github.com/gdrivecast/gdrivecast/pkg/media"
	"github.com/gdrivecast/gdrivecast/pkg/model"
	"github.com/gdrivecast/gdrivecast/pkg/youtube"
)

type Opts struct {
	ConfigPath     string `long:"config" short:"c" default:"config.toml" env:"GDRIVECAST_CONFIG_PATH" description:"configuration file path"`
	Debug          bool   `long:"debug" description:"enable debug logging"`
	List           bool   `long:"list" short:"l" description:"list existing podcast channels and exit"`
	Delete         int    `long:"delete" short:"d" description:"delete a channel by its index (starts with 1)"`
	Purge          int    `long:"purge" short:"p" description:"purge a channel by index: delete all episodes but keep the channel"`
	ShowTimestamps string `long:"timestamps" value-name:"URL" description:"generate and print timestamps for a video URL"`
	AddTimestamps  bool   `long:"add-timestamps" short:"t" description:"generate chapters with timestamps and insert them into the episode description"`

	Args struct {
		VideoURL string `positional-arg-name:"video-url"`
	} `positional-args:"yes"`
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	opts := Opts{}
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
		"date":    date,
	}).Debug("running gdrivecast")

	if err := run(context.Background(), opts); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(exitCode(err))
	}
}

// run is the only place errors terminate the process; components below it
// always propagate.
func run(ctx context.Context, opts Opts) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	manager, err := newManager(ctx, cfg, opts)
	if err != nil {
		return err
	}

	switch {
	case opts.List:
		return listChannels(ctx, manager)

	case opts.ShowTimestamps != "":
		out, err := manager.Timestamps(ctx, opts.ShowTimestamps)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil

	case opts.Delete > 0:
		return manager.Delete(ctx, opts.Delete)

	case opts.Purge > 0:
		return manager.Purge(ctx, opts.Purge)
	}

	if opts.Args.VideoURL == "" {
		return errors.Wrap(model.ErrInvalidInput, "video URL is required")
	}

	feedURL, err := manager.Publish(ctx, opts.Args.VideoURL, opts.AddTimestamps)
	if err != nil {
		return err
	}

	log.Infof("feed link: %s", feedURL)
	return nil
}

func newManager(ctx context.Context, cfg *Config, opts Opts) (*Manager, error) {
	session, err := gauth.NewSession(cfg.authConfig())
	if err != nil {
		return nil, err
	}

	httpClient, err := session.Client(ctx)
	if err != nil {
		return nil, err
	}

	store, err := drive.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}

	root, err := store.GetOrCreateFolder(ctx, cfg.Storage.RootFolder, "root")
	if err != nil {
		return nil, err
	}

	metadata, err := youtube.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}

	var generator timestampGenerator
	if opts.AddTimestamps || opts.ShowTimestamps != "" {
		generator, err = chapters.NewGenerator(cfg.Chapters)
		if err != nil {
			return nil, err
		}
	}

	return NewManager(
		store,
		metadata,
		media.NewFetcher(cfg.Downloader, cfg.Storage.MediaCacheDir),
		feed.NewSynchronizer(store, cfg.Storage.FeedCacheDir, cfg.feedDefaults()),
		library.New(store, root.ID),
		generator,
		root.ID,
	), nil
}

func listChannels(ctx context.Context, manager *Manager) error {
	channels, err := manager.List(ctx)
	if err != nil {
		return err
	}

	for i, ch := range channels {
		fmt.Printf("\n%d. Channel: %s\n", i+1, ch.Title)
		for _, episode := range ch.Episodes {
			fmt.Printf(" - %s\n", episode.Title)
		}
	}

	return nil
}

func exitCode(err error) int {
	if errors.Is(err, model.ErrInvalidInput) {
		return 2
	}

	return 1
}
