package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/gdrivecast/gdrivecast/pkg/drive"
	"github.com/gdrivecast/gdrivecast/pkg/feed"
	"github.com/gdrivecast/gdrivecast/pkg/library"
	"github.com/gdrivecast/gdrivecast/pkg/link"
	"github.com/gdrivecast/gdrivecast/pkg/media"
	"github.com/gdrivecast/gdrivecast/pkg/model"
)

type storage interface {
	GetOrCreateFolder(ctx context.Context, name, parentID string) (*drive.Object, error)
	Upload(ctx context.Context, localPath, name, parentID string) (*drive.File, error)
}

type metadataProvider interface {
	Video(ctx context.Context, videoID string) (*model.VideoMetadata, error)
	Channel(ctx context.Context, channelID string) (*model.ChannelMetadata, error)
}

type mediaFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

type feedSynchronizer interface {
	Publish(ctx context.Context, folder *drive.Object, meta *model.ChannelMetadata, item feed.Item) (string, error)
	Purge(ctx context.Context, folder *drive.Object) error
}

type channelLibrary interface {
	Summary(ctx context.Context) ([]library.Channel, error)
	Resolve(ctx context.Context, index int) (*drive.Object, error)
	Delete(ctx context.Context, index int) (*drive.Object, error)
}

type timestampGenerator interface {
	Timestamps(ctx context.Context, videoID string) (string, error)
}

// Manager composes the publish/list/delete/purge workflows on top of the
// narrow collaborator interfaces.
type Manager struct {
	store      storage
	metadata   metadataProvider
	fetcher    mediaFetcher
	sync       feedSynchronizer
	library    channelLibrary
	timestamps timestampGenerator
	rootID     string
}

func NewManager(store storage, metadata metadataProvider, fetcher mediaFetcher, sync feedSynchronizer, lib channelLibrary, timestamps timestampGenerator, rootID string) *Manager {
	return &Manager{
		store:      store,
		metadata:   metadata,
		fetcher:    fetcher,
		sync:       sync,
		library:    lib,
		timestamps: timestamps,
		rootID:     rootID,
	}
}

// Publish downloads a video's audio, uploads it into the channel folder and
// appends an episode entry to the channel feed. Returns the feed's direct
// link.
//
// With timestamps enabled, transcript or LLM failure degrades to publishing
// without chapters rather than losing the episode.
func (m *Manager) Publish(ctx context.Context, videoURL string, addTimestamps bool) (string, error) {
	videoID, err := link.ExtractVideoID(videoURL)
	if err != nil {
		return "", err
	}

	log.Infof("video ID: %s", videoID)

	video, err := m.metadata.Video(ctx, videoID)
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"title":     video.Title,
		"published": video.PublishedAt,
		"channel":   video.ChannelTitle,
	}).Info("video details")

	folder, err := m.store.GetOrCreateFolder(ctx, video.ChannelID, m.rootID)
	if err != nil {
		return "", err
	}

	log.Infof("using channel folder: %s (%s)", folder.Name, folder.ID)

	channel, err := m.metadata.Channel(ctx, video.ChannelID)
	if err != nil {
		return "", err
	}

	audioPath, err := m.fetcher.Fetch(ctx, videoID)
	if err != nil {
		return "", err
	}

	log.Infof("saved file to %s", audioPath)

	stat, err := os.Stat(audioPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat audio file: %s", audioPath)
	}

	audio, err := m.store.Upload(ctx, audioPath, media.AudioFileName(videoID), folder.ID)
	if err != nil {
		return "", err
	}

	description := video.Description
	if addTimestamps {
		if generated, err := m.timestamps.Timestamps(ctx, videoID); err != nil {
			log.WithError(err).Warn("chapter generation failed, publishing without timestamps")
		} else {
			description += "\n" + generated
			log.Infof("added generated chapters:\n%s", generated)
		}
	}

	item := feed.NewItem(video, description, audio.URL, stat.Size())

	return m.sync.Publish(ctx, folder, channel, item)
}

// List returns the channel summaries in index order.
func (m *Manager) List(ctx context.Context) ([]library.Channel, error) {
	log.Info("fetching podcast data")
	return m.library.Summary(ctx)
}

// Delete removes the channel folder at the given 1-based index.
func (m *Manager) Delete(ctx context.Context, index int) error {
	folder, err := m.library.Delete(ctx, index)
	if err != nil {
		return err
	}
	if folder == nil {
		return errors.Wrapf(model.ErrInvalidInput, "channel folder not found: %d", index)
	}

	log.Infof("deleted channel folder: %s", folder.Name)
	return nil
}

// Purge removes every episode from the channel at the given index: all
// non-feed objects are deleted and the feed is rewritten with zero entries.
func (m *Manager) Purge(ctx context.Context, index int) error {
	folder, err := m.library.Resolve(ctx, index)
	if err != nil {
		return err
	}
	if folder == nil {
		return errors.Wrapf(model.ErrInvalidInput, "channel folder not found: %d", index)
	}

	return m.sync.Purge(ctx, folder)
}

// Timestamps generates chapter text for a video URL, used as a standalone
// preview before embedding chapters into a podcast.
func (m *Manager) Timestamps(ctx context.Context, videoURL string) (string, error) {
	videoID, err := link.ExtractVideoID(videoURL)
	if err != nil {
		return "", err
	}

	return m.timestamps.Timestamps(ctx, videoID)
}
