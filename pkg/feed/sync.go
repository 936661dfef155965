package feed

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/gdrivecast/gdrivecast/pkg/drive"
	"github.com/gdrivecast/gdrivecast/pkg/model"
)

// Synchronizer keeps a channel folder's remote feed document in sync with
// publish and purge mutations.
//
// A sync runs through four stages: locate the remote feed, load it (or start
// an empty document when none exists), mutate the local working copy, then
// serialize and upload. A failure while locating or downloading aborts before
// any mutation. A failure while uploading leaves the remote feed in its prior
// state: the operation is not atomic across mutate/serialize/upload, so a
// crash in between loses the new entry but never corrupts the remote copy.
type Synchronizer struct {
	store    Storage
	cacheDir string
	defaults Defaults
}

func NewSynchronizer(store Storage, cacheDir string, defaults Defaults) *Synchronizer {
	return &Synchronizer{store: store, cacheDir: cacheDir, defaults: defaults}
}

// Publish appends an episode entry to the channel's feed, creating the feed
// document first if the channel has none yet. Returns the feed's direct link.
func (s *Synchronizer) Publish(ctx context.Context, folder *drive.Object, meta *model.ChannelMetadata, item Item) (string, error) {
	doc, _, err := s.load(ctx, folder, meta)
	if err != nil {
		return "", err
	}

	doc.Append(item)

	return s.upload(ctx, folder, doc)
}

// Purge rewrites the channel's feed with all episode entries removed and
// deletes every non-feed object in the folder. The deletions and the feed
// rewrite are independent remote operations: a crash mid-purge can leave some
// audio files deleted while others remain.
func (s *Synchronizer) Purge(ctx context.Context, folder *drive.Object) error {
	children, err := s.store.ListChildren(ctx, folder.ID)
	if err != nil {
		return err
	}

	if len(children) == 0 {
		log.Infof("channel folder %q is empty, nothing to purge", folder.Name)
		return nil
	}

	for _, child := range children {
		if child.Name != FileName {
			if err := s.store.Delete(ctx, child.ID); err != nil {
				return err
			}
			log.Infof("deleted file: %s", child.Name)
			continue
		}

		doc, err := s.loadRemote(ctx, folder.ID, child.ID)
		if err != nil {
			return err
		}

		log.Infof("purging channel feed: %s", doc.Title)
		for _, item := range doc.Items {
			log.Infof("deleted episode: %s", item.Title)
		}

		doc.RemoveAllItems()

		if _, err := s.upload(ctx, folder, doc); err != nil {
			return err
		}
	}

	return nil
}

// load locates the remote feed under the channel folder and parses it, or
// initializes an empty document from the channel metadata when the folder has
// no feed yet. The returned flag reports whether a remote feed was present.
func (s *Synchronizer) load(ctx context.Context, folder *drive.Object, meta *model.ChannelMetadata) (*Document, bool, error) {
	remote, err := s.store.FindFile(ctx, FileName, folder.ID)
	if err != nil {
		return nil, false, err
	}

	if remote == nil {
		log.Info("creating new feed document")
		return New(meta, s.defaults), false, nil
	}

	doc, err := s.loadRemote(ctx, folder.ID, remote.ID)
	if err != nil {
		return nil, false, err
	}

	return doc, true, nil
}

func (s *Synchronizer) loadRemote(ctx context.Context, folderID, fileID string) (*Document, error) {
	// Drop any stale working copy from a previous run before staging.
	if err := s.cleanCache(folderID); err != nil {
		return nil, err
	}

	log.Debugf("downloading remote feed file %s", fileID)
	data, err := s.store.Download(ctx, fileID)
	if err != nil {
		return nil, err
	}

	log.Debug("parsing existing feed")
	return Parse(data)
}

func (s *Synchronizer) upload(ctx context.Context, folder *drive.Object, doc *Document) (string, error) {
	data, err := doc.Bytes()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create feed cache dir: %s", s.cacheDir)
	}

	cachePath := s.cachePath(folder.ID)
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write feed cache file: %s", cachePath)
	}

	log.Infof("uploading feed file: %s, size=%s", FileName, humanize.IBytes(uint64(len(data))))

	file, err := s.store.Upload(ctx, cachePath, FileName, folder.ID)
	if err != nil {
		return "", err
	}

	return file.URL, nil
}

func (s *Synchronizer) cachePath(folderID string) string {
	return filepath.Join(s.cacheDir, CacheName(folderID))
}

func (s *Synchronizer) cleanCache(folderID string) error {
	err := os.Remove(s.cachePath(folderID))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove stale feed cache file")
	}

	return nil
}
