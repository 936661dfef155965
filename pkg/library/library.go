// Package library provides the human-facing view over the channel folders:
// stable-ordered listing, 1-based index resolution, and channel deletion.
package library

import (
	"context"

	"github.com/gdrivecast/gdrivecast/pkg/drive"
	"github.com/gdrivecast/gdrivecast/pkg/feed"
)

// Storage is the slice of the object store the library needs.
type Storage interface {
	ListFolders(ctx context.Context, parentID string) ([]*drive.Object, error)
	FindFile(ctx context.Context, name, parentID string) (*drive.Object, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Episode is a single entry of a channel summary.
type Episode struct {
	Title   string
	PubDate string
}

// Channel is one channel folder together with its parsed feed summary.
type Channel struct {
	Folder   *drive.Object
	Title    string
	Episodes []Episode
}

type Library struct {
	store  Storage
	rootID string
}

func New(store Storage, rootID string) *Library {
	return &Library{store: store, rootID: rootID}
}

// Channels lists the channel folders in the store's folder ordering. The
// position in this slice plus one is the channel index; it is recomputed on
// every call and never persisted, so it can shift as folders come and go.
func (l *Library) Channels(ctx context.Context) ([]*drive.Object, error) {
	return l.store.ListFolders(ctx, l.rootID)
}

// Resolve maps a 1-based channel index to its folder. Returns nil when the
// index is outside [1, count].
func (l *Library) Resolve(ctx context.Context, index int) (*drive.Object, error) {
	if index <= 0 {
		return nil, nil
	}

	folders, err := l.Channels(ctx)
	if err != nil {
		return nil, err
	}

	if index > len(folders) {
		return nil, nil
	}

	return folders[index-1], nil
}

// Summary downloads and parses each channel's feed to report its title and
// episodes. A channel without a feed document yet is reported under its
// folder name with zero episodes, so summary positions stay aligned with
// Resolve indices.
func (l *Library) Summary(ctx context.Context) ([]Channel, error) {
	folders, err := l.Channels(ctx)
	if err != nil {
		return nil, err
	}

	var channels []Channel
	for _, folder := range folders {
		remote, err := l.store.FindFile(ctx, feed.FileName, folder.ID)
		if err != nil {
			return nil, err
		}
		if remote == nil {
			channels = append(channels, Channel{Folder: folder, Title: folder.Name})
			continue
		}

		data, err := l.store.Download(ctx, remote.ID)
		if err != nil {
			return nil, err
		}

		doc, err := feed.Parse(data)
		if err != nil {
			return nil, err
		}

		ch := Channel{Folder: folder, Title: doc.Title}
		for _, item := range doc.Items {
			ch.Episodes = append(ch.Episodes, Episode{Title: item.Title, PubDate: item.PubDate})
		}

		channels = append(channels, ch)
	}

	return channels, nil
}

// Delete removes the channel folder at the given index with everything in it.
// Returns the deleted folder, or nil when the index resolves to nothing.
func (l *Library) Delete(ctx context.Context, index int) (*drive.Object, error) {
	folder, err := l.Resolve(ctx, index)
	if err != nil || folder == nil {
		return nil, err
	}

	if err := l.store.Delete(ctx, folder.ID); err != nil {
		return nil, err
	}

	return folder, nil
}
