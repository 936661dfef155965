// Package feed holds the in-memory model of a channel's RSS document and the
// synchronizer that keeps the remote copy up to date.
package feed

import (
	"fmt"
	"time"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

// FileName is the fixed name of the feed document inside a channel folder.
const FileName = "feed.xml"

const (
	defaultLanguage = "en-us"
	defaultExplicit = "no"

	// DefaultAuthor and DefaultCategory are applied when the config leaves
	// them empty.
	DefaultAuthor   = "GDrive Cast"
	DefaultCategory = "Politics"

	enclosureType = "audio/mpeg"
)

// Defaults are channel-level values not derivable from YouTube metadata.
type Defaults struct {
	Author   string
	Category string
	Language string
}

func (d Defaults) orBuiltin() Defaults {
	if d.Author == "" {
		d.Author = DefaultAuthor
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	if d.Language == "" {
		d.Language = defaultLanguage
	}
	return d
}

// Enclosure describes the downloadable media file of an episode.
type Enclosure struct {
	URL    string
	Length int64
	Type   string
}

// Item is one episode entry. Items are created once per published episode and
// never mutated afterwards, except by a full purge.
type Item struct {
	Title       string
	Description string
	Explicit    string
	Enclosure   Enclosure
	GUID        string
	PubDate     string
}

// Document is a channel's feed: channel-level metadata plus an ordered item
// sequence in publication order.
type Document struct {
	Title       string
	Link        string
	Language    string
	Author      string
	Summary     string
	Description string
	Explicit    string
	Category    string
	Image       string

	Items []Item
}

// New creates an empty feed document with all channel-level fields populated.
func New(meta *model.ChannelMetadata, defaults Defaults) *Document {
	defaults = defaults.orBuiltin()

	return &Document{
		Title:       meta.Title,
		Link:        meta.URL,
		Language:    defaults.Language,
		Author:      defaults.Author,
		Summary:     meta.Description,
		Description: meta.Description,
		Explicit:    defaultExplicit,
		Category:    defaults.Category,
		Image:       meta.BannerURL,
	}
}

// NewItem builds an episode entry for an uploaded audio file. The enclosure
// URL doubles as the GUID, tying episode identity to its download link.
func NewItem(video *model.VideoMetadata, description, audioURL string, audioSize int64) Item {
	return Item{
		Title:       video.Title,
		Description: description,
		Explicit:    defaultExplicit,
		Enclosure: Enclosure{
			URL:    audioURL,
			Length: audioSize,
			Type:   enclosureType,
		},
		GUID:    audioURL,
		PubDate: video.PublishedAt.Format(time.RFC1123Z),
	}
}

// Append adds an item at the end of the sequence. Items are not deduplicated
// by GUID: appending the same video twice produces two entries.
func (d *Document) Append(item Item) {
	d.Items = append(d.Items, item)
}

// RemoveAllItems clears the item sequence and keeps the channel metadata.
func (d *Document) RemoveAllItems() {
	d.Items = nil
}

// CacheName derives the local staging file name for a channel folder, keyed
// by folder ID to avoid collisions across channels.
func CacheName(folderID string) string {
	return fmt.Sprintf("%s.xml", folderID)
}
