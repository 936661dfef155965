package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

var testChannel = &model.ChannelMetadata{
	ID:          "UC123",
	Title:       "Test Channel",
	Description: "About the channel",
	URL:         "https://www.youtube.com/channel/UC123",
	BannerURL:   "https://img/banner.jpg",
}

func TestNew(t *testing.T) {
	doc := New(testChannel, Defaults{})

	assert.Equal(t, "Test Channel", doc.Title)
	assert.Equal(t, "https://www.youtube.com/channel/UC123", doc.Link)
	assert.Equal(t, "en-us", doc.Language)
	assert.Equal(t, "GDrive Cast", doc.Author)
	assert.Equal(t, "About the channel", doc.Summary)
	assert.Equal(t, "About the channel", doc.Description)
	assert.Equal(t, "no", doc.Explicit)
	assert.Equal(t, "Politics", doc.Category)
	assert.Equal(t, "https://img/banner.jpg", doc.Image)
	assert.Empty(t, doc.Items)
}

func TestNew_CustomDefaults(t *testing.T) {
	doc := New(testChannel, Defaults{Author: "Me", Category: "Technology", Language: "en-gb"})

	assert.Equal(t, "Me", doc.Author)
	assert.Equal(t, "Technology", doc.Category)
	assert.Equal(t, "en-gb", doc.Language)
}

func TestNewItem(t *testing.T) {
	video := &model.VideoMetadata{
		ID:          "V1",
		Title:       "Ep 1",
		PublishedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}

	item := NewItem(video, "show notes", "https://direct/audio1", 4096)

	assert.Equal(t, "Ep 1", item.Title)
	assert.Equal(t, "show notes", item.Description)
	assert.Equal(t, "no", item.Explicit)
	assert.Equal(t, "https://direct/audio1", item.Enclosure.URL)
	assert.EqualValues(t, 4096, item.Enclosure.Length)
	assert.Equal(t, "audio/mpeg", item.Enclosure.Type)

	// The enclosure URL is reused as the GUID.
	assert.Equal(t, item.Enclosure.URL, item.GUID)
	assert.Equal(t, "Wed, 01 May 2024 10:30:00 +0000", item.PubDate)
}

func TestAppend(t *testing.T) {
	doc := New(testChannel, Defaults{})

	doc.Append(Item{Title: "Ep 1", GUID: "g1"})
	require.Len(t, doc.Items, 1)

	doc.Append(Item{Title: "Ep 2", GUID: "g2"})
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Ep 1", doc.Items[0].Title)
	assert.Equal(t, "Ep 2", doc.Items[1].Title)

	// No deduplication by GUID.
	doc.Append(Item{Title: "Ep 1", GUID: "g1"})
	assert.Len(t, doc.Items, 3)
}

func TestRemoveAllItems(t *testing.T) {
	doc := New(testChannel, Defaults{})
	doc.Append(Item{Title: "Ep 1"})
	doc.Append(Item{Title: "Ep 2"})

	doc.RemoveAllItems()

	assert.Empty(t, doc.Items)
	assert.Equal(t, "Test Channel", doc.Title)
	assert.Equal(t, "About the channel", doc.Description)
	assert.Equal(t, "Politics", doc.Category)
}

func TestCacheName(t *testing.T) {
	assert.Equal(t, "folder1.xml", CacheName("folder1"))
}
