package model

import (
	"time"
)

// VideoMetadata is an immutable snapshot of a video's details, fetched once
// per operation and discarded after use.
type VideoMetadata struct {
	ID           string
	Title        string
	Description  string
	PublishedAt  time.Time
	Thumbnail    string
	ChannelID    string
	ChannelTitle string
}

// ChannelMetadata describes the channel that owns a video. BannerURL is empty
// when the channel has no banner image configured.
type ChannelMetadata struct {
	ID          string
	Title       string
	Description string
	URL         string
	BannerURL   string
}
