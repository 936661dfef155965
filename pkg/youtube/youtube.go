// Package youtube resolves video and channel metadata through the
// YouTube Data API and validates it into typed records at the boundary.
package youtube

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

type Client struct {
	svc *youtube.Service
}

func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to create youtube client: %v", err)
	}

	return &Client{svc: svc}, nil
}

// Video fetches a snapshot of the video's metadata.
func (c *Client) Video(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to query video %q: %v", videoID, err)
	}

	if len(resp.Items) == 0 {
		return nil, errors.Wrapf(model.ErrInvalidInput, "video not found: %s", videoID)
	}

	return videoMetadata(videoID, resp.Items[0].Snippet)
}

// Channel fetches a snapshot of the channel's metadata. A channel without a
// banner image yields an empty BannerURL.
func (c *Client) Channel(ctx context.Context, channelID string) (*model.ChannelMetadata, error) {
	resp, err := c.svc.Channels.List([]string{"snippet", "brandingSettings"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to query channel %q: %v", channelID, err)
	}

	if len(resp.Items) == 0 {
		return nil, errors.Wrapf(model.ErrInvalidInput, "channel not found: %s", channelID)
	}

	return channelMetadata(channelID, resp.Items[0])
}

func videoMetadata(videoID string, snippet *youtube.VideoSnippet) (*model.VideoMetadata, error) {
	if snippet == nil || snippet.Title == "" || snippet.ChannelId == "" {
		return nil, errors.Wrapf(model.ErrInvalidInput, "incomplete video snippet for %s", videoID)
	}

	publishedAt, err := time.Parse(time.RFC3339, snippet.PublishedAt)
	if err != nil {
		return nil, errors.Wrapf(model.ErrInvalidInput, "invalid publish date %q: %v", snippet.PublishedAt, err)
	}

	return &model.VideoMetadata{
		ID:           videoID,
		Title:        snippet.Title,
		Description:  snippet.Description,
		PublishedAt:  publishedAt,
		Thumbnail:    thumbnailURL(snippet.Thumbnails),
		ChannelID:    snippet.ChannelId,
		ChannelTitle: snippet.ChannelTitle,
	}, nil
}

func channelMetadata(channelID string, item *youtube.Channel) (*model.ChannelMetadata, error) {
	if item.Snippet == nil || item.Snippet.Title == "" {
		return nil, errors.Wrapf(model.ErrInvalidInput, "incomplete channel snippet for %s", channelID)
	}

	meta := &model.ChannelMetadata{
		ID:          channelID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		URL:         fmt.Sprintf("https://www.youtube.com/channel/%s", channelID),
	}

	if item.BrandingSettings != nil && item.BrandingSettings.Image != nil {
		meta.BannerURL = item.BrandingSettings.Image.BannerExternalUrl
	}

	return meta, nil
}

func thumbnailURL(details *youtube.ThumbnailDetails) string {
	if details == nil {
		return ""
	}

	// Prefer the standard resolution, same as the original feed entries.
	for _, t := range []*youtube.Thumbnail{details.Standard, details.High, details.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}

	return ""
}
