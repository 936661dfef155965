// Package chapters fetches video transcripts and turns them into chapter
// timestamps with an LLM call.
package chapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

const (
	timedtextURL   = "https://www.youtube.com/api/timedtext"
	requestTimeout = 30 * time.Second
)

// DefaultLanguages is the transcript language preference order.
var DefaultLanguages = []string{"ru", "en"}

// TranscriptClient fetches caption tracks from YouTube's timedtext API.
type TranscriptClient struct {
	client    *http.Client
	baseURL   string
	languages []string
}

func NewTranscriptClient(languages []string) *TranscriptClient {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	return &TranscriptClient{
		client:    &http.Client{Timeout: requestTimeout},
		baseURL:   timedtextURL,
		languages: languages,
	}
}

type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	StartMs int64              `json:"tStartMs"`
	Segs    []timedtextSegment `json:"segs"`
}

type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// Fetch returns the formatted transcript, trying each configured language in
// order. When no language yields a caption track the call fails with
// model.ErrTranscriptUnavailable.
func (tc *TranscriptClient) Fetch(ctx context.Context, videoID string) (string, error) {
	for _, lang := range tc.languages {
		text, err := tc.fetchLanguage(ctx, videoID, lang)
		if err != nil {
			return "", err
		}
		if text != "" {
			log.Debugf("loaded %q transcript for %s (%d bytes)", lang, videoID, len(text))
			return text, nil
		}

		log.Debugf("no %q transcript for %s", lang, videoID)
	}

	return "", errors.Wrapf(model.ErrTranscriptUnavailable,
		"no transcript for %s in languages %s", videoID, strings.Join(tc.languages, ","))
}

// fetchLanguage returns an empty string when the video has no caption track
// in the given language; the timedtext endpoint reports that either as an
// empty body or as 404.
func (tc *TranscriptClient) fetchLanguage(ctx context.Context, videoID, lang string) (string, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", lang)
	params.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tc.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build timedtext request")
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(model.ErrStoreUnavailable, "timedtext request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(model.ErrStoreUnavailable, "timedtext API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(model.ErrStoreUnavailable, "failed to read timedtext response: %v", err)
	}

	if len(body) == 0 {
		return "", nil
	}

	var parsed timedtextResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrap(err, "failed to parse timedtext response")
	}

	return formatTranscript(parsed.Events), nil
}

// formatTranscript renders caption events as timestamp-headed blocks:
//
//	00:01:05
//	caption text
//
// joined by blank lines, the shape the chapter prompt expects.
func formatTranscript(events []timedtextEvent) string {
	var blocks []string

	for _, event := range events {
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		line := strings.TrimSpace(text.String())
		if line == "" {
			continue
		}

		blocks = append(blocks, fmt.Sprintf("%s\n%s", formatTimestamp(event.StartMs), line))
	}

	if len(blocks) == 0 {
		return ""
	}

	return strings.Join(blocks, "\n\n") + "\n"
}

func formatTimestamp(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
