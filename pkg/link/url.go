// Package link parses YouTube watch URLs.
package link

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

// ExtractVideoID pulls the video identifier out of a YouTube watch URL.
//
//	https://www.youtube.com/watch?v=XYZ -> XYZ
func ExtractVideoID(link string) (string, error) {
	parsed, err := parseURL(link)
	if err != nil {
		return "", err
	}

	if !strings.Contains(parsed.Host, "youtube") {
		return "", errors.Wrapf(model.ErrInvalidInput, "unsupported URL host: %s", parsed.Host)
	}

	id := parsed.Query().Get("v")
	if id == "" {
		return "", errors.Wrapf(model.ErrInvalidInput, "no video parameter %q in URL: %s", "v", link)
	}

	return id, nil
}

func parseURL(link string) (*url.URL, error) {
	if !strings.HasPrefix(link, "http") {
		link = "https://" + link
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return nil, errors.Wrapf(model.ErrInvalidInput, "failed to parse url %q: %v", link, err)
	}

	return parsed, nil
}
