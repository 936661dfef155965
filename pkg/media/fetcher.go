// Package media runs the user-configured external command that produces an
// audio file from a video identifier.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

const FetchTimeout = 10 * time.Minute

// Config describes the external fetch command. The template must contain the
// {video_id} and {output_file} placeholders, e.g.
//
//	yt-dlp --extract-audio --audio-format mp3 -o {output_file} {video_id}
type Config struct {
	Command string `toml:"command"`
}

type Fetcher struct {
	template string
	cacheDir string
}

// NewFetcher returns a fetcher that writes audio files into cacheDir.
func NewFetcher(cfg Config, cacheDir string) *Fetcher {
	return &Fetcher{template: cfg.Command, cacheDir: cacheDir}
}

// AudioFileName is the deterministic object name for a video's audio.
func AudioFileName(videoID string) string {
	return fmt.Sprintf("%s.mp3", videoID)
}

// Fetch invokes the external command and returns the path of the produced
// audio file. A missing command template or a non-zero exit fails with
// model.ErrMediaFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	if f.template == "" {
		return "", errors.Wrap(model.ErrMediaFetchFailed, "no external command configured")
	}

	if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create media cache dir: %s", f.cacheDir)
	}

	outputFile := filepath.Join(f.cacheDir, AudioFileName(videoID))

	args, err := buildCommand(f.template, videoID, outputFile)
	if err != nil {
		return "", err
	}

	log.Infof("executing: %s", strings.Join(args, " "))

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(model.ErrMediaFetchFailed, "%v: %s", err, string(output))
	}

	log.Debug("command executed successfully")
	return outputFile, nil
}

func buildCommand(template, videoID, outputFile string) ([]string, error) {
	expanded := strings.NewReplacer(
		"{video_id}", videoID,
		"{output_file}", outputFile,
	).Replace(template)

	args, err := shlex.Split(expanded)
	if err != nil {
		return nil, errors.Wrapf(model.ErrMediaFetchFailed, "failed to parse command %q: %v", expanded, err)
	}

	if len(args) == 0 {
		return nil, errors.Wrap(model.ErrMediaFetchFailed, "empty command after expansion")
	}

	return args, nil
}
