// Package gauth manages the OAuth session shared by the Drive and YouTube
// clients for the lifetime of one invocation.
package gauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	youtube "google.golang.org/api/youtube/v3"
)

// Config points to the OAuth client secret and the cached user token.
type Config struct {
	// CredentialsFile is the OAuth client secret JSON downloaded from the
	// Google Cloud console.
	CredentialsFile string `toml:"credentials_file"`
	// TokenFile caches the user token between invocations.
	TokenFile string `toml:"token_file"`
}

// Session is the long-lived auth context passed to every API client
// constructor. It loads the cached token, runs the interactive flow when no
// token exists yet, and re-saves the token after a refresh.
type Session struct {
	config    *oauth2.Config
	tokenFile string
}

func NewSession(cfg Config) (*Session, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read client secret file: %s", cfg.CredentialsFile)
	}

	config, err := google.ConfigFromJSON(data, drive.DriveScope, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse client secret file")
	}

	return &Session{config: config, tokenFile: cfg.TokenFile}, nil
}

// Client returns an HTTP client that authorizes every request. Token refresh
// happens transparently inside the token source; the refreshed token is
// written back to the token file so the next run does not repeat it.
func (s *Session) Client(ctx context.Context) (*http.Client, error) {
	token, err := s.loadToken()
	if err != nil {
		log.Debug("no cached token, starting interactive authorization")

		token, err = s.authorize(ctx)
		if err != nil {
			return nil, err
		}
	}

	source := s.config.TokenSource(ctx, token)
	return oauth2.NewClient(ctx, &savingSource{base: source, session: s, last: token}), nil
}

func (s *Session) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(s.tokenFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, errors.Wrapf(err, "failed to decode token file: %s", s.tokenFile)
	}

	return token, nil
}

func (s *Session) saveToken(token *oauth2.Token) error {
	f, err := os.OpenFile(s.tokenFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(err, "failed to create token file: %s", s.tokenFile)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

func (s *Session) authorize(ctx context.Context) (*oauth2.Token, error) {
	url := s.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, then paste the authorization code:\n%v\n", url)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, errors.Wrap(err, "failed to read authorization code")
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}

	if err := s.saveToken(token); err != nil {
		return nil, err
	}

	log.Infof("saved token to %s", s.tokenFile)
	return token, nil
}

// savingSource persists the token whenever the underlying source refreshed it.
type savingSource struct {
	base    oauth2.TokenSource
	session *Session
	last    *oauth2.Token
}

func (t *savingSource) Token() (*oauth2.Token, error) {
	token, err := t.base.Token()
	if err != nil {
		return nil, err
	}

	if t.last == nil || token.AccessToken != t.last.AccessToken {
		log.Debug("token refreshed, saving")
		t.last = token
		if err := t.session.saveToken(token); err != nil {
			log.WithError(err).Warn("failed to save refreshed token")
		}
	}

	return token, nil
}
