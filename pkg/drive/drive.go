// Package drive is a thin capability wrapper around the Google Drive API.
// Each method performs a single remote mutation; auth and network failures
// surface as model.ErrStoreUnavailable.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

const (
	// RootFolderName is the single well-known folder holding all channel
	// folders, created under the Drive root on first use.
	RootFolderName = "gdrive-cast"

	folderMIMEType = "application/vnd.google-apps.folder"

	// directLinkTemplate streams an object's raw bytes without the Drive UI,
	// parameterized only by the object identifier.
	directLinkTemplate = "https://drive.usercontent.google.com/download?export=download&confirm=t&id=%s"
)

// Object is a handle to a remote file or folder.
type Object struct {
	ID   string
	Name string
}

// File is an uploaded object together with its direct download link.
type File struct {
	Object
	URL string
}

type Client struct {
	svc *drive.Service
}

func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to create drive client: %v", err)
	}

	return &Client{svc: svc}, nil
}

// FindFolder looks up a folder by exact name directly under the given parent.
// Returns nil when no such folder exists. If the store reports several, the
// first one in the server's listing order wins.
func (c *Client) FindFolder(ctx context.Context, name, parentID string) (*Object, error) {
	return c.find(ctx, folderQuery(name, parentID))
}

// GetOrCreateFolder is idempotent: a creation race against another process is
// resolved by treating a subsequent successful lookup as success.
func (c *Client) GetOrCreateFolder(ctx context.Context, name, parentID string) (*Object, error) {
	folder, err := c.FindFolder(ctx, name, parentID)
	if err != nil {
		return nil, err
	}
	if folder != nil {
		return folder, nil
	}

	log.Infof("folder %q not found, creating a new one", name)

	created, err := c.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMIMEType,
		Parents:  []string{parentID},
	}).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to create folder %q: %v", name, err)
	}

	log.Infof("folder %q created with ID: %s", created.Name, created.Id)
	return &Object{ID: created.Id, Name: created.Name}, nil
}

// FindFile looks up a regular file by exact name under the given parent.
// Returns nil when absent.
func (c *Client) FindFile(ctx context.Context, name, parentID string) (*Object, error) {
	return c.find(ctx, fileQuery(name, parentID))
}

// Upload creates the named file under parentID, or overwrites the content of
// an existing match. A newly created file additionally gets the
// "anyone with link" read permission. Returns the file with its direct link.
func (c *Client) Upload(ctx context.Context, localPath, name, parentID string) (*File, error) {
	existing, err := c.FindFile(ctx, name, parentID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open local file: %s", localPath)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat local file: %s", localPath)
	}

	logger := log.WithField("name", name)
	logger.Infof("uploading file, size=%s", humanize.IBytes(uint64(stat.Size())))

	var remote *drive.File
	if existing != nil {
		logger.Debugf("overriding existing file: %s", existing.ID)
		remote, err = c.svc.Files.Update(existing.ID, &drive.File{}).Media(f).Fields("id, name").Context(ctx).Do()
	} else {
		logger.Debug("creating a new file")
		remote, err = c.svc.Files.Create(&drive.File{
			Name:    name,
			Parents: []string{parentID},
		}).Media(f).Fields("id, name").Context(ctx).Do()
	}
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to upload file %q: %v", name, err)
	}

	if existing == nil {
		_, err = c.svc.Permissions.Create(remote.Id, &drive.Permission{
			Type: "anyone",
			Role: "reader",
		}).Context(ctx).Do()
		if err != nil {
			return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to share file %q: %v", name, err)
		}
		logger.Debug(`added permission: "anyone with link"`)
	}

	link := c.DirectLink(remote.Id)
	logger.Infof("uploaded file (direct link): %s", link)

	return &File{Object: Object{ID: remote.Id, Name: remote.Name}, URL: link}, nil
}

// Download fetches an object's raw content.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to download file %q: %v", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "failed to read file content %q: %v", fileID, err)
	}

	log.Debugf("downloaded %s (%s)", fileID, humanize.IBytes(uint64(len(data))))
	return data, nil
}

// ListFolders returns folder children of parentID in the store's
// "folder,name" ordering. This is the order channel indices are derived from.
func (c *Client) ListFolders(ctx context.Context, parentID string) ([]*Object, error) {
	return c.list(ctx, childFolderQuery(parentID), "folder,name")
}

// ListChildren returns every non-trashed child of parentID.
func (c *Client) ListChildren(ctx context.Context, parentID string) ([]*Object, error) {
	return c.list(ctx, childQuery(parentID), "")
}

// Delete removes an object. Deleting a folder removes its children as well.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.svc.Files.Delete(id).Context(ctx).Do(); err != nil {
		return errors.Wrapf(model.ErrStoreUnavailable, "failed to delete object %q: %v", id, err)
	}

	return nil
}

// DirectLink builds the fixed direct-download URL for an object.
func (c *Client) DirectLink(id string) string {
	return fmt.Sprintf(directLinkTemplate, id)
}

func (c *Client) find(ctx context.Context, query string) (*Object, error) {
	resp, err := c.svc.Files.List().Q(query).PageSize(1).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "query failed: %v", err)
	}

	if len(resp.Files) == 0 {
		return nil, nil
	}

	first := resp.Files[0]
	return &Object{ID: first.Id, Name: first.Name}, nil
}

func (c *Client) list(ctx context.Context, query, orderBy string) ([]*Object, error) {
	var (
		objects   []*Object
		pageToken string
	)

	for {
		call := c.svc.Files.List().Q(query).Fields("nextPageToken, files(id, name)").Context(ctx)
		if orderBy != "" {
			call = call.OrderBy(orderBy)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, errors.Wrapf(model.ErrStoreUnavailable, "list failed: %v", err)
		}

		for _, f := range resp.Files {
			objects = append(objects, &Object{ID: f.Id, Name: f.Name})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return objects, nil
		}
	}
}

func folderQuery(name, parentID string) string {
	return fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false and mimeType = '%s'",
		escapeQuery(name), parentID, folderMIMEType)
}

func fileQuery(name, parentID string) string {
	return fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false and mimeType != '%s'",
		escapeQuery(name), parentID, folderMIMEType)
}

func childFolderQuery(parentID string) string {
	return fmt.Sprintf("'%s' in parents and trashed = false and mimeType = '%s'", parentID, folderMIMEType)
}

func childQuery(parentID string) string {
	return fmt.Sprintf("'%s' in parents and trashed = false", parentID)
}

// escapeQuery escapes single quotes and backslashes in Drive query literals.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
