package feed

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdrivecast/gdrivecast/pkg/drive"
	"github.com/gdrivecast/gdrivecast/pkg/model"
)

// fakeStorage is an in-memory object store keyed by parent folder.
type fakeStorage struct {
	children map[string][]*drive.Object
	content  map[string][]byte
	deleted  []string
	uploads  int
	nextID   int

	failDownload bool
	failUpload   bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		children: map[string][]*drive.Object{},
		content:  map[string][]byte{},
	}
}

func (f *fakeStorage) put(parentID, name string, data []byte) *drive.Object {
	f.nextID++
	obj := &drive.Object{ID: fmt.Sprintf("obj-%d", f.nextID), Name: name}
	f.children[parentID] = append(f.children[parentID], obj)
	f.content[obj.ID] = data
	return obj
}

func (f *fakeStorage) FindFile(ctx context.Context, name, parentID string) (*drive.Object, error) {
	for _, obj := range f.children[parentID] {
		if obj.Name == name {
			return obj, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) Upload(ctx context.Context, localPath, name, parentID string) (*drive.File, error) {
	if f.failUpload {
		return nil, errors.Wrap(model.ErrStoreUnavailable, "upload failed")
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}

	f.uploads++

	existing, _ := f.FindFile(ctx, name, parentID)
	if existing == nil {
		existing = f.put(parentID, name, data)
	} else {
		f.content[existing.ID] = data
	}

	return &drive.File{Object: *existing, URL: "https://direct/" + existing.ID}, nil
}

func (f *fakeStorage) Download(ctx context.Context, fileID string) ([]byte, error) {
	if f.failDownload {
		return nil, errors.Wrap(model.ErrStoreUnavailable, "download failed")
	}

	data, ok := f.content[fileID]
	if !ok {
		return nil, errors.Wrapf(model.ErrStoreUnavailable, "no such file: %s", fileID)
	}
	return data, nil
}

func (f *fakeStorage) ListChildren(ctx context.Context, parentID string) ([]*drive.Object, error) {
	return f.children[parentID], nil
}

func (f *fakeStorage) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	for parent, objs := range f.children {
		for i, obj := range objs {
			if obj.ID == id {
				f.children[parent] = append(objs[:i], objs[i+1:]...)
				delete(f.content, obj.ID)
				return nil
			}
		}
	}
	return nil
}

func testItem(n int) Item {
	video := &model.VideoMetadata{
		ID:          fmt.Sprintf("V%d", n),
		Title:       fmt.Sprintf("Ep %d", n),
		PublishedAt: time.Date(2024, 5, n, 10, 0, 0, 0, time.UTC),
	}
	url := fmt.Sprintf("https://direct/audio%d", n)
	return NewItem(video, "notes", url, int64(1000*n))
}

func remoteFeed(t *testing.T, store *fakeStorage, folderID string) *Document {
	t.Helper()

	obj, err := store.FindFile(context.Background(), FileName, folderID)
	require.NoError(t, err)
	require.NotNil(t, obj, "no remote feed in folder %s", folderID)

	doc, err := Parse(store.content[obj.ID])
	require.NoError(t, err)
	return doc
}

func TestPublish_CreatesFeed(t *testing.T) {
	store := newFakeStorage()
	sync := NewSynchronizer(store, t.TempDir(), Defaults{})
	folder := &drive.Object{ID: "ch1", Name: "UC123"}

	url, err := sync.Publish(context.Background(), folder, testChannel, testItem(1))
	require.NoError(t, err)
	assert.Contains(t, url, "https://direct/")

	doc := remoteFeed(t, store, "ch1")
	assert.Equal(t, "Test Channel", doc.Title)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Ep 1", doc.Items[0].Title)
	assert.Equal(t, "https://direct/audio1", doc.Items[0].Enclosure.URL)
}

func TestPublish_AppendsToExistingFeed(t *testing.T) {
	store := newFakeStorage()
	sync := NewSynchronizer(store, t.TempDir(), Defaults{})
	folder := &drive.Object{ID: "ch1", Name: "UC123"}

	_, err := sync.Publish(context.Background(), folder, testChannel, testItem(1))
	require.NoError(t, err)

	// Channel metadata of the second publish is ignored once a feed exists.
	other := &model.ChannelMetadata{ID: "UC123", Title: "Renamed", URL: testChannel.URL}
	_, err = sync.Publish(context.Background(), folder, other, testItem(2))
	require.NoError(t, err)

	doc := remoteFeed(t, store, "ch1")
	assert.Equal(t, "Test Channel", doc.Title)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Ep 1", doc.Items[0].Title)
	assert.Equal(t, "Ep 2", doc.Items[1].Title)
}

func TestPublish_DownloadFailureAbortsBeforeMutation(t *testing.T) {
	store := newFakeStorage()
	doc := New(testChannel, Defaults{})
	data, err := doc.Bytes()
	require.NoError(t, err)
	store.put("ch1", FileName, data)
	store.failDownload = true

	sync := NewSynchronizer(store, t.TempDir(), Defaults{})

	_, err = sync.Publish(context.Background(), &drive.Object{ID: "ch1"}, testChannel, testItem(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Zero(t, store.uploads, "nothing may be uploaded when the download fails")
}

func TestPublish_UploadFailureLeavesRemoteIntact(t *testing.T) {
	store := newFakeStorage()
	sync := NewSynchronizer(store, t.TempDir(), Defaults{})
	folder := &drive.Object{ID: "ch1", Name: "UC123"}

	_, err := sync.Publish(context.Background(), folder, testChannel, testItem(1))
	require.NoError(t, err)

	store.failUpload = true
	_, err = sync.Publish(context.Background(), folder, testChannel, testItem(2))
	require.Error(t, err)

	doc := remoteFeed(t, store, "ch1")
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Ep 1", doc.Items[0].Title)
}

func TestPublish_MalformedRemoteFeed(t *testing.T) {
	store := newFakeStorage()
	store.put("ch1", FileName, []byte("not a feed"))
	sync := NewSynchronizer(store, t.TempDir(), Defaults{})

	_, err := sync.Publish(context.Background(), &drive.Object{ID: "ch1"}, testChannel, testItem(1))
	assert.ErrorIs(t, err, model.ErrMalformedFeed)
}

func TestPurge(t *testing.T) {
	store := newFakeStorage()
	sync := NewSynchronizer(store, t.TempDir(), Defaults{})
	folder := &drive.Object{ID: "ch1", Name: "UC123"}

	_, err := sync.Publish(context.Background(), folder, testChannel, testItem(1))
	require.NoError(t, err)
	_, err = sync.Publish(context.Background(), folder, testChannel, testItem(2))
	require.NoError(t, err)

	audio1 := store.put("ch1", "V1.mp3", []byte("audio1"))
	audio2 := store.put("ch1", "V2.mp3", []byte("audio2"))

	require.NoError(t, sync.Purge(context.Background(), folder))

	doc := remoteFeed(t, store, "ch1")
	assert.Empty(t, doc.Items)
	assert.Equal(t, "Test Channel", doc.Title)
	assert.ElementsMatch(t, []string{audio1.ID, audio2.ID}, store.deleted)
}

func TestPurge_EmptyFolder(t *testing.T) {
	store := newFakeStorage()
	sync := NewSynchronizer(store, t.TempDir(), Defaults{})

	require.NoError(t, sync.Purge(context.Background(), &drive.Object{ID: "ch1", Name: "UC123"}))
	assert.Zero(t, store.uploads)
}
