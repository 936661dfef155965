package feed

import (
	"context"

	"github.com/gdrivecast/gdrivecast/pkg/drive"
)

// Storage is the slice of the object store the synchronizer needs.
type Storage interface {
	FindFile(ctx context.Context, name, parentID string) (*drive.Object, error)
	Upload(ctx context.Context, localPath, name, parentID string) (*drive.File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	ListChildren(ctx context.Context, parentID string) ([]*drive.Object, error)
	Delete(ctx context.Context, id string) error
}
