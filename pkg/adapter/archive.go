package adapter

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// Archive is the interface for transcript and export persistence
type Archive interface {
	// Put returns a writer to save a document under key
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get loads a previously saved document
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// fileArchive implements Archive on the local filesystem
type fileArchive struct {
	dir string
}

// NewFileArchive creates an Archive rooted at dir. Directories are created
// on first write.
func NewFileArchive(dir string) Archive {
	return &fileArchive{dir: dir}
}

func (a *fileArchive) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	path := filepath.Join(a.dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create archive directory", goerr.Value("key", key))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create archive file", goerr.Value("key", key))
	}
	return f, nil
}

func (a *fileArchive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(a.dir, key))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from archive", goerr.Value("key", key))
	}
	return f, nil
}
