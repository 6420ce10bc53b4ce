package browsefs

import (
	"context"
	"io/fs"
	"os"

	"golang.org/x/net/webdav"
)

// webdavFS adapts FS to golang.org/x/net/webdav.FileSystem, the same
// afero-to-webdav shape the teacher's own webdav adapter uses — except
// every mutating verb here is rejected outright rather than forwarded,
// since there is nothing in an archive to mutate.
type webdavFS struct {
	fs *FS
}

// AsWebDAV wraps fs so it can be served directly by golang.org/x/net/webdav.Handler.
func AsWebDAV(fs *FS) webdav.FileSystem {
	return &webdavFS{fs: fs}
}

func (w *webdavFS) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	return ErrReadOnly
}

func (w *webdavFS) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, ErrReadOnly
	}
	return w.fs.Open(name)
}

func (w *webdavFS) RemoveAll(ctx context.Context, name string) error {
	return ErrReadOnly
}

func (w *webdavFS) Rename(ctx context.Context, oldName, newName string) error {
	return ErrReadOnly
}

func (w *webdavFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	return w.fs.Stat(name)
}
