package encryption

import (
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// osFiler is an absfs.Filer over the host file system. Names resolve under
// root when it is set. Files it creates are owner-only, and missing parent
// directories are created with them.
type osFiler struct {
	root string
}

// NewOSFileSystem returns an absfs.FileSystem over the host file system.
// With an empty root, relative names resolve against the process working
// directory; otherwise every name resolves under root.
func NewOSFileSystem(root string) (absfs.FileSystem, error) {
	fs := absfs.ExtendFiler(&osFiler{root: root})
	if root != "" {
		return fs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := fs.Chdir(wd); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *osFiler) path(name string) string {
	if f.root == "" {
		return name
	}
	return filepath.Join(f.root, name)
}

func (f *osFiler) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	path := f.path(name)
	if flag&os.O_CREATE != 0 {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		perm &= 0600
	}
	file, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (f *osFiler) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(f.path(name), perm)
}

func (f *osFiler) Remove(name string) error {
	return os.Remove(f.path(name))
}

func (f *osFiler) Rename(oldpath, newpath string) error {
	return os.Rename(f.path(oldpath), f.path(newpath))
}

func (f *osFiler) Stat(name string) (os.FileInfo, error) {
	return os.Stat(f.path(name))
}

func (f *osFiler) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(f.path(name), mode)
}

func (f *osFiler) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(f.path(name), atime, mtime)
}

func (f *osFiler) Chown(name string, uid, gid int) error {
	return os.Chown(f.path(name), uid, gid)
}

var _ absfs.Filer = (*osFiler)(nil)
