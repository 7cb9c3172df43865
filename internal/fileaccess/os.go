package fileaccess

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements FileSystem on the real disk.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (*OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (*OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (*OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (*OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (*OSFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (*OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (*OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (*OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (*OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (*OSFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}
