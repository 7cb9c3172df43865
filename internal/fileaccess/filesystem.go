// Package fileaccess exposes the file operations the editor needs on a
// project tree: read, write, list, delete, rename, existence and directory
// creation.
//
// Everything goes through the FileSystem abstraction so the scaffolder and
// the operation handlers can be exercised against an in-memory tree.
package fileaccess

import (
	"io/fs"
)

// FileSystem provides an abstraction over file operations for testability
type FileSystem interface {
	// File operations
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	Rename(oldPath, newPath string) error

	// Directory operations
	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error

	// Path operations
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool

	// File walking
	WalkDir(root string, fn fs.WalkDirFunc) error
}
