package fileaccess

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"

	gitignore "github.com/denormal/go-gitignore"

	apperrors "github.com/easypaper/easypaper/internal/errors"
)

// ErrNotExist is returned by Write when the target is missing and create is false.
var ErrNotExist = apperrors.NewNotFoundError(apperrors.ErrCodeFileNotFound, "file does not exist")

// FileInfo describes one entry returned by List.
type FileInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// ListOptions controls List.
type ListOptions struct {
	// Recursive walks the whole tree instead of the direct children.
	Recursive bool `json:"recursive"`
	// RespectIgnore hides entries matched by the .gitignore at the listed root.
	RespectIgnore bool `json:"respect_ignore"`
}

// Files implements the editor's file operations on top of a FileSystem.
type Files struct {
	fs FileSystem
}

// New creates a Files over fsys. A nil fsys means the real disk.
func New(fsys FileSystem) *Files {
	if fsys == nil {
		fsys = NewOSFileSystem()
	}
	return &Files{fs: fsys}
}

// FS returns the underlying filesystem.
func (f *Files) FS() FileSystem {
	return f.fs
}

// Read returns the whole file as text.
func (f *Files) Read(path string) (string, error) {
	data, err := f.fs.ReadFile(path)
	if err != nil {
		return "", apperrors.WrapIO(err, apperrors.ErrCodeFileRead, "failed to read file")
	}
	return string(data), nil
}

// Write replaces the content of path. Unless create is set the file must
// already exist. Missing parent directories are created.
func (f *Files) Write(path, content string, create bool) error {
	if !create && !f.fs.Exists(path) {
		return ErrNotExist
	}

	if parent := filepath.Dir(path); !f.fs.Exists(parent) {
		if err := f.fs.MkdirAll(parent, 0o755); err != nil {
			return apperrors.WrapIO(err, apperrors.ErrCodeDirCreate, "failed to create parent directories")
		}
	}

	if err := f.fs.WriteFile(path, []byte(content), 0o644); err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeFileWrite, "failed to write file")
	}
	return nil
}

// List returns the entries under dir. Paths are relative to dir. The
// recursive form skips entries it cannot read rather than failing.
func (f *Files) List(dir string, opts ListOptions) ([]FileInfo, error) {
	var ignore gitignore.GitIgnore
	if opts.RespectIgnore {
		ignore = f.loadIgnore(dir)
	}

	if !opts.Recursive {
		entries, err := f.fs.ReadDir(dir)
		if err != nil {
			return nil, apperrors.WrapIO(err, apperrors.ErrCodeDirList, "failed to read directory")
		}

		files := make([]FileInfo, 0, len(entries))
		for _, e := range entries {
			if ignored(ignore, e.Name(), e.IsDir()) {
				continue
			}
			files = append(files, FileInfo{Name: e.Name(), Path: e.Name(), IsDir: e.IsDir(), Size: entrySize(e)})
		}
		return files, nil
	}

	files := []FileInfo{}
	err := f.fs.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d == nil {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if ignored(ignore, rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		files = append(files, FileInfo{Name: d.Name(), Path: rel, IsDir: d.IsDir(), Size: entrySize(d)})
		return nil
	})
	if err != nil {
		return nil, apperrors.WrapIO(err, apperrors.ErrCodeDirList, "failed to read directory")
	}
	return files, nil
}

// Delete removes a file, or a directory with everything below it.
func (f *Files) Delete(path string) error {
	info, err := f.fs.Stat(path)
	if err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeFileDelete, "failed to delete")
	}

	if info.IsDir() {
		err = f.fs.RemoveAll(path)
	} else {
		err = f.fs.Remove(path)
	}
	if err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeFileDelete, "failed to delete")
	}
	return nil
}

// Rename moves oldPath to newPath.
func (f *Files) Rename(oldPath, newPath string) error {
	if err := f.fs.Rename(oldPath, newPath); err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeFileRename, "failed to rename")
	}
	return nil
}

// Exists reports whether path exists.
func (f *Files) Exists(path string) bool {
	return f.fs.Exists(path)
}

// Mkdir creates path and any missing parents.
func (f *Files) Mkdir(path string) error {
	if err := f.fs.MkdirAll(path, 0o755); err != nil {
		return apperrors.WrapIO(err, apperrors.ErrCodeDirCreate, "failed to create directory")
	}
	return nil
}

func (f *Files) loadIgnore(dir string) gitignore.GitIgnore {
	data, err := f.fs.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	// Malformed patterns are skipped, the rest still apply.
	return gitignore.New(bytes.NewReader(data), dir, func(gitignore.Error) bool { return true })
}

func ignored(ignore gitignore.GitIgnore, rel string, isDir bool) bool {
	if ignore == nil {
		return false
	}
	match := ignore.Relative(rel, isDir)
	return match != nil && match.Ignore()
}

func entrySize(d fs.DirEntry) int64 {
	if d.IsDir() {
		return 0
	}
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.Size()
}

// IsNotExist reports whether err means a path was missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrNotExist)
}
