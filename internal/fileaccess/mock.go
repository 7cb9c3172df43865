package fileaccess

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileSystem provides an in-memory filesystem for testing. The root
// directory always exists.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string]*MockFile

	// FailWrites makes every write to a path with this prefix fail.
	FailWrites string
}

// MockFile represents a file or directory in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates a new MockFileSystem
func NewMockFileSystem() *MockFileSystem {
	root := string(filepath.Separator)
	return &MockFileSystem{
		files: map[string]*MockFile{
			root: {Mode: 0o755 | fs.ModeDir, IsDir: true},
		},
	}
}

// AddFile adds a file, creating its parent directories.
func (m *MockFileSystem) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	m.mkdirAll(filepath.Dir(clean), 0o755)
	m.files[clean] = &MockFile{Content: content, Mode: 0o644, ModTime: time.Now()}
}

// AddDir adds a directory and its parents.
func (m *MockFileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(filepath.Clean(path), 0o755)
}

// Paths returns every path in the mock, sorted.
func (m *MockFileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return nil, &fs.PathError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}
	return append([]byte(nil), file.Content...), nil
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	if m.FailWrites != "" && strings.HasPrefix(clean, m.FailWrites) {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
	}
	if parent, ok := m.files[filepath.Dir(clean)]; !ok || !parent.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if f, ok := m.files[clean]; ok && f.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}

	m.files[clean] = &MockFile{
		Content: append([]byte(nil), data...),
		Mode:    perm,
		ModTime: time.Now(),
	}
	return nil
}

func (m *MockFileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	if _, ok := m.files[clean]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	if len(m.children(clean)) > 0 {
		return &fs.PathError{Op: "remove", Path: path, Err: errors.New("directory not empty")}
	}
	delete(m.files, clean)
	return nil
}

func (m *MockFileSystem) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	for p := range m.files {
		if p == clean || isBelow(p, clean) {
			delete(m.files, p)
		}
	}
	return nil
}

func (m *MockFileSystem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, to := filepath.Clean(oldPath), filepath.Clean(newPath)
	if _, ok := m.files[from]; !ok {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}
	if parent, ok := m.files[filepath.Dir(to)]; !ok || !parent.IsDir {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}

	moved := make(map[string]*MockFile)
	for p, f := range m.files {
		if p == from {
			moved[to] = f
			delete(m.files, p)
		} else if isBelow(p, from) {
			moved[to+strings.TrimPrefix(p, from)] = f
			delete(m.files, p)
		}
	}
	for p, f := range moved {
		m.files[p] = f
	}
	return nil
}

func (m *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readDir(path)
}

func (m *MockFileSystem) readDir(path string) ([]fs.DirEntry, error) {
	clean := filepath.Clean(path)
	file, ok := m.files[clean]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !file.IsDir {
		return nil, &fs.PathError{Op: "readdirent", Path: path, Err: errors.New("not a directory")}
	}

	var entries []fs.DirEntry
	for _, p := range m.children(clean) {
		entries = append(entries, &mockDirEntry{info: m.info(p)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func (m *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	if m.FailWrites != "" && strings.HasPrefix(clean, m.FailWrites) {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrPermission}
	}
	for p := clean; ; p = filepath.Dir(p) {
		if f, ok := m.files[p]; ok && !f.IsDir {
			return &fs.PathError{Op: "mkdir", Path: p, Err: errors.New("not a directory")}
		}
		if p == filepath.Dir(p) {
			break
		}
	}
	m.mkdirAll(clean, perm)
	return nil
}

func (m *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clean := filepath.Clean(path)
	if _, ok := m.files[clean]; !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return m.info(clean), nil
}

func (m *MockFileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// WalkDir visits root and its descendants in lexical order per directory,
// like filepath.WalkDir.
func (m *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	m.mu.RLock()
	clean := filepath.Clean(root)
	_, ok := m.files[clean]
	var rootEntry fs.DirEntry
	if ok {
		rootEntry = &mockDirEntry{info: m.info(clean)}
	}
	m.mu.RUnlock()

	if !ok {
		return fn(root, nil, &fs.PathError{Op: "lstat", Path: root, Err: fs.ErrNotExist})
	}

	err := m.walk(clean, rootEntry, fn)
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (m *MockFileSystem) walk(path string, entry fs.DirEntry, fn fs.WalkDirFunc) error {
	if err := fn(path, entry, nil); err != nil || !entry.IsDir() {
		if errors.Is(err, fs.SkipDir) && entry.IsDir() {
			return nil
		}
		return err
	}

	m.mu.RLock()
	entries, err := m.readDir(path)
	m.mu.RUnlock()
	if err != nil {
		return fn(path, entry, err)
	}

	for _, e := range entries {
		if err := m.walk(filepath.Join(path, e.Name()), e, fn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				break
			}
			return err
		}
	}
	return nil
}

func (m *MockFileSystem) mkdirAll(clean string, perm fs.FileMode) {
	for p := clean; ; p = filepath.Dir(p) {
		if _, ok := m.files[p]; !ok {
			m.files[p] = &MockFile{Mode: perm | fs.ModeDir, ModTime: time.Now(), IsDir: true}
		}
		if p == filepath.Dir(p) {
			return
		}
	}
}

func (m *MockFileSystem) children(dir string) []string {
	var out []string
	for p := range m.files {
		if p != dir && filepath.Dir(p) == dir {
			out = append(out, p)
		}
	}
	return out
}

func (m *MockFileSystem) info(clean string) *mockFileInfo {
	f := m.files[clean]
	return &mockFileInfo{
		name:    filepath.Base(clean),
		size:    int64(len(f.Content)),
		mode:    f.Mode,
		modTime: f.ModTime,
		isDir:   f.IsDir,
	}
}

func isBelow(p, dir string) bool {
	if dir == string(filepath.Separator) {
		return p != dir
	}
	return strings.HasPrefix(p, dir+string(filepath.Separator))
}
