package fileaccess

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/easypaper/easypaper/internal/errors"
)

// backends runs each test against the real disk and the in-memory mock.
func backends(t *testing.T) map[string]func(t *testing.T) (*Files, string) {
	return map[string]func(t *testing.T) (*Files, string){
		"os": func(t *testing.T) (*Files, string) {
			return New(NewOSFileSystem()), t.TempDir()
		},
		"mock": func(t *testing.T) (*Files, string) {
			m := NewMockFileSystem()
			m.AddDir("/work")
			return New(m), "/work"
		},
	}
}

func TestWrite_RequiresExistingFileUnlessCreate(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			path := filepath.Join(root, "main.tex")

			err := f.Write(path, "x", false)
			require.ErrorIs(t, err, ErrNotExist)
			assert.Equal(t, "file does not exist", err.Error())
			assert.False(t, f.Exists(path))

			require.NoError(t, f.Write(path, "hello", true))
			require.NoError(t, f.Write(path, "world", false))

			got, err := f.Read(path)
			require.NoError(t, err)
			assert.Equal(t, "world", got)
		})
	}
}

func TestWrite_CreatesParents(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			path := filepath.Join(root, "sections", "intro", "a.tex")

			require.NoError(t, f.Write(path, "\\section{A}", true))
			assert.True(t, f.Exists(filepath.Join(root, "sections", "intro")))
		})
	}
}

func TestRead_Missing(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			_, err := f.Read(filepath.Join(root, "nope.tex"))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeFileRead, apperrors.CodeOf(err))
			assert.True(t, IsNotExist(err))
		})
	}
}

func seedTree(t *testing.T, f *Files, root string) {
	t.Helper()
	for path, content := range map[string]string{
		"main.tex":           "doc",
		"refs.bib":           "@article{}",
		"sections/intro.tex": "intro",
		"out/main.pdf":       "%PDF",
		"out/main.aux":       "aux",
		".gitignore":         "out/\n*.aux\n",
	} {
		require.NoError(t, f.Write(filepath.Join(root, path), content, true))
	}
	require.NoError(t, f.Mkdir(filepath.Join(root, "figures")))
}

func paths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, fi := range files {
		out = append(out, fi.Path)
	}
	return out
}

func TestList_Flat(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			seedTree(t, f, root)

			files, err := f.List(root, ListOptions{})
			require.NoError(t, err)
			assert.ElementsMatch(t,
				[]string{".gitignore", "figures", "main.tex", "out", "refs.bib", "sections"},
				paths(files))

			for _, fi := range files {
				assert.Equal(t, fi.Name, fi.Path)
				if fi.Name == "main.tex" {
					assert.False(t, fi.IsDir)
					assert.Equal(t, int64(3), fi.Size)
				}
				if fi.Name == "figures" {
					assert.True(t, fi.IsDir)
				}
			}
		})
	}
}

func TestList_Recursive(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			seedTree(t, f, root)

			files, err := f.List(root, ListOptions{Recursive: true})
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{
				".gitignore", "figures", "main.tex", "refs.bib",
				"out", filepath.Join("out", "main.pdf"), filepath.Join("out", "main.aux"),
				"sections", filepath.Join("sections", "intro.tex"),
			}, paths(files))
		})
	}
}

func TestList_RespectIgnore(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			seedTree(t, f, root)
			require.NoError(t, f.Write(filepath.Join(root, "sections", "intro.aux"), "aux", true))

			files, err := f.List(root, ListOptions{Recursive: true, RespectIgnore: true})
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{
				".gitignore", "figures", "main.tex", "refs.bib",
				"sections", filepath.Join("sections", "intro.tex"),
			}, paths(files))

			flat, err := f.List(root, ListOptions{RespectIgnore: true})
			require.NoError(t, err)
			assert.NotContains(t, paths(flat), "out")
		})
	}
}

func TestList_MissingDir(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			_, err := f.List(filepath.Join(root, "missing"), ListOptions{})
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeDirList, apperrors.CodeOf(err))

			files, err := f.List(filepath.Join(root, "missing"), ListOptions{Recursive: true})
			require.NoError(t, err, "the recursive walk skips what it cannot read")
			assert.Empty(t, files)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			seedTree(t, f, root)

			require.NoError(t, f.Delete(filepath.Join(root, "main.tex")))
			assert.False(t, f.Exists(filepath.Join(root, "main.tex")))

			require.NoError(t, f.Delete(filepath.Join(root, "out")))
			assert.False(t, f.Exists(filepath.Join(root, "out", "main.pdf")))

			err := f.Delete(filepath.Join(root, "out"))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeFileDelete, apperrors.CodeOf(err))
		})
	}
}

func TestRename(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			seedTree(t, f, root)

			require.NoError(t, f.Rename(filepath.Join(root, "sections"), filepath.Join(root, "chapters")))
			got, err := f.Read(filepath.Join(root, "chapters", "intro.tex"))
			require.NoError(t, err)
			assert.Equal(t, "intro", got)
			assert.False(t, f.Exists(filepath.Join(root, "sections")))

			err = f.Rename(filepath.Join(root, "nope"), filepath.Join(root, "other"))
			assert.Equal(t, apperrors.ErrCodeFileRename, apperrors.CodeOf(err))
			assertLinkError(t, err, filepath.Join(root, "nope"), filepath.Join(root, "other"))

			err = f.Rename(filepath.Join(root, "main.tex"), filepath.Join(root, "missing", "main.tex"))
			assert.Equal(t, apperrors.ErrCodeFileRename, apperrors.CodeOf(err))
			assertLinkError(t, err, filepath.Join(root, "main.tex"), filepath.Join(root, "missing", "main.tex"))
			assert.True(t, f.Exists(filepath.Join(root, "main.tex")))
		})
	}
}

func assertLinkError(t *testing.T, err error, oldPath, newPath string) {
	t.Helper()
	var linkErr *os.LinkError
	require.True(t, errors.As(err, &linkErr), "want *os.LinkError, got %T", err)
	assert.Equal(t, "rename", linkErr.Op)
	assert.Equal(t, oldPath, linkErr.Old)
	assert.Equal(t, newPath, linkErr.New)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMkdir_Nested(t *testing.T) {
	for name, setup := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f, root := setup(t)
			dir := filepath.Join(root, "a", "b", "c")
			require.NoError(t, f.Mkdir(dir))
			require.NoError(t, f.Mkdir(dir), "mkdir is idempotent")

			info, err := f.FS().Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestMkdir_OverFileFails(t *testing.T) {
	dir := t.TempDir()
	f := New(nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0o644))

	err := f.Mkdir(filepath.Join(dir, "file", "sub"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDirCreate, apperrors.CodeOf(err))
}

func TestMockFileSystem_FailWrites(t *testing.T) {
	m := NewMockFileSystem()
	m.AddDir("/p")
	m.FailWrites = "/p/locked"

	f := New(m)
	err := f.Write("/p/locked/a.tex", "x", true)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDirCreate, apperrors.CodeOf(err))
	assert.Equal(t, []string{"/", "/p"}, m.Paths())
}
