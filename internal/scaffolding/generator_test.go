package scaffolding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easypaper/easypaper/internal/build"
	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/fileaccess"
	"github.com/easypaper/easypaper/internal/process"
	"github.com/easypaper/easypaper/internal/project"
)

func TestList(t *testing.T) {
	templates := List()
	require.Len(t, templates, 3)

	ids := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		ids = append(ids, tmpl.ID)
		require.NotNil(t, tmpl.Author)
	}
	assert.Equal(t, []string{"article", "ieeetran", "acmart"}, ids)
	assert.Equal(t, "IEEE Conference", templates[1].Name)
	assert.Equal(t, "ACM conference/journal template", templates[2].Description)
}

func TestList_ReturnsCopies(t *testing.T) {
	first := List()
	first[0].Name = "changed"
	*first[0].Author = "changed"

	again := List()
	assert.Equal(t, "Article", again[0].Name)
	assert.Equal(t, "LaTeX", *again[0].Author)
}

func TestContent(t *testing.T) {
	tests := []struct {
		id       string
		contains string
	}{
		{"article", `\documentclass{article}`},
		{"ieeetran", `\documentclass[conference]{IEEEtran}`},
		{"acmart", `\documentclass[sigconf]{acmart}`},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			body, err := Content(tt.id)
			require.NoError(t, err)
			assert.Contains(t, body, tt.contains)
			assert.Contains(t, body, `\bibliography{refs}`)
		})
	}
}

func TestContent_Unknown(t *testing.T) {
	_, err := Content("thesis")
	require.Error(t, err)
	assert.Equal(t, "unknown template: thesis", err.Error())
	assert.Equal(t, apperrors.ErrCodeUnknownTemplate, apperrors.CodeOf(err))
}

func TestApply_CreatesProjectLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "paper")
	s := NewScaffolder(nil, nil)

	require.NoError(t, s.Apply(context.Background(), dir, "ieeetran", "Fast Things"))

	main, err := os.ReadFile(filepath.Join(dir, "main.tex"))
	require.NoError(t, err)
	body, _ := Content("ieeetran")
	assert.Equal(t, body, string(main))

	bib, err := os.ReadFile(filepath.Join(dir, "refs.bib"))
	require.NoError(t, err)
	assert.Contains(t, string(bib), "@article{example2024,")

	for _, sub := range []string{"figures", "sections", ".easypaper", "out"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir(), sub)
	}

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), "out/\n")

	cfg, err := project.Load(dir)
	require.NoError(t, err)
	want := project.Default()
	want.Name = "Fast Things"
	assert.Equal(t, want, cfg)
}

func TestApply_UnknownTemplateTouchesNothing(t *testing.T) {
	fsys := fileaccess.NewMockFileSystem()
	s := NewScaffolder(fsys, nil)

	err := s.Apply(context.Background(), "/projects/new", "thesis", "x")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnknownTemplate, apperrors.CodeOf(err))
	assert.Equal(t, []string{"/"}, fsys.Paths())
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	fsys := fileaccess.NewMockFileSystem()
	fsys.FailWrites = "/projects/new/sections"
	s := NewScaffolder(fsys, nil)

	err := s.Apply(context.Background(), "/projects/new", "article", "x")
	require.Error(t, err)
	assert.Equal(t, "failed to create sections directory", err.(*apperrors.AppError).Message)

	// Earlier steps stay, later ones never ran.
	assert.True(t, fsys.Exists("/projects/new/main.tex"))
	assert.True(t, fsys.Exists("/projects/new/refs.bib"))
	assert.True(t, fsys.Exists("/projects/new/figures"))
	assert.False(t, fsys.Exists("/projects/new/.easypaper"))
	assert.False(t, fsys.Exists("/projects/new/.gitignore"))
}

func TestApply_ThenCompile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-paper")
	require.NoError(t, NewScaffolder(nil, nil).Apply(context.Background(), dir, "article", "My Paper"))

	runner := &process.FakeRunner{Handler: func(cmd process.Command) (*process.Result, error) {
		if err := os.WriteFile(filepath.Join(cmd.Dir, "out", "main.pdf"), []byte("%PDF-1.5"), 0o644); err != nil {
			return nil, err
		}
		return &process.Result{Stdout: "note: Writing `out/main.pdf`\n"}, nil
	}}

	res, err := build.NewBuilder(build.WithRunner(runner)).Compile(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.NotNil(t, res.PDFPath)
	assert.Equal(t, filepath.Join(dir, "out", "main.pdf"), *res.PDFPath)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "tectonic", calls[0].Name)
	assert.Equal(t, dir, calls[0].Dir)
}

func TestDefaultProjectName(t *testing.T) {
	tests := map[string]string{
		"/tmp/my-first_paper": "My First Paper",
		"thesis":              "Thesis",
		"/a/b/ICML.2025/":     "Icml 2025",
		"/":                   project.DefaultName,
	}
	for in, want := range tests {
		assert.Equal(t, want, DefaultProjectName(in), in)
	}
}
