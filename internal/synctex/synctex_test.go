package synctex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/process"
)

func stubLocator(candidates []string, onPath map[string]bool, onDisk map[string]bool) *Locator {
	l := NewLocator(candidates)
	l.lookPath = func(name string) (string, bool) {
		if onPath[name] {
			return "/usr/bin/" + name, true
		}
		return "", false
	}
	l.exists = func(p string) bool { return onDisk[p] }
	return l
}

func TestLocator_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		onPath     map[string]bool
		onDisk     map[string]bool
		want       string
		wantErr    bool
	}{
		{
			name:       "bare name on PATH wins",
			candidates: []string{"synctex", "/opt/homebrew/bin/synctex"},
			onPath:     map[string]bool{"synctex": true},
			onDisk:     map[string]bool{"/opt/homebrew/bin/synctex": true},
			want:       "synctex",
		},
		{
			name:       "falls through to first existing path",
			candidates: []string{"synctex", "/a/synctex", "/b/synctex"},
			onDisk:     map[string]bool{"/b/synctex": true},
			want:       "/b/synctex",
		},
		{
			name:       "paths are not looked up on PATH",
			candidates: []string{"/a/synctex"},
			onPath:     map[string]bool{"/a/synctex": true},
			wantErr:    true,
		},
		{
			name:       "blank entries are skipped",
			candidates: []string{"  ", "/a/synctex"},
			onDisk:     map[string]bool{"/a/synctex": true},
			want:       "/a/synctex",
		},
		{
			name:       "nothing resolves",
			candidates: []string{"synctex", "/a/synctex"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stubLocator(tt.candidates, tt.onPath, tt.onDisk).Resolve()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotInstalled)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLocator_DefaultsWhenEmpty(t *testing.T) {
	assert.Equal(t, DefaultCandidates, NewLocator(nil).Candidates)
	assert.Equal(t, []string{"x"}, NewLocator([]string{"x"}).Candidates)
}

func TestErrNotInstalled_Message(t *testing.T) {
	assert.Equal(t, "SyncTeX not installed. Please install MacTeX or TeX Live.", ErrNotInstalled.Error())
}

func newTestBridge(handler func(process.Command) (*process.Result, error)) (*Bridge, *process.FakeRunner) {
	runner := &process.FakeRunner{Handler: handler}
	loc := stubLocator([]string{"synctex"}, map[string]bool{"synctex": true}, nil)
	return NewBridge(loc, runner, nil), runner
}

func TestLocateSource(t *testing.T) {
	b, runner := newTestBridge(func(process.Command) (*process.Result, error) {
		return &process.Result{Stdout: "SyncTeX result begin\nOutput:/p/main.tex\nLine:42\nColumn:-1\nSyncTeX result end\n"}, nil
	})

	loc, err := b.LocateSource(context.Background(), "/p/out/main.pdf", 2, 100.5, 200)
	require.NoError(t, err)
	assert.Equal(t, &SourceLocation{File: "/p/main.tex", Line: 42, Column: -1}, loc)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "synctex", calls[0].Name)
	assert.Equal(t, []string{"view", "-i", "2:100.5:200:/p/out/main.pdf"}, calls[0].Args)
}

func TestLocateSource_NoOutputLine(t *testing.T) {
	b, _ := newTestBridge(func(process.Command) (*process.Result, error) {
		return &process.Result{Stdout: "SyncTeX result begin\nSyncTeX result end\n"}, nil
	})

	_, err := b.LocateSource(context.Background(), "/p/out/main.pdf", 1, 0, 0)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestLocatePDF(t *testing.T) {
	b, runner := newTestBridge(func(process.Command) (*process.Result, error) {
		return &process.Result{Stdout: "Output:/p/out/main.pdf\nPage:3\nx:72.5\ny:640.25\nh:70\nv:650\n"}, nil
	})

	pos, err := b.LocatePDF(context.Background(), "/p/main.tex", 12, 0, "/p/out/main.pdf")
	require.NoError(t, err)
	assert.Equal(t, &PDFPosition{Page: 3, X: 72.5, Y: 640.25}, pos)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"view", "-i", "12:0:/p/main.tex", "-o", "/p/out/main.pdf"}, calls[0].Args)
}

func TestLocatePDF_EmptyOutputDefaults(t *testing.T) {
	b, _ := newTestBridge(func(process.Command) (*process.Result, error) {
		return &process.Result{}, nil
	})

	pos, err := b.LocatePDF(context.Background(), "/p/main.tex", 1, 0, "/p/out/main.pdf")
	require.NoError(t, err)
	assert.Equal(t, &PDFPosition{Page: 1}, pos)
}

func TestBridge_ToolFailures(t *testing.T) {
	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		b, _ := newTestBridge(func(process.Command) (*process.Result, error) {
			return &process.Result{ExitCode: 1, Stderr: "no synctex file\n"}, nil
		})
		_, err := b.LocatePDF(context.Background(), "/p/main.tex", 1, 0, "/p/out/main.pdf")
		require.Error(t, err)
		assert.Equal(t, "synctex command failed: no synctex file", err.Error())
	})

	t.Run("launch failure", func(t *testing.T) {
		b, _ := newTestBridge(func(process.Command) (*process.Result, error) {
			return nil, errors.New("permission denied")
		})
		_, err := b.LocateSource(context.Background(), "/p/out/main.pdf", 1, 0, 0)
		require.Error(t, err)
		assert.Equal(t, "failed to run synctex: permission denied", err.Error())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTool))
	})

	t.Run("not installed never runs", func(t *testing.T) {
		runner := &process.FakeRunner{}
		b := NewBridge(stubLocator([]string{"synctex"}, nil, nil), runner, nil)
		_, err := b.LocateSource(context.Background(), "/p/out/main.pdf", 1, 0, 0)
		require.ErrorIs(t, err, ErrNotInstalled)
		assert.Empty(t, runner.Calls())
	})
}

func TestParseSourceLocation(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want *SourceLocation
	}{
		{
			name: "last occurrence wins",
			out:  "Output:/a.tex\nLine:1\nOutput:/b.tex\nLine:7\nColumn:3\n",
			want: &SourceLocation{File: "/b.tex", Line: 7, Column: 3},
		},
		{
			name: "bad numbers stay zero",
			out:  "Output:/a.tex\nLine:abc\nColumn:\n",
			want: &SourceLocation{File: "/a.tex"},
		},
		{
			name: "crlf",
			out:  "Output:/a.tex\r\nLine:9\r\n",
			want: &SourceLocation{File: "/a.tex", Line: 9},
		},
		{
			name: "empty output path",
			out:  "Output:\nLine:9\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSourceLocation(tt.out)
			if tt.want == nil {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePDFPosition_IgnoresGarbage(t *testing.T) {
	pos := ParsePDFPosition("Page:two\nx:1e2\ny:oops\n")
	assert.Equal(t, &PDFPosition{Page: 1, X: 100}, pos)
}
