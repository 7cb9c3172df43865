// Package synctex maps positions between PDF pages and TeX sources by
// shelling out to the synctex command line tool.
package synctex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/process"
)

var (
	// ErrNotInstalled is returned when no synctex candidate resolves.
	ErrNotInstalled = apperrors.NewNotFoundError(apperrors.ErrCodeToolMissing,
		"SyncTeX not installed").WithHint("Please install MacTeX or TeX Live.")
	// ErrSourceNotFound is returned when a forward query has no Output line.
	ErrSourceNotFound = apperrors.NewNotFoundError(apperrors.ErrCodeNoSourceMatch, "could not find source location")
)

// DefaultCandidates is the search order used when settings do not override it.
var DefaultCandidates = []string{
	"synctex",
	"/opt/homebrew/bin/synctex",
	"/usr/local/bin/synctex",
	"/Library/TeX/texbin/synctex",
	"/usr/local/texlive/2025/bin/universal-darwin/synctex",
	"/usr/local/texlive/2024/bin/universal-darwin/synctex",
	"/usr/local/texlive/2023/bin/universal-darwin/synctex",
	"/usr/local/texlive/2025/bin/x86_64-linux/synctex",
	"/usr/local/texlive/2024/bin/x86_64-linux/synctex",
	"/usr/local/texlive/2023/bin/x86_64-linux/synctex",
}

// SourceLocation is the answer to a PDF -> source query.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// PDFPosition is the answer to a source -> PDF query.
type PDFPosition struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Locator resolves the synctex executable from an ordered candidate list.
// Bare names are resolved through PATH, anything containing a path
// separator must exist on disk.
type Locator struct {
	Candidates []string

	lookPath func(string) (string, bool)
	exists   func(string) bool
}

// NewLocator creates a Locator over candidates, falling back to DefaultCandidates.
func NewLocator(candidates []string) *Locator {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Locator{
		Candidates: candidates,
		lookPath:   process.LookPath,
		exists: func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		},
	}
}

// Resolve returns the first usable candidate.
func (l *Locator) Resolve() (string, error) {
	for _, c := range l.Candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if isBareName(c) {
			if _, ok := l.lookPath(c); ok {
				return c, nil
			}
			continue
		}
		if l.exists(c) {
			return c, nil
		}
	}
	return "", ErrNotInstalled
}

func isBareName(c string) bool {
	return !strings.ContainsRune(c, '/') && !strings.ContainsRune(c, filepath.Separator)
}

// Bridge runs synctex queries.
type Bridge struct {
	locator *Locator
	runner  process.Runner
	logger  logging.Logger
}

// NewBridge creates a Bridge.
func NewBridge(locator *Locator, runner process.Runner, logger logging.Logger) *Bridge {
	if locator == nil {
		locator = NewLocator(nil)
	}
	if runner == nil {
		runner = process.NewExecRunner()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Bridge{locator: locator, runner: runner, logger: logger.WithComponent("synctex")}
}

// LocateSource maps a point on a PDF page to a source file, line and column.
func (b *Bridge) LocateSource(ctx context.Context, pdfPath string, page int, x, y float64) (*SourceLocation, error) {
	query := fmt.Sprintf("%d:%s:%s:%s", page, formatFloat(x), formatFloat(y), pdfPath)

	out, err := b.view(ctx, "-i", query)
	if err != nil {
		return nil, err
	}

	loc, ok := ParseSourceLocation(out)
	if !ok {
		return nil, ErrSourceNotFound
	}
	return loc, nil
}

// LocatePDF maps a source line and column to a position in pdfPath.
func (b *Bridge) LocatePDF(ctx context.Context, sourcePath string, line, column int, pdfPath string) (*PDFPosition, error) {
	input := fmt.Sprintf("%d:%d:%s", line, column, sourcePath)

	out, err := b.view(ctx, "-i", input, "-o", pdfPath)
	if err != nil {
		return nil, err
	}
	return ParsePDFPosition(out), nil
}

func (b *Bridge) view(ctx context.Context, args ...string) (string, error) {
	bin, err := b.locator.Resolve()
	if err != nil {
		return "", err
	}

	cmd := process.Command{Name: bin, Args: append([]string{"view"}, args...)}
	b.logger.Debug(ctx, "running synctex", "binary", bin, "args", cmd.Args)

	res, err := b.runner.Run(ctx, cmd)
	if err != nil {
		return "", apperrors.NewToolError(apperrors.ErrCodeToolLaunch, "failed to run synctex", err, "")
	}
	if !res.Success() {
		return "", apperrors.NewToolError(apperrors.ErrCodeToolFailed,
			"synctex command failed", errors.New(strings.TrimSpace(res.Stderr)), "")
	}
	return res.Stdout, nil
}

// ParseSourceLocation reads Output/Line/Column records. The last occurrence of
// each key wins; unparseable numbers are left at zero. ok is false when no
// non-empty Output line was present.
func ParseSourceLocation(out string) (*SourceLocation, bool) {
	loc := &SourceLocation{}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "Output:"):
			loc.File = strings.TrimPrefix(line, "Output:")
		case strings.HasPrefix(line, "Line:"):
			if n, err := strconv.Atoi(strings.TrimPrefix(line, "Line:")); err == nil {
				loc.Line = n
			}
		case strings.HasPrefix(line, "Column:"):
			if n, err := strconv.Atoi(strings.TrimPrefix(line, "Column:")); err == nil {
				loc.Column = n
			}
		}
	}

	if loc.File == "" {
		return nil, false
	}
	return loc, true
}

// ParsePDFPosition reads Page/x/y records, defaulting to page 1 at 0,0.
func ParsePDFPosition(out string) *PDFPosition {
	pos := &PDFPosition{Page: 1}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if v, ok := strings.CutPrefix(line, "Page:"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				pos.Page = n
			}
		} else if v, ok := strings.CutPrefix(line, "x:"); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				pos.X = f
			}
		} else if v, ok := strings.CutPrefix(line, "y:"); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				pos.Y = f
			}
		}
	}

	return pos
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
