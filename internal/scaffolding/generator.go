// Package scaffolding holds the built-in LaTeX template catalog and creates
// new projects from it.
package scaffolding

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	apperrors "github.com/easypaper/easypaper/internal/errors"
	"github.com/easypaper/easypaper/internal/fileaccess"
	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/project"
)

// List returns the catalog in its fixed order.
func List() []Template {
	out := make([]Template, 0, len(catalog))
	for _, t := range catalog {
		tmpl := t.Template
		if t.Author != nil {
			tmpl.Author = strPtr(*t.Author)
		}
		out = append(out, tmpl)
	}
	return out
}

// Content returns the document body of template id.
func Content(id string) (string, error) {
	i, ok := catalogIndex[id]
	if !ok {
		return "", unknownTemplate(id)
	}
	return catalog[i].Content, nil
}

func unknownTemplate(id string) error {
	return apperrors.NewValidationError(apperrors.ErrCodeUnknownTemplate, fmt.Sprintf("unknown template: %s", id))
}

// Scaffolder writes new projects.
type Scaffolder struct {
	fs     fileaccess.FileSystem
	logger logging.Logger
}

// NewScaffolder creates a Scaffolder writing through fsys (the real disk when nil).
func NewScaffolder(fsys fileaccess.FileSystem, logger logging.Logger) *Scaffolder {
	if fsys == nil {
		fsys = fileaccess.NewOSFileSystem()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scaffolder{fs: fsys, logger: logger.WithComponent("scaffolding")}
}

// Apply creates a project from template id in projectDir. The id is checked
// before anything touches the disk; after that each step runs in order and
// the first failure is returned as is, leaving earlier steps in place.
func (s *Scaffolder) Apply(ctx context.Context, projectDir, id, projectName string) error {
	content, err := Content(id)
	if err != nil {
		return err
	}

	cfg := project.Default()
	cfg.Name = projectName
	cfgData, err := cfg.Marshal()
	if err != nil {
		return apperrors.WrapConfig(err, apperrors.ErrCodeConfigWrite, "failed to serialize project config")
	}

	steps := []func() error{
		s.mkdir(projectDir, "project directory"),
		s.write(filepath.Join(projectDir, cfg.Main), content),
		s.write(filepath.Join(projectDir, "refs.bib"), bibliographyStub),
		s.mkdir(filepath.Join(projectDir, "figures"), "figures directory"),
		s.mkdir(filepath.Join(projectDir, "sections"), "sections directory"),
		s.mkdir(filepath.Join(projectDir, project.Dir), project.Dir+" directory"),
		s.write(project.Path(projectDir), string(cfgData)),
		s.mkdir(cfg.OutputDir(projectDir), "output directory"),
		s.write(filepath.Join(projectDir, ".gitignore"), gitignoreContent),
	}

	for _, step := range steps {
		if err := step(); err != nil {
			s.logger.Error(ctx, err, "scaffolding failed", "project", projectDir, "template", id)
			return err
		}
	}

	s.logger.Info(ctx, "project created", "project", projectDir, "template", id, "name", projectName)
	return nil
}

func (s *Scaffolder) mkdir(path, label string) func() error {
	return func() error {
		if err := s.fs.MkdirAll(path, 0o755); err != nil {
			return apperrors.WrapIO(err, apperrors.ErrCodeDirCreate, "failed to create "+label)
		}
		return nil
	}
}

func (s *Scaffolder) write(path, content string) func() error {
	return func() error {
		if err := s.fs.WriteFile(path, []byte(content), 0o644); err != nil {
			return apperrors.WrapIO(err, apperrors.ErrCodeFileWrite,
				fmt.Sprintf("failed to write %s", filepath.Base(path)))
		}
		return nil
	}
}

// DefaultProjectName derives a display name from a directory name:
// "my-first_paper" becomes "My First Paper".
func DefaultProjectName(projectDir string) string {
	base := filepath.Base(filepath.Clean(projectDir))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' ' || r == '/' || r == filepath.Separator
	})
	if len(words) == 0 {
		return project.DefaultName
	}

	caser := cases.Title(language.English)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
