package api

import (
	"context"

	"github.com/easypaper/easypaper/internal/build"
	"github.com/easypaper/easypaper/internal/fileaccess"
	"github.com/easypaper/easypaper/internal/logging"
	"github.com/easypaper/easypaper/internal/scaffolding"
	"github.com/easypaper/easypaper/internal/synctex"
)

// Operation names.
const (
	OpFileRead           = "file_read"
	OpFileWrite          = "file_write"
	OpFileList           = "file_list"
	OpFileDelete         = "file_delete"
	OpFileRename         = "file_rename"
	OpFileExists         = "file_exists"
	OpCreateDir          = "create_dir"
	OpBuildCompile       = "build_compile"
	OpBuildClean         = "build_clean"
	OpTemplateList       = "template_list"
	OpTemplateApply      = "template_apply"
	OpTemplateGetContent = "template_get_content"
	OpSyncTeXForward     = "synctex_forward"
	OpSyncTeXBackward    = "synctex_backward"
)

// Services are the components operations delegate to.
type Services struct {
	Files      *fileaccess.Files
	Builder    *build.Builder
	Scaffolder *scaffolding.Scaffolder
	SyncTeX    *synctex.Bridge
}

type PathParams struct {
	Path string `json:"path"`
}

type WriteParams struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Create  bool   `json:"create"`
}

type ListParams struct {
	Dir           string `json:"dir"`
	Recursive     bool   `json:"recursive"`
	RespectIgnore bool   `json:"respect_ignore"`
}

type RenameParams struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

type ProjectParams struct {
	ProjectDir string `json:"project_dir"`
}

type TemplateApplyParams struct {
	ProjectDir  string `json:"project_dir"`
	TemplateID  string `json:"template_id"`
	ProjectName string `json:"project_name"`
}

type TemplateParams struct {
	TemplateID string `json:"template_id"`
}

type ForwardParams struct {
	PDFPath string  `json:"pdf_path"`
	Page    int     `json:"page"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type BackwardParams struct {
	SourcePath string `json:"source_path"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	PDFPath    string `json:"pdf_path"`
}

// NewDefaultRegistry registers every operation against svc.
func NewDefaultRegistry(svc Services, logger logging.Logger) *Registry {
	r := NewRegistry(logger)

	r.Register(OpFileRead, Typed(func(_ context.Context, p PathParams) (string, error) {
		if err := required("path", p.Path); err != nil {
			return "", err
		}
		return svc.Files.Read(p.Path)
	}))

	r.Register(OpFileWrite, Typed(func(_ context.Context, p WriteParams) (any, error) {
		if err := required("path", p.Path); err != nil {
			return nil, err
		}
		return nil, svc.Files.Write(p.Path, p.Content, p.Create)
	}))

	r.Register(OpFileList, Typed(func(_ context.Context, p ListParams) ([]fileaccess.FileInfo, error) {
		if err := required("dir", p.Dir); err != nil {
			return nil, err
		}
		return svc.Files.List(p.Dir, fileaccess.ListOptions{Recursive: p.Recursive, RespectIgnore: p.RespectIgnore})
	}))

	r.Register(OpFileDelete, Typed(func(_ context.Context, p PathParams) (any, error) {
		if err := required("path", p.Path); err != nil {
			return nil, err
		}
		return nil, svc.Files.Delete(p.Path)
	}))

	r.Register(OpFileRename, Typed(func(_ context.Context, p RenameParams) (any, error) {
		if err := required("old_path", p.OldPath, "new_path", p.NewPath); err != nil {
			return nil, err
		}
		return nil, svc.Files.Rename(p.OldPath, p.NewPath)
	}))

	r.Register(OpFileExists, Typed(func(_ context.Context, p PathParams) (bool, error) {
		if err := required("path", p.Path); err != nil {
			return false, err
		}
		return svc.Files.Exists(p.Path), nil
	}))

	r.Register(OpCreateDir, Typed(func(_ context.Context, p PathParams) (any, error) {
		if err := required("path", p.Path); err != nil {
			return nil, err
		}
		return nil, svc.Files.Mkdir(p.Path)
	}))

	r.Register(OpBuildCompile, Typed(func(ctx context.Context, p ProjectParams) (*build.Result, error) {
		if err := required("project_dir", p.ProjectDir); err != nil {
			return nil, err
		}
		return svc.Builder.Compile(ctx, p.ProjectDir)
	}))

	r.Register(OpBuildClean, Typed(func(ctx context.Context, p ProjectParams) (any, error) {
		if err := required("project_dir", p.ProjectDir); err != nil {
			return nil, err
		}
		return nil, svc.Builder.Clean(ctx, p.ProjectDir)
	}))

	r.Register(OpTemplateList, Typed(func(context.Context, struct{}) ([]scaffolding.Template, error) {
		return scaffolding.List(), nil
	}))

	r.Register(OpTemplateApply, Typed(func(ctx context.Context, p TemplateApplyParams) (any, error) {
		if err := required("project_dir", p.ProjectDir, "template_id", p.TemplateID); err != nil {
			return nil, err
		}
		name := p.ProjectName
		if name == "" {
			name = scaffolding.DefaultProjectName(p.ProjectDir)
		}
		return nil, svc.Scaffolder.Apply(ctx, p.ProjectDir, p.TemplateID, name)
	}))

	r.Register(OpTemplateGetContent, Typed(func(_ context.Context, p TemplateParams) (string, error) {
		if err := required("template_id", p.TemplateID); err != nil {
			return "", err
		}
		return scaffolding.Content(p.TemplateID)
	}))

	r.Register(OpSyncTeXForward, Typed(func(ctx context.Context, p ForwardParams) (*synctex.SourceLocation, error) {
		if err := required("pdf_path", p.PDFPath); err != nil {
			return nil, err
		}
		return svc.SyncTeX.LocateSource(ctx, p.PDFPath, p.Page, p.X, p.Y)
	}))

	r.Register(OpSyncTeXBackward, Typed(func(ctx context.Context, p BackwardParams) (*synctex.PDFPosition, error) {
		if err := required("source_path", p.SourcePath, "pdf_path", p.PDFPath); err != nil {
			return nil, err
		}
		return svc.SyncTeX.LocatePDF(ctx, p.SourcePath, p.Line, p.Column, p.PDFPath)
	}))

	return r
}
