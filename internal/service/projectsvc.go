package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/media"
	"portfolioserver/internal/validation"
)

type ProjectsStore interface {
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

type ProjectInput struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	GitRepoLink  string   `json:"gitRepoLink" validate:"required"`
	ProjectLink  string   `json:"projectLink" validate:"required"`
	Technologies []string `json:"technologies" validate:"required,min=1"`
	Stack        []string `json:"stack" validate:"required,min=1"`
	Deployed     *bool    `json:"deployed" validate:"required"`
}

// ProjectUpdate carries only the fields the caller sent.
type ProjectUpdate struct {
	Title        *string
	Description  *string
	GitRepoLink  *string
	ProjectLink  *string
	Technologies []string
	Stack        []string
	Deployed     *bool
	Banner       *media.Upload
}

type ProjectService struct {
	Store  ProjectsStore
	Media  MediaStore
	Logger *slog.Logger
}

func (s *ProjectService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *ProjectService) Add(ctx context.Context, in ProjectInput, banner *media.Upload) (domain.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.GitRepoLink = strings.TrimSpace(in.GitRepoLink)
	in.ProjectLink = strings.TrimSpace(in.ProjectLink)
	in.Technologies = SplitList(strings.Join(in.Technologies, ","))
	in.Stack = SplitList(strings.Join(in.Stack, ","))
	if err := validation.Struct(in); err != nil {
		return domain.Project{}, err
	}
	if err := requireUpload("projectBanner", banner); err != nil {
		return domain.Project{}, err
	}

	banner.Folder = media.FolderProjectBanner
	asset, err := s.Media.Upload(ctx, *banner)
	if err != nil {
		return domain.Project{}, fmt.Errorf("upload banner: %w", err)
	}

	p, err := s.Store.CreateProject(ctx, domain.Project{
		Title:         in.Title,
		Description:   in.Description,
		GitRepoLink:   in.GitRepoLink,
		ProjectLink:   in.ProjectLink,
		Technologies:  in.Technologies,
		Stack:         in.Stack,
		Deployed:      *in.Deployed,
		ProjectBanner: asset,
	})
	if err != nil {
		discardAssets(ctx, s.Media, s.logger(), asset)
		return domain.Project{}, err
	}
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, upd ProjectUpdate) (domain.Project, error) {
	p, err := s.Store.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}

	setTrimmed(&p.Title, upd.Title)
	setTrimmed(&p.Description, upd.Description)
	setTrimmed(&p.GitRepoLink, upd.GitRepoLink)
	setTrimmed(&p.ProjectLink, upd.ProjectLink)
	if list := SplitList(strings.Join(upd.Technologies, ",")); len(list) > 0 {
		p.Technologies = list
	}
	if list := SplitList(strings.Join(upd.Stack, ",")); len(list) > 0 {
		p.Stack = list
	}
	if upd.Deployed != nil {
		p.Deployed = *upd.Deployed
	}

	var old domain.Asset
	if upd.Banner != nil {
		upd.Banner.Folder = media.FolderProjectBanner
		asset, err := s.Media.Upload(ctx, *upd.Banner)
		if err != nil {
			return domain.Project{}, fmt.Errorf("upload banner: %w", err)
		}
		old, p.ProjectBanner = p.ProjectBanner, asset
	}

	updated, err := s.Store.UpdateProject(ctx, p)
	if err != nil {
		if upd.Banner != nil {
			discardAssets(ctx, s.Media, s.logger(), p.ProjectBanner)
		}
		return domain.Project{}, err
	}
	discardAssets(ctx, s.Media, s.logger(), old)
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	p, err := s.Store.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteProject(ctx, id); err != nil {
		return err
	}
	discardAssets(ctx, s.Media, s.logger(), p.ProjectBanner)
	return nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (domain.Project, error) {
	return s.Store.GetProject(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.Store.ListProjects(ctx)
}

// SplitList splits comma separated form input, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
