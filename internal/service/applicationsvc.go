package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/media"
)

type ApplicationsStore interface {
	CreateApplication(ctx context.Context, app domain.SoftwareApplication) (domain.SoftwareApplication, error)
	GetApplication(ctx context.Context, id string) (domain.SoftwareApplication, error)
	DeleteApplication(ctx context.Context, id string) error
	ListApplications(ctx context.Context) ([]domain.SoftwareApplication, error)
}

type ApplicationService struct {
	Store  ApplicationsStore
	Media  MediaStore
	Logger *slog.Logger
	Now    func() time.Time
}

func (s *ApplicationService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *ApplicationService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *ApplicationService) Add(ctx context.Context, name string, svg *media.Upload) (domain.SoftwareApplication, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SoftwareApplication{}, domain.NewValidationError(map[string]string{"name": "required"})
	}
	if err := requireUpload("svg", svg); err != nil {
		return domain.SoftwareApplication{}, err
	}

	svg.Folder = media.FolderSoftwareIcon
	asset, err := s.Media.Upload(ctx, *svg)
	if err != nil {
		return domain.SoftwareApplication{}, fmt.Errorf("upload svg: %w", err)
	}
	app, err := s.Store.CreateApplication(ctx, domain.SoftwareApplication{Name: name, SVG: asset, CreatedAt: s.now().UTC()})
	if err != nil {
		discardAssets(ctx, s.Media, s.logger(), asset)
		return domain.SoftwareApplication{}, err
	}
	return app, nil
}

func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	app, err := s.Store.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteApplication(ctx, id); err != nil {
		return err
	}
	discardAssets(ctx, s.Media, s.logger(), app.SVG)
	return nil
}

func (s *ApplicationService) List(ctx context.Context) ([]domain.SoftwareApplication, error) {
	return s.Store.ListApplications(ctx)
}
