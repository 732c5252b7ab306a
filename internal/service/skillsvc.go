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

type SkillsStore interface {
	CreateSkill(ctx context.Context, sk domain.Skill) (domain.Skill, error)
	GetSkill(ctx context.Context, id string) (domain.Skill, error)
	SetSkillProficiency(ctx context.Context, id, proficiency string) (domain.Skill, error)
	DeleteSkill(ctx context.Context, id string) error
	ListSkills(ctx context.Context) ([]domain.Skill, error)
}

type SkillInput struct {
	Title       string `json:"title" validate:"required"`
	Proficiency string `json:"proficiency" validate:"required"`
}

type SkillService struct {
	Store  SkillsStore
	Media  MediaStore
	Logger *slog.Logger
}

func (s *SkillService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *SkillService) Add(ctx context.Context, in SkillInput, svg *media.Upload) (domain.Skill, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Proficiency = strings.TrimSpace(in.Proficiency)
	if err := validation.Struct(in); err != nil {
		return domain.Skill{}, err
	}
	if err := requireUpload("svg", svg); err != nil {
		return domain.Skill{}, err
	}

	svg.Folder = media.FolderSkillIcon
	asset, err := s.Media.Upload(ctx, *svg)
	if err != nil {
		return domain.Skill{}, fmt.Errorf("upload svg: %w", err)
	}
	sk, err := s.Store.CreateSkill(ctx, domain.Skill{Title: in.Title, Proficiency: in.Proficiency, SVG: asset})
	if err != nil {
		discardAssets(ctx, s.Media, s.logger(), asset)
		return domain.Skill{}, err
	}
	return sk, nil
}

// UpdateProficiency is the only mutable field of a skill.
func (s *SkillService) UpdateProficiency(ctx context.Context, id, proficiency string) (domain.Skill, error) {
	proficiency = strings.TrimSpace(proficiency)
	if proficiency == "" {
		return domain.Skill{}, domain.NewValidationError(map[string]string{"proficiency": "required"})
	}
	return s.Store.SetSkillProficiency(ctx, id, proficiency)
}

func (s *SkillService) Delete(ctx context.Context, id string) error {
	sk, err := s.Store.GetSkill(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteSkill(ctx, id); err != nil {
		return err
	}
	discardAssets(ctx, s.Media, s.logger(), sk.SVG)
	return nil
}

func (s *SkillService) List(ctx context.Context) ([]domain.Skill, error) {
	return s.Store.ListSkills(ctx)
}
