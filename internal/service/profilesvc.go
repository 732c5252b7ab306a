package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/media"
	"portfolioserver/internal/validation"
)

// RegisterWithUploads checks the input and uniqueness, stores both files on
// the media host and then registers. If registration still fails the
// uploaded files are removed again.
func (s *AuthService) RegisterWithUploads(ctx context.Context, in RegisterInput, avatar, resume *media.Upload) (Session, error) {
	in = in.normalized()
	if err := checkRegisterInput(in, avatar, resume); err != nil {
		return Session{}, err
	}
	if err := checkUnique(ctx, s.Accounts, in.Email, in.Phone, ""); err != nil {
		return Session{}, err
	}

	avatar.Folder = media.FolderAvatar
	av, err := s.Media.Upload(ctx, *avatar)
	if err != nil {
		return Session{}, fmt.Errorf("upload avatar: %w", err)
	}
	resume.Folder = media.FolderResume
	rs, err := s.Media.Upload(ctx, *resume)
	if err != nil {
		discardAssets(ctx, s.Media, s.logger(), av)
		return Session{}, fmt.Errorf("upload resume: %w", err)
	}

	in.Avatar, in.Resume = av, rs
	sess, err := s.Register(ctx, in)
	if err != nil {
		discardAssets(ctx, s.Media, s.logger(), av, rs)
		return Session{}, err
	}
	return sess, nil
}

// checkRegisterInput reports missing files together with every other
// invalid field.
func checkRegisterInput(in RegisterInput, avatar, resume *media.Upload) error {
	fields := map[string]string{}
	for name, up := range map[string]*media.Upload{"avatar": avatar, "resume": resume} {
		var verr *domain.ValidationError
		if errors.As(requireUpload(name, up), &verr) {
			maps.Copy(fields, verr.Fields)
		}
	}

	// The assets do not exist yet; stand-ins keep them out of the report.
	in.Avatar = domain.Asset{ID: "pending", URL: "pending"}
	in.Resume = in.Avatar
	if err := validation.Struct(in); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		maps.Copy(fields, verr.Fields)
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

// ProfileUpdate carries only the fields the caller sent.
type ProfileUpdate struct {
	FullName     *string
	Email        *string
	Phone        *string
	AboutMe      *string
	PortfolioURL *string
	GithubURL    *string
	InstagramURL *string
	FacebookURL  *string
	LinkedinURL  *string
	ThreadURL    *string
	Avatar       *media.Upload
	Resume       *media.Upload
}

type profileFields struct {
	FullName     string `json:"fullName" validate:"required,min=3,max=50"`
	Email        string `json:"email" validate:"required,account_email"`
	Phone        string `json:"phone" validate:"required,phone10"`
	AboutMe      string `json:"aboutMe" validate:"required"`
	PortfolioURL string `json:"portfolioURL" validate:"required,portfolio_url"`
}

type ProfileService struct {
	Accounts AccountsStore
	Media    MediaStore
	Logger   *slog.Logger
}

func (s *ProfileService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// UpdateProfile applies upd, saves, and only then deletes any replaced asset.
func (s *ProfileService) UpdateProfile(ctx context.Context, accountID string, upd ProfileUpdate) (domain.Account, error) {
	acct, err := s.Accounts.GetAccountSecretsByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	a := &acct.Account
	setTrimmed(&a.FullName, upd.FullName)
	setTrimmed(&a.Phone, upd.Phone)
	setTrimmed(&a.AboutMe, upd.AboutMe)
	setTrimmed(&a.PortfolioURL, upd.PortfolioURL)
	setTrimmed(&a.Social.GithubURL, upd.GithubURL)
	setTrimmed(&a.Social.InstagramURL, upd.InstagramURL)
	setTrimmed(&a.Social.FacebookURL, upd.FacebookURL)
	setTrimmed(&a.Social.LinkedinURL, upd.LinkedinURL)
	setTrimmed(&a.Social.ThreadURL, upd.ThreadURL)
	if upd.Email != nil && strings.TrimSpace(*upd.Email) != "" {
		a.Email = validation.NormalizeEmail(*upd.Email)
	}

	if err := validation.Struct(profileFields{
		FullName:     a.FullName,
		Email:        a.Email,
		Phone:        a.Phone,
		AboutMe:      a.AboutMe,
		PortfolioURL: a.PortfolioURL,
	}); err != nil {
		return domain.Account{}, err
	}
	if err := checkUnique(ctx, s.Accounts, a.Email, a.Phone, a.ID); err != nil {
		return domain.Account{}, err
	}

	var uploaded, replaced []domain.Asset
	if upd.Avatar != nil {
		upd.Avatar.Folder = media.FolderAvatar
		asset, err := s.Media.Upload(ctx, *upd.Avatar)
		if err != nil {
			return domain.Account{}, fmt.Errorf("upload avatar: %w", err)
		}
		uploaded = append(uploaded, asset)
		replaced = append(replaced, a.Avatar)
		a.Avatar = asset
	}
	if upd.Resume != nil {
		upd.Resume.Folder = media.FolderResume
		asset, err := s.Media.Upload(ctx, *upd.Resume)
		if err != nil {
			discardAssets(ctx, s.Media, s.logger(), uploaded...)
			return domain.Account{}, fmt.Errorf("upload resume: %w", err)
		}
		uploaded = append(uploaded, asset)
		replaced = append(replaced, a.Resume)
		a.Resume = asset
	}

	saved, err := s.Accounts.SaveAccount(ctx, acct)
	if err != nil {
		discardAssets(ctx, s.Media, s.logger(), uploaded...)
		return domain.Account{}, err
	}
	discardAssets(ctx, s.Media, s.logger(), replaced...)
	return saved, nil
}

// setTrimmed keeps the current value when v is absent or blank.
func setTrimmed(dst *string, v *string) {
	if v == nil {
		return
	}
	if t := strings.TrimSpace(*v); t != "" {
		*dst = t
	}
}
