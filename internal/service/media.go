package service

import (
	"context"
	"log/slog"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/media"
)

type MediaStore interface {
	Upload(ctx context.Context, up media.Upload) (domain.Asset, error)
	Delete(ctx context.Context, id string) error
}

// discardAssets removes assets whose owning write did not happen or that
// were replaced. Failures only leave an orphan on the media host, so they
// are logged and swallowed.
func discardAssets(ctx context.Context, store MediaStore, logger *slog.Logger, assets ...domain.Asset) {
	for _, a := range assets {
		if a.ID == "" {
			continue
		}
		if err := store.Delete(ctx, a.ID); err != nil {
			logger.Warn("media delete failed", "asset_id", a.ID, "err", err)
		}
	}
}

func requireUpload(field string, up *media.Upload) error {
	if up == nil || up.Body == nil {
		return domain.NewValidationError(map[string]string{field: "file is required"})
	}
	return nil
}
