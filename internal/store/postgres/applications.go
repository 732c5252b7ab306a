package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"portfolioserver/internal/domain"
)

type ApplicationsStore struct {
	db DB
}

func NewApplicationsStore(db DB) *ApplicationsStore {
	return &ApplicationsStore{db: db}
}

const applicationColumns = `id, name, svg_id, svg_url, created_at`

func scanApplication(row pgx.Row) (domain.SoftwareApplication, error) {
	var (
		app domain.SoftwareApplication
		id  pgtype.UUID
	)
	if err := row.Scan(&id, &app.Name, &app.SVG.ID, &app.SVG.URL, &app.CreatedAt); err != nil {
		return domain.SoftwareApplication{}, err
	}
	app.ID = uuidOrEmpty(id)
	return app, nil
}

func (s *ApplicationsStore) CreateApplication(ctx context.Context, app domain.SoftwareApplication) (domain.SoftwareApplication, error) {
	const q = `
		INSERT INTO software_applications (name, svg_id, svg_url, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + applicationColumns

	created, err := scanApplication(s.db.QueryRow(ctx, q, app.Name, app.SVG.ID, app.SVG.URL, app.CreatedAt))
	if err != nil {
		return domain.SoftwareApplication{}, fmt.Errorf("create software application: %w", err)
	}
	return created, nil
}

func (s *ApplicationsStore) GetApplication(ctx context.Context, id string) (domain.SoftwareApplication, error) {
	uid, err := parseID(id)
	if err != nil {
		return domain.SoftwareApplication{}, err
	}
	q := `SELECT ` + applicationColumns + ` FROM software_applications WHERE id = $1`
	app, err := scanApplication(s.db.QueryRow(ctx, q, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SoftwareApplication{}, domain.ErrNotFound
		}
		return domain.SoftwareApplication{}, fmt.Errorf("get software application: %w", err)
	}
	return app, nil
}

func (s *ApplicationsStore) DeleteApplication(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "software_applications", id)
}

func (s *ApplicationsStore) ListApplications(ctx context.Context) ([]domain.SoftwareApplication, error) {
	rows, err := s.db.Query(ctx, `SELECT `+applicationColumns+` FROM software_applications ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list software applications: %w", err)
	}
	defer rows.Close()

	out := []domain.SoftwareApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan software application: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list software applications: %w", err)
	}
	return out, nil
}
