package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"portfolioserver/internal/domain"
)

type ProjectsStore struct {
	db DB
}

func NewProjectsStore(db DB) *ProjectsStore {
	return &ProjectsStore{db: db}
}

const projectColumns = `id, title, description, git_repo_link, project_link, technologies, stack, deployed, banner_id, banner_url`

func scanProject(row pgx.Row) (domain.Project, error) {
	var (
		p     domain.Project
		id    pgtype.UUID
		techs pgtype.FlatArray[string]
		stack pgtype.FlatArray[string]
	)
	err := row.Scan(&id, &p.Title, &p.Description, &p.GitRepoLink, &p.ProjectLink,
		&techs, &stack, &p.Deployed, &p.ProjectBanner.ID, &p.ProjectBanner.URL)
	if err != nil {
		return domain.Project{}, err
	}
	p.ID = uuidOrEmpty(id)
	p.Technologies = textArrayOrEmpty(techs)
	p.Stack = textArrayOrEmpty(stack)
	return p, nil
}

func (s *ProjectsStore) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	const q = `
		INSERT INTO projects (title, description, git_repo_link, project_link, technologies, stack, deployed, banner_id, banner_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + projectColumns

	created, err := scanProject(s.db.QueryRow(ctx, q,
		p.Title, p.Description, p.GitRepoLink, p.ProjectLink, p.Technologies, p.Stack, p.Deployed,
		p.ProjectBanner.ID, p.ProjectBanner.URL,
	))
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

func (s *ProjectsStore) GetProject(ctx context.Context, id string) (domain.Project, error) {
	uid, err := parseID(id)
	if err != nil {
		return domain.Project{}, err
	}
	p, err := scanProject(s.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectsStore) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	uid, err := parseID(p.ID)
	if err != nil {
		return domain.Project{}, err
	}
	const q = `
		UPDATE projects SET
			title = $2, description = $3, git_repo_link = $4, project_link = $5,
			technologies = $6, stack = $7, deployed = $8, banner_id = $9, banner_url = $10
		WHERE id = $1
		RETURNING ` + projectColumns

	updated, err := scanProject(s.db.QueryRow(ctx, q,
		uid, p.Title, p.Description, p.GitRepoLink, p.ProjectLink, p.Technologies, p.Stack, p.Deployed,
		p.ProjectBanner.ID, p.ProjectBanner.URL,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

func (s *ProjectsStore) DeleteProject(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "projects", id)
}

func (s *ProjectsStore) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}
