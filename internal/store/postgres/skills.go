package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"portfolioserver/internal/domain"
)

type SkillsStore struct {
	db DB
}

func NewSkillsStore(db DB) *SkillsStore {
	return &SkillsStore{db: db}
}

const skillColumns = `id, title, proficiency, svg_id, svg_url`

func scanSkill(row pgx.Row) (domain.Skill, error) {
	var (
		sk domain.Skill
		id pgtype.UUID
	)
	if err := row.Scan(&id, &sk.Title, &sk.Proficiency, &sk.SVG.ID, &sk.SVG.URL); err != nil {
		return domain.Skill{}, err
	}
	sk.ID = uuidOrEmpty(id)
	return sk, nil
}

func (s *SkillsStore) CreateSkill(ctx context.Context, sk domain.Skill) (domain.Skill, error) {
	const q = `
		INSERT INTO skills (title, proficiency, svg_id, svg_url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + skillColumns

	created, err := scanSkill(s.db.QueryRow(ctx, q, sk.Title, sk.Proficiency, sk.SVG.ID, sk.SVG.URL))
	if err != nil {
		return domain.Skill{}, fmt.Errorf("create skill: %w", err)
	}
	return created, nil
}

func (s *SkillsStore) GetSkill(ctx context.Context, id string) (domain.Skill, error) {
	uid, err := parseID(id)
	if err != nil {
		return domain.Skill{}, err
	}
	sk, err := scanSkill(s.db.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Skill{}, domain.ErrNotFound
		}
		return domain.Skill{}, fmt.Errorf("get skill: %w", err)
	}
	return sk, nil
}

func (s *SkillsStore) SetSkillProficiency(ctx context.Context, id, proficiency string) (domain.Skill, error) {
	uid, err := parseID(id)
	if err != nil {
		return domain.Skill{}, err
	}
	const q = `UPDATE skills SET proficiency = $2 WHERE id = $1 RETURNING ` + skillColumns

	sk, err := scanSkill(s.db.QueryRow(ctx, q, uid, proficiency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Skill{}, domain.ErrNotFound
		}
		return domain.Skill{}, fmt.Errorf("update skill: %w", err)
	}
	return sk, nil
}

func (s *SkillsStore) DeleteSkill(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "skills", id)
}

func (s *SkillsStore) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	rows, err := s.db.Query(ctx, `SELECT `+skillColumns+` FROM skills ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	out := []domain.Skill{}
	for rows.Next() {
		sk, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return out, nil
}
