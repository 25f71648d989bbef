package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

var ErrSkillNotFound = errors.New("skill not found")

type SkillRepository struct {
	pool *pgxpool.Pool
}

func NewSkillRepository(pool *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{pool: pool}
}

func (r *SkillRepository) Create(ctx context.Context, skill models.Skill) error {
	const query = `
		INSERT INTO skills (id, user_id, name, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		skill.ID,
		skill.UserID,
		skill.Name,
		skill.Category,
		skill.Description,
	)
	return err
}

func (r *SkillRepository) GetByID(ctx context.Context, id string) (models.Skill, error) {
	const query = `
		SELECT id, user_id, name, category, description, created_at
		FROM skills WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var skill models.Skill
	if err := row.Scan(
		&skill.ID,
		&skill.UserID,
		&skill.Name,
		&skill.Category,
		&skill.Description,
		&skill.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Skill{}, ErrSkillNotFound
		}
		return models.Skill{}, err
	}
	return skill, nil
}

func (r *SkillRepository) ListByUser(ctx context.Context, userID string) ([]models.Skill, error) {
	const query = `
		SELECT id, user_id, name, category, description, created_at
		FROM skills WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []models.Skill
	for rows.Next() {
		var skill models.Skill
		if err := rows.Scan(
			&skill.ID,
			&skill.UserID,
			&skill.Name,
			&skill.Category,
			&skill.Description,
			&skill.CreatedAt,
		); err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	return skills, rows.Err()
}

// DeleteOwned removes a skill only when it belongs to userID.
func (r *SkillRepository) DeleteOwned(ctx context.Context, id string, userID string) error {
	const query = `DELETE FROM skills WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSkillNotFound
	}
	return nil
}
