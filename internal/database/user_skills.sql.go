package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const getExistingUserSkills = `-- name: GetExistingUserSkills :many
SELECT skill FROM user_skills
WHERE user_id = $1 AND skill = ANY($2::text[])
`

type GetExistingUserSkillsParams struct {
	UserID uuid.UUID
	Skills []string
}

func (q *Queries) GetExistingUserSkills(ctx context.Context, arg GetExistingUserSkillsParams) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getExistingUserSkills, arg.UserID, pq.Array(arg.Skills))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, err
		}
		items = append(items, skill)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getUserSkills = `-- name: GetUserSkills :many
SELECT skill FROM user_skills
WHERE user_id = $1
ORDER BY created_at, skill
`

func (q *Queries) GetUserSkills(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getUserSkills, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, err
		}
		items = append(items, skill)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertUserSkill = `-- name: InsertUserSkill :execrows
INSERT INTO user_skills (user_id, skill)
VALUES ($1, $2)
ON CONFLICT (user_id, skill) DO NOTHING
`

type InsertUserSkillParams struct {
	UserID uuid.UUID
	Skill  string
}

func (q *Queries) InsertUserSkill(ctx context.Context, arg InsertUserSkillParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertUserSkill, arg.UserID, arg.Skill)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
