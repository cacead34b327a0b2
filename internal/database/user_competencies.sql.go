package database

import (
	"context"

	"github.com/google/uuid"
)

const getUserCompetencies = `-- name: GetUserCompetencies :many
SELECT competency_name, rating FROM user_competencies
WHERE user_id = $1
ORDER BY competency_name
`

type GetUserCompetenciesRow struct {
	CompetencyName string
	Rating         int32
}

func (q *Queries) GetUserCompetencies(ctx context.Context, userID uuid.UUID) ([]GetUserCompetenciesRow, error) {
	rows, err := q.db.QueryContext(ctx, getUserCompetencies, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetUserCompetenciesRow
	for rows.Next() {
		var i GetUserCompetenciesRow
		if err := rows.Scan(&i.CompetencyName, &i.Rating); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertUserCompetency = `-- name: UpsertUserCompetency :exec
INSERT INTO user_competencies (user_id, competency_name, rating)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, competency_name)
DO UPDATE SET
    rating = EXCLUDED.rating,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertUserCompetencyParams struct {
	UserID         uuid.UUID
	CompetencyName string
	Rating         int32
}

func (q *Queries) UpsertUserCompetency(ctx context.Context, arg UpsertUserCompetencyParams) error {
	_, err := q.db.ExecContext(ctx, upsertUserCompetency, arg.UserID, arg.CompetencyName, arg.Rating)
	return err
}
