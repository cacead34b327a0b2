package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const getResumeUpload = `-- name: GetResumeUpload :one
SELECT id, user_id, original_filename, mime, size_bytes, object_key, status, skills_added, error, created_at, updated_at FROM resume_uploads
WHERE id = $1
`

func (q *Queries) GetResumeUpload(ctx context.Context, id uuid.UUID) (ResumeUpload, error) {
	row := q.db.QueryRowContext(ctx, getResumeUpload, id)
	var i ResumeUpload
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.ObjectKey,
		&i.Status,
		&i.SkillsAdded,
		&i.Error,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateResumeUploadStatus = `-- name: UpdateResumeUploadStatus :exec
UPDATE resume_uploads
SET status = $1, skills_added = $2, error = $3, updated_at = CURRENT_TIMESTAMP
WHERE id = $4
`

type UpdateResumeUploadStatusParams struct {
	Status      string
	SkillsAdded int32
	Error       sql.NullString
	ID          uuid.UUID
}

func (q *Queries) UpdateResumeUploadStatus(ctx context.Context, arg UpdateResumeUploadStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateResumeUploadStatus,
		arg.Status,
		arg.SkillsAdded,
		arg.Error,
		arg.ID,
	)
	return err
}
