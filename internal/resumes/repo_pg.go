package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a resume. Re-inserting an existing id is a no-op so retried creates stay single.
func (r *PGRepo) Create(ctx context.Context, res Resume) (string, error) {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    file_name,
    original_name,
    file_path,
    file_size,
    raw_text,
    analysis,
    uploaded_at,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

	if res.UserID == "" {
		return "", ErrInvalidInput
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	payload, err := json.Marshal(res.Analysis)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.UserID,
		res.FileName,
		res.OriginalName,
		res.FilePath,
		res.FileSize,
		res.RawText,
		payload,
		res.UploadedAt,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		return "", err
	}
	return res.ID, nil
}

// ListByUser lists a user's resumes newest upload first. RawText is not loaded.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	const query = `
SELECT id, user_id, file_name, original_name, file_path, file_size, analysis, uploaded_at, created_at, updated_at
FROM resumes
WHERE user_id = $1
ORDER BY uploaded_at DESC, created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		var res Resume
		var payload []byte
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.FileName,
			&res.OriginalName,
			&res.FilePath,
			&res.FileSize,
			&payload,
			&res.UploadedAt,
			&res.CreatedAt,
			&res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &res.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis for %s: %w", res.ID, err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	const query = `
SELECT id, user_id, file_name, original_name, file_path, file_size, raw_text, analysis, uploaded_at, created_at, updated_at
FROM resumes
WHERE id = $1`

	// Anything that is not a UUID cannot name a row; Postgres would reject it with a cast error.
	if _, err := uuid.Parse(id); err != nil {
		return Resume{}, ErrNotFound
	}

	var res Resume
	var payload []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&res.ID,
		&res.UserID,
		&res.FileName,
		&res.OriginalName,
		&res.FilePath,
		&res.FileSize,
		&res.RawText,
		&payload,
		&res.UploadedAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if err := json.Unmarshal(payload, &res.Analysis); err != nil {
		return Resume{}, fmt.Errorf("decode analysis for %s: %w", res.ID, err)
	}
	return res, nil
}

func (r *PGRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Ping(ctx context.Context) error {
	if r.DB == nil {
		return errors.New("db not configured")
	}
	return r.DB.PingContext(ctx)
}

var _ Repo = (*PGRepo)(nil)
