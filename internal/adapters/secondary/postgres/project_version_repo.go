package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

type projectVersionRepo struct {
	pool *pgxpool.Pool
}

func NewProjectVersionRepository(pool *pgxpool.Pool) ports.ProjectVersionRepository {
	return &projectVersionRepo{pool: pool}
}

func (r *projectVersionRepo) Create(ctx context.Context, version *domain.ProjectVersion) error {
	query := `
		INSERT INTO project_version (id, created_at, project_id, major, minor, revision)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		version.ID, version.CreatedAt, version.ProjectID,
		version.Major, version.Minor, version.Revision,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrProjectVersionConflict
		}
		return fmt.Errorf("create project version: %w", err)
	}
	return nil
}

func (r *projectVersionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectVersion, error) {
	query := `
		SELECT id, created_at, project_id, major, minor, revision
		FROM project_version
		WHERE id = $1
	`
	v, err := scanProjectVersion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectVersionNotFound
		}
		return nil, fmt.Errorf("get project version by id: %w", err)
	}
	return v, nil
}

func (r *projectVersionRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectVersion, error) {
	query := `
		SELECT id, created_at, project_id, major, minor, revision
		FROM project_version
		WHERE project_id = $1
		ORDER BY major, minor, revision
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project versions: %w", err)
	}
	defer rows.Close()

	versions := make([]*domain.ProjectVersion, 0)
	for rows.Next() {
		v, err := scanProjectVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func scanProjectVersion(row pgx.Row) (*domain.ProjectVersion, error) {
	var v domain.ProjectVersion
	err := row.Scan(&v.ID, &v.CreatedAt, &v.ProjectID, &v.Major, &v.Minor, &v.Revision)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
