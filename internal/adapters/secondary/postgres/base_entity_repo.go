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

type baseEntityRepo struct {
	pool *pgxpool.Pool
}

func NewBaseEntityRepository(pool *pgxpool.Pool) ports.BaseEntityRepository {
	return &baseEntityRepo{pool: pool}
}

func (r *baseEntityRepo) Create(ctx context.Context, entity *domain.BaseEntity) error {
	query := `
		INSERT INTO base_entity (id, created_at, project_id, kind, name)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		entity.ID, entity.CreatedAt, entity.ProjectID, string(entity.Kind), entity.Name,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrBaseEntityConflict
		}
		return fmt.Errorf("create base entity: %w", err)
	}
	return nil
}

func (r *baseEntityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BaseEntity, error) {
	query := `
		SELECT id, created_at, project_id, kind, name
		FROM base_entity
		WHERE id = $1
	`
	e, err := scanBaseEntity(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownBaseEntity
		}
		return nil, fmt.Errorf("get base entity by id: %w", err)
	}
	return e, nil
}

func (r *baseEntityRepo) GetByName(ctx context.Context, projectID uuid.UUID, kind domain.EntityKind, name string) (*domain.BaseEntity, error) {
	query := `
		SELECT id, created_at, project_id, kind, name
		FROM base_entity
		WHERE project_id = $1 AND kind = $2 AND name = $3
	`
	e, err := scanBaseEntity(r.pool.QueryRow(ctx, query, projectID, string(kind), name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownBaseEntity
		}
		return nil, fmt.Errorf("get base entity by name: %w", err)
	}
	return e, nil
}

func scanBaseEntity(row pgx.Row) (*domain.BaseEntity, error) {
	var e domain.BaseEntity
	var kind string
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.ProjectID, &kind, &e.Name); err != nil {
		return nil, err
	}
	e.Kind = domain.EntityKind(kind)
	return &e, nil
}
