package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"projecthub/internal/model"
	"projecthub/pkg/apierror"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (model.Project, error) {
	var p model.Project
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, apierror.New("PROJECT_NOT_FOUND", "project not found", id, http.StatusNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p model.Project) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Description, p.OwnerID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, p model.Project) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.New("PROJECT_NOT_FOUND", "project not found", p.ID, http.StatusNotFound)
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.New("PROJECT_NOT_FOUND", "project not found", id, http.StatusNotFound)
	}
	return nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	return r.list(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	return r.list(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM projects ORDER BY created_at DESC`)
}

func (r *ProjectRepository) list(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
