package service

import (
	"context"

	"projecthub/internal/model"
)

// Store interfaces are satisfied by the pgx repositories in
// internal/repository; tests substitute in-memory implementations.

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
	SetRefreshToken(ctx context.Context, userID string, refreshToken *string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.PublicUser, error)
}

type ProjectStore interface {
	FindByID(ctx context.Context, id string) (model.Project, error)
	Create(ctx context.Context, p model.Project) error
	Update(ctx context.Context, p model.Project) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error)
	ListAll(ctx context.Context) ([]model.Project, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}
