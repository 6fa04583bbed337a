package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/user_repo"),
	}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("username", user.Username))

	perms := make([]string, 0, len(user.Permissions))
	for _, p := range user.Permissions {
		perms = append(perms, string(p))
	}

	query := `
		INSERT INTO users (username, password_hash, email, permissions)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Email, perms).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return ErrUserAlreadyExists
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to create user",
			zap.String("username", user.Username),
			zap.Error(err),
		)

		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("id", id))

	return r.get(ctx, span, `WHERE id = $1`, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByUsername")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	return r.get(ctx, span, `WHERE username = $1`, username)
}

func (r *userRepo) get(ctx context.Context, span trace.Span, where string, arg any) (*domain.User, error) {
	query := `
		SELECT id, username, password_hash, email, permissions, created_at
		FROM users ` + where

	var (
		user  domain.User
		perms []string
	)
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &perms, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to find user",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error finding user: %w", err)
	}

	user.Permissions = make([]domain.Permission, 0, len(perms))
	for _, p := range perms {
		user.Permissions = append(user.Permissions, domain.Permission(p))
	}

	return &user, nil
}
