package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/sakashimaa/webshop/pkg/auth"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const bcryptCost = 12

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (string, *domain.User, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
	ResolveActor(ctx context.Context, token string) (domain.Actor, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates an account without permissions. Staff permissions are
// granted in the database.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hashedPass, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Error hashing password", zap.Error(err))
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: string(hashedPass),
		Email:        in.Email,
		Permissions:  []domain.Permission{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			mylogger.Warn(ctx, s.logger, "User already exists", zap.String("username", in.Username))
		}
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "User registered", zap.Int64("user_id", user.ID))

	return user, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (string, *domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		mylogger.Warn(ctx, s.logger, "Wrong password", zap.Int64("user_id", user.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to sign access token", zap.Error(err))
		return "", nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return token, user, nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ResolveActor turns an access token into the requesting actor with the
// permissions currently stored for the user. An empty, invalid or orphaned
// token yields the anonymous actor.
func (s *authService) ResolveActor(ctx context.Context, token string) (domain.Actor, error) {
	if token == "" {
		return domain.Anonymous(), nil
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		mylogger.Debug(ctx, s.logger, "Rejected access token", zap.Error(err))
		return domain.Anonymous(), nil
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Anonymous(), nil
		}
		return domain.Anonymous(), err
	}

	return domain.NewActor(user), nil
}
