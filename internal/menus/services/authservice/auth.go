package authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/userrepo"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/jwtauth"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo Repository
	tokens   TokenStore
	cfg      config.Auth
}

var (
	ErrEmptyCredentials = models.NewError(models.ErrBadRequest, "username and password are required")
	ErrUserExists       = models.NewError(models.ErrConflict, "username already exists")
	// Unknown user and wrong password look the same to the caller.
	ErrInvalidCredentials = models.NewError(models.ErrUnauthorized, "invalid credentials")
	ErrMissingToken       = models.NewError(models.ErrUnauthorized, "missing token")
	ErrRevokedToken       = models.NewError(models.ErrUnauthorized, "token revoked")
	ErrUserNotFound       = models.NewError(models.ErrNotFound, "user not found")
)

type Repository interface {
	CreateUser(context.Context, models.User) (int64, error)
	GetUser(context.Context, string) (models.User, error)
	GetUserByID(context.Context, int64) (models.User, error)
}

type TokenStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string, userID int64, issuedAt time.Time) (bool, error)
}

func New(userRepo Repository, tokens TokenStore, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// Register creates a plain user.
func (as *AuthService) Register(ctx context.Context, req CredentialsRequest) (int64, error) {
	return as.CreateUser(ctx, req.Username, req.Password, models.RoleUser)
}

func (as *AuthService) CreateUser(ctx context.Context, username, password string, role models.Role) (int64, error) {
	if username == "" || password == "" {
		return 0, ErrEmptyCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("generate from password error: %w", err)
	}

	id, err := as.userRepo.CreateUser(ctx, models.User{ //nolint:exhaustruct
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
	if errors.Is(err, userrepo.ErrAlreadyExists) {
		return 0, ErrUserExists
	} else if err != nil {
		return 0, fmt.Errorf("create user error: %w", err)
	}

	return id, nil
}

// EnsureAdmin creates the admin account unless a user with that name exists.
func (as *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := as.userRepo.GetUser(ctx, username)
	if err == nil {
		return false, nil
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return false, fmt.Errorf("get user error: %w", err)
	}

	_, err = as.CreateUser(ctx, username, password, models.RoleAdmin)
	if errors.Is(err, ErrUserExists) { // another instance won the race
		return false, nil
	} else if err != nil {
		return false, err
	}

	return true, nil
}

func (as *AuthService) Login(ctx context.Context, req CredentialsRequest) (LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return LoginResponse{}, ErrEmptyCredentials
	}

	u, err := as.userRepo.GetUser(ctx, req.Username)
	if errors.Is(err, userrepo.ErrNotFound) {
		return LoginResponse{}, ErrInvalidCredentials
	} else if err != nil {
		return LoginResponse{}, fmt.Errorf("get user error: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password))
	if err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("can't get token error: %w", err)
	}

	return LoginResponse{AccessToken: token, UserID: u.ID}, nil
}

// Logout revokes the token behind id for the rest of its lifetime.
func (as *AuthService) Logout(ctx context.Context, id models.Identity) error {
	if err := as.tokens.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return fmt.Errorf("revoke error: %w", err)
	}

	return nil
}

// Resolve turns a bearer token into an identity. A token store failure is
// returned as is, so callers fail closed.
func (as *AuthService) Resolve(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrMissingToken
	}

	id, err := jwtauth.ParseToken(token, as.cfg.Secret)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", models.ErrUnauthorized, err)
	}

	revoked, err := as.tokens.IsRevoked(ctx, id.TokenID, id.UserID, id.IssuedAt)
	if err != nil {
		return models.Identity{}, fmt.Errorf("is revoked error: %w", err)
	}

	if revoked {
		return models.Identity{}, ErrRevokedToken
	}

	return id, nil
}

func (as *AuthService) Me(ctx context.Context, id models.Identity) (models.User, error) {
	u, err := as.userRepo.GetUserByID(ctx, id.UserID)
	if errors.Is(err, userrepo.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	} else if err != nil {
		return models.User{}, fmt.Errorf("get user by id error: %w", err)
	}

	return u, nil
}
