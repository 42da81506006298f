package server

import (
	"context"
	"fmt"

	"github.com/proajob/proajob/internal/config"
	"github.com/proajob/proajob/internal/types"
)

// UserService provides business logic for user authentication operations
type UserService struct {
	db             Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Unknown e-mail and wrong password are indistinguishable to the caller.
	if dbUser == nil || !dbUser.PasswordSet() {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	if dbUser.Role == "" {
		return nil, &ErrForbidden{Reason: "account has no role"}
	}

	return dbUser.Public(), nil
}
