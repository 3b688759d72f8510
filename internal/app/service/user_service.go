package service

import (
	"context"
	"fmt"

	"sales_system/internal/common"
	"sales_system/internal/common/security"
	"sales_system/internal/domain/model"
	"sales_system/internal/domain/repository"

	"github.com/google/uuid"
)

// UserService covers the admin-side user management reached through the
// manage_users permission. Regular accounts are provisioned here, never via
// self-signup.
type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

func NewUserService(userRepo repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcryptCost}
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}
	if !model.IsValidRole(req.Role) {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, common.ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", common.ErrValidation)
	}

	hash, err := security.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hash,
		Role:           req.Role,
		Status:         model.StatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo might return common.ErrConflict
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.HashedPassword = "" // Clear password before returning
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		u.HashedPassword = ""
	}
	return users, nil
}
