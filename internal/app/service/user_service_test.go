package service

import (
	"context"
	"testing"

	"sales_system/internal/common"
	"sales_system/internal/common/security"
	"sales_system/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		Username: "carol",
		Email:    "carol@example.com",
		FullName: "Carol",
		Password: "longenough",
		Role:     model.RoleSuper,
	}
}

func TestUserServiceCreate(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo, bcrypt.MinCost)

	user, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, model.RoleSuper, user.Role)
	assert.Equal(t, model.StatusActive, user.Status)
	assert.Empty(t, user.HashedPassword, "hash must not be returned")

	assert.True(t, security.CheckPasswordHash("longenough", repo.storedHash("carol")))
}

func TestUserServiceCreateValidation(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo, bcrypt.MinCost)
	ctx := context.Background()

	missing := validCreateRequest()
	missing.Username = ""
	_, err := svc.Create(ctx, missing)
	assert.ErrorIs(t, err, common.ErrBadRequest)

	badRole := validCreateRequest()
	badRole.Role = "intern"
	_, err = svc.Create(ctx, badRole)
	assert.ErrorIs(t, err, common.ErrValidation)

	short := validCreateRequest()
	short.Password = "short"
	_, err = svc.Create(ctx, short)
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Empty(t, repo.users, "no user may be stored on validation failure")
}

func TestUserServiceCreateDuplicate(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo, bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCreateRequest())
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestUserServiceListClearsHashes(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo, bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].HashedPassword)
}
