package service

import (
	"context"
	"testing"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAdmin(t *testing.T, factory unitofwork.RepositoryFactory) *entity.User {
	t.Helper()
	admin, err := NewUser(&dto.CreateUserRequest{
		Username: "admin",
		Email:    "Admin@Example.test",
		Password: "correct-horse",
		Admin:    true,
	})
	require.NoError(t, err)
	require.NoError(t, CreateUser(context.Background(), factory.NewUnitOfWork(context.Background()), admin))
	return admin
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	admin := seedAdmin(t, f.factory)
	svc := NewUserService(f.factory)

	alice, err := svc.Create(context.Background(), admin.Id, &dto.CreateUserRequest{
		Username:       "alice",
		Email:          "alice@example.test",
		Password:       "password123",
		NotebookUserId: "usr_9",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.DisplayName)
	require.NotNil(t, alice.NotebookUserId)
	assert.Equal(t, "usr_9", *alice.NotebookUserId)

	_, err = svc.Create(context.Background(), alice.Id, &dto.CreateUserRequest{
		Username: "bob", Email: "bob@example.test", Password: "password123",
	})
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = svc.Create(context.Background(), admin.Id, &dto.CreateUserRequest{
		Username: "alice2", Email: "ALICE@example.test", Password: "password123",
	})
	assert.ErrorIs(t, err, entity.ErrDuplicate)

	me, err := svc.Me(context.Background(), admin.Id)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.test", me.Email)
	assert.True(t, me.Admin)
}

func TestLoginIssuesToken(t *testing.T) {
	f := newFixture(t)
	admin := seedAdmin(t, f.factory)
	svc := NewAuthService(f.factory, "test-secret")

	res, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "correct-horse"})
	require.NoError(t, err)

	token, err := jwt.Parse(res.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, admin.Id.String(), claims["user_id"])
	assert.Equal(t, "admin", claims["username"])

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Username: uuid.NewString(), Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
