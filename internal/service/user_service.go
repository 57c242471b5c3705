// FILE: internal/service/user_service.go
package service

import (
	"context"
	"strings"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IUserService interface {
	GetAll(ctx context.Context) ([]*dto.UserResponse, error)
	// Create registers a user on behalf of callerId, who must be an admin.
	Create(ctx context.Context, callerId uuid.UUID, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetAll(ctx context.Context) ([]*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users, err := uow.UserRepository().FindAll(ctx, specification.OrderBy{Field: "username"})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, userResponse(u))
	}
	return res, nil
}

func (s *userService) Create(ctx context.Context, callerId uuid.UUID, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	caller, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: callerId})
	if err != nil {
		return nil, err
	}
	if caller == nil || !caller.Admin {
		return nil, entity.NewForbiddenError("user", "only admins can create users")
	}
	user, err := NewUser(req)
	if err != nil {
		return nil, err
	}
	if err := CreateUser(ctx, uow, user); err != nil {
		return nil, err
	}
	return userResponse(user), nil
}

func (s *userService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.NewNotFoundError("user", userId)
	}
	return userResponse(user), nil
}

// NewUser builds an active user with a hashed password.
func NewUser(req *dto.CreateUserRequest) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)
	user := &entity.User{
		Id:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Admin:        req.Admin,
		Active:       true,
		PasswordHash: &hashed,
		CreatedAt:    time.Now(),
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if id := strings.TrimSpace(req.NotebookUserId); id != "" {
		user.NotebookUserId = &id
	}
	return user, nil
}

// CreateUser stores user, rejecting a taken username or email.
func CreateUser(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) error {
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: user.Username})
	if err != nil {
		return err
	}
	if existing != nil {
		return entity.NewDuplicateError("user", "username", user.Username)
	}
	existing, err = uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: user.Email})
	if err != nil {
		return err
	}
	if existing != nil {
		return entity.NewDuplicateError("user", "email", user.Email)
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return entity.NewDuplicateError("user", "username", user.Username)
		}
		return err
	}
	return nil
}
