package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/repository"
)

const minPasswordLength = 8

// ErrInvalidUserID is returned for a malformed user id path parameter.
var ErrInvalidUserID = errors.New("invalid user id")

var knownRoles = []int{entity.RoleSuperAdmin, entity.RoleAdmin, entity.RoleRegularUser}

// UserService encapsulates administrative operations for users.
type UserService struct {
	repo repository.UsersRepository
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

// ListUsers returns all users as DTOs.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, userResponse(u))
	}
	return responses, nil
}

// CreateUser creates a new user. Without role ids the user is a regular user.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	c := newFieldChecker()
	name, _ := c.text("name", &req.Name, true, 255)
	email := checkUserEmail(c, &req.Email, true)
	if len(req.Password) < minPasswordLength {
		c.fail("password", "The password field must be at least %d characters.", minPasswordLength)
	}
	roles := req.RoleIDs
	if len(roles) == 0 {
		roles = []int{entity.RoleRegularUser}
	}
	checkRoles(c, roles)
	if err := c.err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, name, email, string(hashed), roles)
	if err != nil {
		return nil, err
	}
	resp := userResponse(*user)
	return &resp, nil
}

// UpdateUser mutates selected user fields.
func (s *UserService) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	c := newFieldChecker()
	var patch repository.UserPatch
	if name, ok := c.text("name", req.Name, false, 255); ok {
		patch.Name = &name
	}
	if req.Email != nil {
		if email := checkUserEmail(c, req.Email, false); email != "" {
			patch.Email = &email
		}
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			c.fail("password", "The password field must be at least %d characters.", minPasswordLength)
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			pwd := string(hashed)
			patch.PasswordHash = &pwd
		}
	}
	if req.RoleIDs != nil {
		if len(*req.RoleIDs) == 0 {
			c.fail("role_ids", "The role ids field is required.")
		} else {
			checkRoles(c, *req.RoleIDs)
			patch.RoleIDs = *req.RoleIDs
		}
	}
	if err := c.err(); err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	resp := userResponse(*user)
	return &resp, nil
}

// DeleteUser removes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidUserID
	}
	return s.repo.Delete(ctx, userID)
}

func checkUserEmail(c *fieldChecker, raw *string, mandatory bool) string {
	v, ok := c.text("email", raw, mandatory, 255)
	if !ok {
		return ""
	}
	email, valid := normalizeEmail(v)
	if !valid {
		c.fail("email", "The email field must be a valid email address.")
		return ""
	}
	return email
}

func checkRoles(c *fieldChecker, roles []int) {
	for _, r := range roles {
		if !slices.Contains(knownRoles, r) {
			c.fail("role_ids", "The selected role ids is invalid.")
			return
		}
	}
}

func userResponse(u entity.User) dto.UserResponse {
	perms := u.Permissions()
	if perms == nil {
		perms = []string{}
	}
	return dto.UserResponse{
		ID:          u.ID.String(),
		Name:        strings.TrimSpace(u.Name),
		Email:       u.Email,
		Roles:       u.RoleNames(),
		Permissions: perms,
	}
}
