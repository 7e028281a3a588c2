package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/repository"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	users    repository.UsersRepository
	jwt      *auth.JWTManager
	notifier Notifier
}

// NewAuthService constructs a new AuthService. notifier may be nil.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager, notifier Notifier) *AuthService {
	return &AuthService{users: users, jwt: jwtManager, notifier: notifier}
}

// Login validates credentials and returns a JWT with the identity it carries.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, auth.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", auth.Identity{}, errors.New("email and password must not be empty")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", auth.Identity{}, ErrInvalidCredentials
		}
		return "", auth.Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", auth.Identity{}, ErrInvalidCredentials
	}

	identity := IdentityOf(*user)
	token, err := s.jwt.GenerateToken(identity)
	if err != nil {
		return "", auth.Identity{}, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, identity, "New login to your account", entity.NotificationNewLogin)
	}
	return token, identity, nil
}

// IdentityOf derives the token identity of a user.
func IdentityOf(user entity.User) auth.Identity {
	return auth.Identity{
		Subject:     user.ID.String(),
		Email:       user.Email,
		Roles:       user.RoleNames(),
		Permissions: user.Permissions(),
	}
}
