package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/isdelr/fuego-api/internal/models"
	"github.com/isdelr/fuego-api/internal/store"
)

// PasswordHasher turns plaintext passwords into digests and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer signs a token for a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// RegisterInput carries the fields of a registration.
type RegisterInput struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	GetSelf(ctx context.Context, identity models.User) (models.Profile, error)
	DeleteSelf(ctx context.Context, identity models.User) error
	FindProfiles(ctx context.Context, email string) ([]models.Profile, error)
	Find(ctx context.Context, query string) ([]models.Profile, error)
}

// UserService provides business logic for user management.
type UserService struct {
	users  store.Users
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewUserService creates a new UserService.
func NewUserService(users store.Users, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens}
}

// Register validates the input, hashes the password once and stores the user.
// The returned record includes the digest.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	v := newValidator()
	v.required(in.First, "first")
	v.required(in.Last, "last")
	v.required(in.Email, "email")
	v.required(in.Password, "password")
	if err := v.err(); err != nil {
		return models.User{}, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, &ValidationError{Fields: map[string]string{"password": err.Error()}}
	}

	user, err := s.users.CreateUser(ctx, models.User{
		First:    in.First,
		Last:     in.Last,
		Email:    in.Email,
		Password: digest,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return models.User{}, &ValidationError{Fields: map[string]string{"email": "already in use"}}
	} else if err != nil {
		return models.User{}, precondition(err)
	}
	return user, nil
}

// Authenticate verifies a user's credentials and issues a token.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrUnauthenticated
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnauthenticated
	} else if err != nil {
		return "", precondition(err)
	}
	if !s.hasher.Verify(password, user.Password) {
		return "", ErrUnauthenticated
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// GetSelf re-reads the caller's record and returns its public fields.
func (s *UserService) GetSelf(ctx context.Context, identity models.User) (models.Profile, error) {
	user, err := s.users.GetUserByID(ctx, identity.ID)
	if err != nil {
		return models.Profile{}, precondition(err)
	}
	return user.Profile(), nil
}

// DeleteSelf removes the caller's account. Owned tasks are not deleted.
func (s *UserService) DeleteSelf(ctx context.Context, identity models.User) error {
	return precondition(s.users.DeleteUser(ctx, identity.ID))
}

// FindProfiles looks users up by exact email. No match yields an empty list.
func (s *UserService) FindProfiles(ctx context.Context, email string) ([]models.Profile, error) {
	return s.find(ctx, store.FilterByEmail(email))
}

// Find matches query against email, first or last name, and id when query is
// numeric. No match yields an empty list.
func (s *UserService) Find(ctx context.Context, query string) ([]models.Profile, error) {
	filters := []store.UserFilter{store.FilterByEmail(query), store.FilterByName(query)}
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		filters = append(filters, store.FilterByID(id))
	}
	return s.find(ctx, filters...)
}

func (s *UserService) find(ctx context.Context, filters ...store.UserFilter) ([]models.Profile, error) {
	users, err := s.users.FindUsers(ctx, filters...)
	if err != nil {
		return nil, precondition(err)
	}
	profiles := make([]models.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}
