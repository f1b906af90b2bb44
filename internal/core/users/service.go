package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/textlimit"
)

// Usernames: 3-30 chars, lowercase alphanumerics, dots and underscores
var usernameRegex = regexp.MustCompile(`^[a-z0-9._]{3,30}$`)

const (
	minPasswordLength = 8
	maxBioGraphemes   = 300
	maxSearchResults  = 50
)

type userService struct {
	repo     Repository
	hasher   PasswordHasher
	profiles *ProfileCache
	logger   *slog.Logger
}

// NewUserService creates the account and profile service
func NewUserService(repo Repository, hasher PasswordHasher, profiles *ProfileCache, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		repo:     repo,
		hasher:   hasher,
		profiles: profiles,
		logger:   logger,
	}
}

// Register creates a new account with a hashed password
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	username := strings.TrimSpace(strings.ToLower(req.Username))
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if !usernameRegex.MatchString(username) {
		return nil, apperr.Invalid("username", "must be 3-30 characters of a-z, 0-9, '.' or '_'")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Invalid("email", "is not a valid address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	fullName, err := textlimit.Optional("fullName", req.FullName, 100)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Followers:    []string{},
		Following:    []string{},
		BlockList:    []string{},
		Posts:        []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Repository reports username/email conflicts
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user", created.ID), slog.String("username", created.Username))
	return created, nil
}

func (s *userService) Authenticate(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(strings.ToLower(login))
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up login: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Invalid("userId", "is required")
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes display fields only; relationship sets cannot be written here
func (s *userService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*User, error) {
	if input.FullName != nil {
		v, err := textlimit.Optional("fullName", *input.FullName, 100)
		if err != nil {
			return nil, err
		}
		input.FullName = &v
	}
	if input.Bio != nil {
		v, err := textlimit.Optional("bio", *input.Bio, maxBioGraphemes)
		if err != nil {
			return nil, err
		}
		input.Bio = &v
	}

	user, err := s.repo.UpdateProfile(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.profiles.Invalidate(id)
	return user, nil
}

func (s *userService) Search(ctx context.Context, query string) ([]*User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Invalid("query", "is required")
	}
	return s.repo.Search(ctx, query, maxSearchResults)
}
