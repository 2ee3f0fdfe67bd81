// Package auth handles sign-up, login and the session-backed current user.
package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/service"
	"github.com/yatube/yatube/pkg/logging"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// reservedUsernames would shadow top-level routes
var reservedUsernames = map[string]struct{}{
	"auth":   {},
	"follow": {},
	"group":  {},
	"health": {},
	"media":  {},
	"new":    {},
}

// AccountService registers and authenticates users
type AccountService struct {
	users  *db.UserRepository
	cost   int
	logger *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(repo *db.Repository) *AccountService {
	return &AccountService{
		users:  db.NewUserRepository(repo),
		cost:   bcrypt.DefaultCost,
		logger: logging.WithComponent("accounts"),
	}
}

// Register creates a user. password2 must repeat password.
func (s *AccountService) Register(ctx context.Context, username, password, password2 string) (*models.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, service.NewError(service.ErrValidation, "username", "This field is required.")
	case len(username) > maxUsernameLength:
		return nil, service.NewError(service.ErrValidation, "username",
			fmt.Sprintf("Ensure this value has at most %d characters.", maxUsernameLength))
	case !usernamePattern.MatchString(username):
		return nil, service.NewError(service.ErrValidation, "username",
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if _, ok := reservedUsernames[strings.ToLower(username)]; ok {
		return nil, usernameTaken()
	}
	if len(password) < minPasswordLength {
		return nil, service.NewError(service.ErrValidation, "password",
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if password != password2 {
		return nil, service.NewError(service.ErrValidation, "password2", "The two password fields didn't match.")
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, usernameTaken()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race against a concurrent sign-up
		if taken, _ := s.users.GetByUsername(ctx, username); taken != nil {
			return nil, usernameTaken()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("username", username))
	return user, nil
}

// Authenticate checks credentials and returns the matching user
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Debug("Login failed", zap.String("username", username))
		return nil, service.NewError(service.ErrValidation, "",
			"Please enter a correct username and password. Note that both fields may be case-sensitive.")
	}
	return user, nil
}

func usernameTaken() error {
	return service.NewError(service.ErrConflict, "username", "A user with that username already exists.")
}
