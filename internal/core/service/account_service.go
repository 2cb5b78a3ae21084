package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/ports"
)

const (
	minPasswordLength = 8
	// bcrypt rejects inputs longer than this many bytes.
	maxPasswordBytes = 72
	dummyPassword     = "instroom-timing-equalizer"
)

// AccountService implements registration and credential checks.
type AccountService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string

	dummyOnce   sync.Once
	dummyDigest string
}

var _ ports.AccountService = (*AccountService)(nil)

func NewAccountService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *AccountService {
	return &AccountService{
		repo:     repo,
		hasher:   hasher,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Register validates the signup form and persists a new SOLO_USER account.
// Checks run in a fixed order and the first failure is returned.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" || in.FullName == "" {
		return nil, domain.ErrMissingFields
	}
	if err := s.validate.Var(in.Email, "email"); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrEmailTaken
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:             s.newID(),
		Email:          in.Email,
		FullName:       in.FullName,
		Company:        in.Company,
		PasswordDigest: digest,
		Role:           domain.DefaultRole,
		UpdatedAt:      s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("account registered")
	return created, nil
}

// Authenticate returns the account matching email and password. An unknown
// email and a wrong password both yield domain.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Burn one comparison so a miss costs the same as a wrong password.
		s.hasher.Verify(password, s.dummy())
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordDigest) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare dummy password digest")
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}
