package ports

import (
	"context"

	"github.com/instroom/instroom-web/internal/core/domain"
)

// RegisterInput carries the signup form.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Company         string
}

// AccountService covers registration and credential checks.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}
