package ports

import (
	"context"

	"filevault-api/internal/domain/user"
)

type UserService interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}
