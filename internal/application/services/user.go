package services

import (
	"context"

	"filevault-api/internal/application/ports"
	domain "filevault-api/internal/domain/user"
)

// UserService covers the slice of identity this service needs itself: login
// lookup. Account management lives in a separate service.
type UserService struct {
	userRepository domain.Repository
}

func NewUserService(userRepository domain.Repository) ports.UserService {
	return &UserService{userRepository: userRepository}
}

func (us *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return us.userRepository.FetchUserByEmail(ctx, email)
}
