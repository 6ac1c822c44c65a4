package repository

import "netcrm-backend/internal/auth/domain"

// UserRepository persists users and their refresh tokens.
type UserRepository interface {
	Create(user *domain.User) error
	FindByEmail(email string) (*domain.User, error)
	FindByID(id string) (*domain.User, error)
	Update(user *domain.User) error
	ListIDs() ([]string, error)

	SaveRefreshToken(token *domain.RefreshToken) error
	FindRefreshToken(token string) (*domain.RefreshToken, error)
	DeleteRefreshToken(token string) error
}
