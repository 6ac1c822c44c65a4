package usecase

import (
	"netcrm-backend/internal/auth/domain"
	"netcrm-backend/internal/auth/dto"
)

type AuthUsecase interface {
	Register(req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(req *dto.LoginRequest) (*dto.TokenResponse, error)
	GoogleSignIn(idToken string) (*dto.TokenResponse, error)
	RefreshToken(refreshToken string) (*dto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*domain.User, error)
}
