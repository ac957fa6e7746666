package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/middleware"
	search "github.com/DukeZhu95/classroom-backend/internal/modules/search/service"
	"github.com/DukeZhu95/classroom-backend/internal/modules/user/dto"
	"github.com/DukeZhu95/classroom-backend/internal/modules/user/repository"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	search   search.TaskSearchService
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository, searchSvc search.TaskSearchService, tokenTTL time.Duration) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &authService{
		repo:     repo,
		search:   searchSvc,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, err
	}

	return s.buildAuthResponse(ctx, user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthenticated)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthenticated)
	}

	return s.buildAuthResponse(ctx, user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := buildUserResponse(user)
	return &resp, nil
}

func (s *authService) buildAuthResponse(ctx context.Context, user *entity.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := middleware.Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	var searchToken string
	if s.search != nil {
		st, err := s.search.GenerateSearchToken(ctx, user.ID, user.Role)
		if err != nil {
			// Search is auxiliary; a missing token must not block login.
			log.Printf("failed to generate search token for %s: %v", user.ID, err)
		} else {
			searchToken = st
		}
	}

	return &dto.AuthResponse{
		Token:       token,
		SearchToken: searchToken,
		User:        buildUserResponse(user),
	}, nil
}

func buildUserResponse(user *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}
