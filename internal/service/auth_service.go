package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dukan-pos/internal/domain"
	"dukan-pos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Token expiration times
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")

	// ErrNoEmployeeProfile means the login principal authenticated but
	// has no staff profile, so it cannot act in the application
	ErrNoEmployeeProfile = errors.New("no employee profile for this account")
)

// AuthService authenticates login principals and resolves them to
// employee profiles. A principal without a profile cannot log in.
type AuthService interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, employee *domain.Employee, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetEmployeeByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error)
}

// Claims represents the JWT claims. Role and employee identity come
// from the staff profile, not the login principal.
type Claims struct {
	UserID     uuid.UUID `json:"user_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Role       string    `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo         repository.UserRepository
	employeeRepo     repository.EmployeeRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	employeeRepo repository.EmployeeRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		employeeRepo:     employeeRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtSecret,
	}
}

// Login authenticates a principal, resolves its employee profile, and
// returns JWT tokens carrying the profile's identity and role
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, employee *domain.Employee, err error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	// The login succeeds only for principals with a staff profile.
	// A dangling principal is a precondition failure, not a crash.
	employee, err = s.employeeRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return "", "", nil, ErrNoEmployeeProfile
		}
		return "", "", nil, fmt.Errorf("failed to resolve employee profile: %w", err)
	}

	accessToken, err = s.generateAccessToken(user, employee)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, employee, nil
}

// Logout invalidates the refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *authService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	// Re-resolve the profile so a role change or profile removal takes
	// effect at the next refresh
	employee, err := s.employeeRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return "", ErrNoEmployeeProfile
		}
		return "", fmt.Errorf("failed to resolve employee profile: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(user, employee)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetEmployeeByUserID resolves a login principal to its staff profile
func (s *authService) GetEmployeeByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	employee, err := s.employeeRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, ErrNoEmployeeProfile
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

// generateAccessToken generates a JWT access token with principal,
// employee, and role claims
func (s *authService) generateAccessToken(user *domain.User, employee *domain.Employee) (string, error) {
	expirationTime := time.Now().Add(AccessTokenExpiration)
	claims := &Claims{
		UserID:     user.ID,
		EmployeeID: employee.ID,
		Role:       employee.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores it
func (s *authService) generateRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(RefreshTokenExpiration),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
