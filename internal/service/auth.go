package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/task-board/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 7 * 24 * time.Hour

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// Claims is the payload of a session token.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService handles user registration, login, and JWT token operations.
type AuthService struct {
	users      domain.UserRepository
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user account and issues a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: Name is required", domain.ErrInvalidInput)
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: Password must be at least %d characters long", domain.ErrInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("generate jwt: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a new session token. An unknown
// email and a wrong password both yield domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: Password is required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("generate jwt: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// ValidateToken checks the signature and expiry of a token and returns the
// user ID from its sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}

// Authenticate resolves the user a token was issued to. It fails with
// domain.ErrUnauthorized when the token is missing, malformed, expired, or
// the user no longer exists.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	if tokenString == "" {
		return nil, domain.ErrUnauthorized
	}

	userID, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// normalizeEmail trims and lowercases an address and rejects anything that
// is not a bare addr-spec.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: Please enter a valid email", domain.ErrInvalidInput)
	}
	return email, nil
}
