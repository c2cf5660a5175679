package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	accounts  repositories.AccountRepositories
	sessions  session.Store
	jwtSecret []byte
	tokenTTL  time.Duration // Duration for which JWT is valid
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts repositories.AccountRepositories, sessions session.Store, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Registration is a signup request for either role.
type Registration struct {
	Role      models.Role
	Name      string
	Email     string
	Password  string
	Phone     string
	StoreName string
}

// LoginResult is an issued session token.
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Account   *models.Account `json:"account"`
}

func (s *AuthService) repo(role models.Role) (repositories.AccountRepository, error) {
	repo, ok := s.accounts[role]
	if !ok {
		return nil, invalid("unknown role %q", role)
	}
	return repo, nil
}

// Register hashes the password and stores a new account of the requested role.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*models.Account, error) {
	repo, err := s.repo(reg.Role)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(reg.Email))

	// Check if email already exists
	if existing, err := repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email '%s' already registered", ErrConflict, email)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	storeName := reg.StoreName
	if reg.Role == models.RoleVendor && strings.TrimSpace(storeName) == "" {
		storeName = reg.Name
	}
	account := &models.Account{
		Role:         reg.Role,
		Name:         strings.TrimSpace(reg.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Phone:        reg.Phone,
		StoreName:    storeName,
	}
	if err := repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to register account: %w", domainErr(err))
	}
	return account, nil
}

// Login authenticates an account of the given role and returns a JWT token if successful.
func (s *AuthService) Login(ctx context.Context, role models.Role, email, password string) (*LoginResult, error) {
	repo, err := s.repo(role)
	if err != nil {
		return nil, err
	}
	account, err := repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": account.ID,
		"role":       string(account.Role),
		"jti":        uuid.New().String(),
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{Token: tokenString, ExpiresAt: expiresAt, Account: account}, nil
}

// ValidateToken parses and validates a JWT token and returns the session it carries.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*session.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	accountID, _ := claims["account_id"].(string)
	tokenID, _ := claims["jti"].(string)
	roleClaim, _ := claims["role"].(string)
	role, known := models.ParseRole(roleClaim)
	exp, _ := claims["exp"].(float64)
	if accountID == "" || tokenID == "" || !known {
		return nil, fmt.Errorf("%w: incomplete token claims", ErrUnauthorized)
	}

	if s.sessions != nil {
		revoked, err := s.sessions.IsRevoked(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: token has been revoked", ErrUnauthorized)
		}
	}

	return &session.Session{
		AccountID: accountID,
		Role:      role,
		TokenID:   tokenID,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Revoke(ctx, sess.TokenID, sess.ExpiresAt)
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, sess *session.Session) (*models.Account, error) {
	repo, err := s.repo(sess.Role)
	if err != nil {
		return nil, err
	}
	account, err := repo.GetByID(ctx, sess.AccountID)
	if err != nil {
		return nil, domainErr(err)
	}
	return account, nil
}

// UpdateProfile changes the caller's editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, sess *session.Session, update repositories.ProfileUpdate) (*models.Account, error) {
	repo, err := s.repo(sess.Role)
	if err != nil {
		return nil, err
	}
	if sess.Role != models.RoleVendor {
		update.StoreName = nil
	}
	account, err := repo.UpdateProfile(ctx, sess.AccountID, update)
	if err != nil {
		return nil, domainErr(err)
	}
	return account, nil
}
