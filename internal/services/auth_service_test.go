package services_test

import (
	"context"
	"testing"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"
	"pasar/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockAccountRepository is a mock implementation of repositories.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(account)
	if args.Error(0) == nil && account.ID == "" {
		account.ID = "acc-1"
	}
	return args.Error(0)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateProfile(ctx context.Context, id string, update repositories.ProfileUpdate) (*models.Account, error) {
	args := m.Called(id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func newAuthService(users, vendors *MockAccountRepository) *services.AuthService {
	accounts := repositories.AccountRepositories{
		models.RoleUser:   users,
		models.RoleVendor: vendors,
	}
	return services.NewAuthService(accounts, session.NewMemoryStore(), testJWTSecret, time.Hour)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	users, vendors := new(MockAccountRepository), new(MockAccountRepository)
	authService := newAuthService(users, vendors)
	ctx := context.Background()

	// Test successful registration
	users.On("GetByEmail", "ana@example.com").Return(nil, repositories.ErrNotFound).Once()
	users.On("Create", mock.AnythingOfType("*models.Account")).Return(nil).Once()

	account, err := authService.Register(ctx, services.Registration{
		Role: models.RoleUser, Name: " Ana ", Email: " Ana@Example.com ", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", account.Email)
	assert.Equal(t, "Ana", account.Name)
	assert.NotEqual(t, "password123", account.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("password123")))
	users.AssertExpectations(t)

	// Test registration with existing email
	users.On("GetByEmail", "ana@example.com").Return(&models.Account{ID: "u1"}, nil).Once()
	_, err = authService.Register(ctx, services.Registration{Role: models.RoleUser, Email: "ana@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrConflict)

	// Vendor store name defaults to the vendor's name
	vendors.On("GetByEmail", "shop@example.com").Return(nil, repositories.ErrNotFound).Once()
	vendors.On("Create", mock.AnythingOfType("*models.Account")).Return(nil).Once()
	account, err = authService.Register(ctx, services.Registration{
		Role: models.RoleVendor, Name: "Budi", Email: "shop@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi", account.StoreName)
	users.AssertNotCalled(t, "Create", mock.MatchedBy(func(a *models.Account) bool { return a.Role == models.RoleVendor }))

	// Unknown roles are rejected before touching storage
	_, err = authService.Register(ctx, services.Registration{Role: "ADMIN", Email: "x@example.com"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_Login(t *testing.T) {
	users, vendors := new(MockAccountRepository), new(MockAccountRepository)
	authService := newAuthService(users, vendors)
	ctx := context.Background()

	account := &models.Account{ID: "u1", Role: models.RoleUser, Email: "ana@example.com", PasswordHash: hashed(t, "password123")}

	// Test successful login
	users.On("GetByEmail", "ana@example.com").Return(account, nil)
	result, err := authService.Login(ctx, models.RoleUser, "ana@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "u1", result.Account.ID)

	// Verify token content
	token, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "u1", claims["account_id"])
	assert.Equal(t, "USER", claims["role"])
	assert.NotEmpty(t, claims["jti"])

	// Test login with wrong password
	_, err = authService.Login(ctx, models.RoleUser, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test login with a user's email against the vendor table
	vendors.On("GetByEmail", "ana@example.com").Return(nil, repositories.ErrNotFound)
	_, err = authService.Login(ctx, models.RoleVendor, "ana@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_ValidateTokenAndLogout(t *testing.T) {
	users := new(MockAccountRepository)
	authService := newAuthService(users, new(MockAccountRepository))
	ctx := context.Background()

	users.On("GetByEmail", "ana@example.com").
		Return(&models.Account{ID: "u1", Role: models.RoleUser, PasswordHash: hashed(t, "pw-123456")}, nil)
	result, err := authService.Login(ctx, models.RoleUser, "ana@example.com", "pw-123456")
	require.NoError(t, err)

	sess, err := authService.ValidateToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.AccountID)
	assert.True(t, sess.IsUser())
	assert.WithinDuration(t, result.ExpiresAt, sess.ExpiresAt, time.Second)

	require.NoError(t, authService.Logout(ctx, sess))
	_, err = authService.ValidateToken(ctx, result.Token)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	authService := newAuthService(new(MockAccountRepository), new(MockAccountRepository))
	ctx := context.Background()

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other", jwt.MapClaims{"account_id": "u1", "role": "USER", "jti": "t1", "exp": future})},
		{"expired", sign(testJWTSecret, jwt.MapClaims{"account_id": "u1", "role": "USER", "jti": "t1", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"unknown role", sign(testJWTSecret, jwt.MapClaims{"account_id": "u1", "role": "ADMIN", "jti": "t1", "exp": future})},
		{"missing jti", sign(testJWTSecret, jwt.MapClaims{"account_id": "u1", "role": "USER", "exp": future})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, services.ErrUnauthorized)
		})
	}
}

func TestAuthService_UpdateProfile_UserCannotSetStoreName(t *testing.T) {
	users := new(MockAccountRepository)
	authService := newAuthService(users, new(MockAccountRepository))

	name, store := "Ana B", "Toko Ana"
	users.On("UpdateProfile", "u1", repositories.ProfileUpdate{Name: &name}).
		Return(&models.Account{ID: "u1", Name: name}, nil).Once()

	account, err := authService.UpdateProfile(context.Background(),
		&session.Session{AccountID: "u1", Role: models.RoleUser},
		repositories.ProfileUpdate{Name: &name, StoreName: &store})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", account.Name)
	users.AssertExpectations(t)
}
