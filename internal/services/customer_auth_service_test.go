package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alessacloud/internal/config"
	"alessacloud/internal/data"
	"alessacloud/internal/models"
)

// MockCustomerRepository is a mock customer store
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, tenantID uuid.UUID, customer *models.Customer) error {
	args := m.Called(ctx, tenantID, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) ReplaceSession(ctx context.Context, session *models.CustomerSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetSessionByTokenHash(ctx context.Context, tenantID uuid.UUID, tokenHash string) (*models.CustomerSession, error) {
	args := m.Called(ctx, tenantID, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerSession), args.Error(1)
}

func (m *MockCustomerRepository) DeleteSessions(ctx context.Context, tenantID, customerID uuid.UUID) error {
	args := m.Called(ctx, tenantID, customerID)
	return args.Error(0)
}

func sessionCfg() config.SessionConfig {
	return config.SessionConfig{
		CustomerTTL:         30 * 24 * time.Hour,
		CustomerExtendedTTL: 90 * 24 * time.Hour,
	}
}

func TestSignupIssuesSession(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	tenantID := uuid.New()

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	var session *models.CustomerSession
	repo.On("ReplaceSession", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		session = args.Get(1).(*models.CustomerSession)
	}).Return(nil)

	customer, token, err := svc.Signup(context.Background(), tenantID, SignupInput{
		Email:    "Jess@Example.com",
		Password: "hunter2hunter2",
	})

	require.NoError(t, err)
	assert.Equal(t, "jess@example.com", customer.Email)
	assert.NotEmpty(t, token)

	require.NotNil(t, session)
	assert.Equal(t, tenantID, session.TenantID)
	// The plaintext token is never stored.
	assert.NotEqual(t, token, session.TokenHash)
	assert.Equal(t, hashToken(token), session.TokenHash)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), session.ExpiresAt, time.Minute)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	_, _, err := svc.Signup(context.Background(), uuid.New(), SignupInput{
		Email:    "jess@example.com",
		Password: "short",
	})

	var validationErr models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(data.ErrDuplicateRecord)

	_, _, err := svc.Signup(context.Background(), uuid.New(), SignupInput{
		Email:    "jess@example.com",
		Password: "hunter2hunter2",
	})

	assert.ErrorIs(t, err, ErrCustomerExists)
}

func TestLoginReplacesSession(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	tenantID := uuid.New()
	customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, Email: "jess@example.com"}
	require.NoError(t, customer.SetPassword("hunter2hunter2"))

	repo.On("GetByEmail", mock.Anything, tenantID, "jess@example.com").Return(customer, nil)

	var session *models.CustomerSession
	repo.On("ReplaceSession", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		session = args.Get(1).(*models.CustomerSession)
	}).Return(nil)

	_, token, err := svc.Login(context.Background(), tenantID, "jess@example.com", "hunter2hunter2", true)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	// Remember-me gets the extended expiry.
	assert.WithinDuration(t, time.Now().Add(90*24*time.Hour), session.ExpiresAt, time.Minute)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	tenantID := uuid.New()
	customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, Email: "jess@example.com"}
	require.NoError(t, customer.SetPassword("hunter2hunter2"))

	repo.On("GetByEmail", mock.Anything, tenantID, "jess@example.com").Return(customer, nil)

	_, _, err := svc.Login(context.Background(), tenantID, "jess@example.com", "wrong", false)

	assert.ErrorIs(t, err, ErrCustomerCredentials)
	repo.AssertNotCalled(t, "ReplaceSession", mock.Anything, mock.Anything)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	tenantID := uuid.New()
	repo.On("GetByEmail", mock.Anything, tenantID, "ghost@example.com").Return(nil, data.ErrNotFound)

	_, _, err := svc.Login(context.Background(), tenantID, "ghost@example.com", "whatever", false)

	// Unknown email and wrong password are indistinguishable to callers.
	assert.ErrorIs(t, err, ErrCustomerCredentials)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	tenantID := uuid.New()
	token := "deadbeef"

	repo.On("GetSessionByTokenHash", mock.Anything, tenantID, hashToken(token)).Return(&models.CustomerSession{
		TenantID:  tenantID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}, nil)

	_, err := svc.Authenticate(context.Background(), tenantID, token)

	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	tenantID := uuid.New()
	repo.On("GetSessionByTokenHash", mock.Anything, tenantID, mock.Anything).Return(nil, data.ErrNotFound)

	_, err := svc.Authenticate(context.Background(), tenantID, "nope")

	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthenticateResolvesCustomer(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerAuthService(repo, sessionCfg(), nil)

	tenantID := uuid.New()
	customerID := uuid.New()
	token := "cafebabe"

	repo.On("GetSessionByTokenHash", mock.Anything, tenantID, hashToken(token)).Return(&models.CustomerSession{
		TenantID:   tenantID,
		CustomerID: customerID,
		ExpiresAt:  time.Now().Add(time.Hour),
	}, nil)
	repo.On("GetByID", mock.Anything, tenantID, customerID).Return(&models.Customer{
		ID:       customerID,
		TenantID: tenantID,
	}, nil)

	customer, err := svc.Authenticate(context.Background(), tenantID, token)

	require.NoError(t, err)
	assert.Equal(t, customerID, customer.ID)
}
