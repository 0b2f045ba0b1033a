package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"alessacloud/internal/config"
	"alessacloud/internal/data"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// Customer auth errors
var (
	ErrCustomerExists      = errors.New("an account with this email already exists")
	ErrCustomerCredentials = errors.New("invalid email or password")
	ErrSessionInvalid      = errors.New("session is invalid or expired")
)

// CustomerRepositoryInterface is the data access the customer auth
// service needs
type CustomerRepositoryInterface interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, tenantID uuid.UUID, customer *models.Customer) error
	ReplaceSession(ctx context.Context, session *models.CustomerSession) error
	GetSessionByTokenHash(ctx context.Context, tenantID uuid.UUID, tokenHash string) (*models.CustomerSession, error)
	DeleteSessions(ctx context.Context, tenantID, customerID uuid.UUID) error
}

// SignupInput is a request to create a customer account
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// CustomerAuthService manages storefront customer accounts and their
// bearer sessions. Session tokens are random, stored only as a sha256
// hash, and scoped to a single tenant.
type CustomerAuthService struct {
	repo   CustomerRepositoryInterface
	cfg    config.SessionConfig
	logger *observability.Logger
}

// NewCustomerAuthService creates a new customer auth service
func NewCustomerAuthService(repo CustomerRepositoryInterface, cfg config.SessionConfig, logger *observability.Logger) *CustomerAuthService {
	return &CustomerAuthService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// Signup creates a customer account and issues a session token
func (s *CustomerAuthService) Signup(ctx context.Context, tenantID uuid.UUID, input SignupInput) (*models.Customer, string, error) {
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", models.NewValidationError("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, "", models.NewValidationError("password must be at least 8 characters")
	}

	customer := &models.Customer{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     strings.TrimSpace(input.Phone),
	}
	if err := customer.SetPassword(input.Password); err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, data.ErrDuplicateRecord) {
			return nil, "", ErrCustomerExists
		}
		return nil, "", err
	}

	token, err := s.issueSession(ctx, customer, false)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// Login verifies credentials and issues a fresh session token,
// invalidating any previous session
func (s *CustomerAuthService) Login(ctx context.Context, tenantID uuid.UUID, email, password string, rememberMe bool) (*models.Customer, string, error) {
	customer, err := s.repo.GetByEmail(ctx, tenantID, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, "", ErrCustomerCredentials
		}
		return nil, "", err
	}

	if !customer.CheckPassword(password) {
		return nil, "", ErrCustomerCredentials
	}

	token, err := s.issueSession(ctx, customer, rememberMe)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// Authenticate resolves a bearer token to the customer it belongs to.
// Expired sessions fail the same way as unknown ones.
func (s *CustomerAuthService) Authenticate(ctx context.Context, tenantID uuid.UUID, token string) (*models.Customer, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.repo.GetSessionByTokenHash(ctx, tenantID, hashToken(token))
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	if session.Expired() {
		return nil, ErrSessionInvalid
	}

	customer, err := s.repo.GetByID(ctx, tenantID, session.CustomerID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	return customer, nil
}

// Logout deletes all of the customer's sessions
func (s *CustomerAuthService) Logout(ctx context.Context, tenantID, customerID uuid.UUID) error {
	return s.repo.DeleteSessions(ctx, tenantID, customerID)
}

// Profile retrieves the customer's account, including reward balance
func (s *CustomerAuthService) Profile(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	return s.repo.GetByID(ctx, tenantID, customerID)
}

// issueSession replaces the customer's sessions with a new one and
// returns the plaintext token. The plaintext is never persisted.
func (s *CustomerAuthService) issueSession(ctx context.Context, customer *models.Customer, extended bool) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	ttl := s.cfg.CustomerTTL
	if extended {
		ttl = s.cfg.CustomerExtendedTTL
	}

	session := &models.CustomerSession{
		ID:         uuid.New(),
		TenantID:   customer.TenantID,
		CustomerID: customer.ID,
		TokenHash:  hashToken(token),
		ExpiresAt:  time.Now().Add(ttl),
	}

	if err := s.repo.ReplaceSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ CustomerRepositoryInterface = (*data.CustomerRepository)(nil)
