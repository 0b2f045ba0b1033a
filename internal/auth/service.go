package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"alessacloud/internal/audit"
	"alessacloud/internal/config"
	"alessacloud/internal/data"
	"alessacloud/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotActive      = errors.New("staff account is not active")
	ErrUserLocked         = errors.New("staff account is locked")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims represents the JWT claims for staff authentication
type Claims struct {
	StaffID  string `json:"staff_id"`
	TenantID string `json:"tenant_id,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims represents the JWT claims for refresh tokens
type RefreshClaims struct {
	StaffID string `json:"staff_id"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the response with authentication tokens
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type"`
	StaffID      string `json:"staff_id"`
	TenantID     string `json:"tenant_id,omitempty"`
	Role         string `json:"role"`
}

// Service provides staff authentication
type Service struct {
	repo         *data.StaffRepository
	cfg          config.JWTConfig
	auditSvc     *audit.Service
	maxAttempts  int
	lockDuration time.Duration
}

// NewService creates a new authentication service
func NewService(repo *data.StaffRepository, cfg config.JWTConfig, auditSvc *audit.Service) *Service {
	return &Service{
		repo:         repo,
		cfg:          cfg,
		auditSvc:     auditSvc,
		maxAttempts:  5,
		lockDuration: 15 * time.Minute,
	}
}

// Login authenticates a staff user and returns authentication tokens
func (s *Service) Login(ctx context.Context, req LoginRequest, ipAddress string) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			s.auditSvc.LogFailure(ctx, uuid.Nil, uuid.Nil, models.AuditActionLogin,
				"staff", "", fmt.Sprintf("Failed login attempt for %s", req.Email),
				"user not found", ipAddress)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	tenantID := uuid.Nil
	if user.TenantID != nil {
		tenantID = *user.TenantID
	}

	if !user.Active {
		s.auditSvc.LogFailure(ctx, tenantID, user.ID, models.AuditActionLogin,
			"staff", user.ID.String(), "Inactive account login attempt",
			"account not active", ipAddress)
		return nil, ErrUserNotActive
	}

	if user.IsLocked() {
		s.auditSvc.LogFailure(ctx, tenantID, user.ID, models.AuditActionLogin,
			"staff", user.ID.String(), "Locked account login attempt",
			"account locked", ipAddress)
		return nil, ErrUserLocked
	}

	if !user.CheckPassword(req.Password) {
		user.FailedAttempts++

		if user.FailedAttempts >= s.maxAttempts {
			user.LockedUntil = time.Now().Add(s.lockDuration)
			s.auditSvc.LogFailure(ctx, tenantID, user.ID, models.AuditActionLogin,
				"staff", user.ID.String(), "Account locked due to too many failed attempts",
				"max attempts exceeded", ipAddress)
		}

		if err := s.repo.RecordLoginAttempt(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update staff user: %w", err)
		}

		s.auditSvc.LogFailure(ctx, tenantID, user.ID, models.AuditActionLogin,
			"staff", user.ID.String(), "Failed login attempt",
			"invalid password", ipAddress)
		return nil, ErrInvalidCredentials
	}

	// Successful login resets the lockout counters
	user.FailedAttempts = 0
	user.LockedUntil = time.Time{}
	user.LastLogin = time.Now()
	if err := s.repo.RecordLoginAttempt(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update staff user: %w", err)
	}

	s.auditSvc.LogAction(ctx, tenantID, user.ID, models.AuditActionLogin,
		"staff", user.ID.String(), "Staff login", ipAddress)

	return s.issueTokens(user)
}

// Refresh validates a refresh token and issues a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims := new(RefreshClaims)
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	staffID, err := uuid.Parse(claims.StaffID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !user.Active || user.IsLocked() {
		return nil, ErrUserNotActive
	}

	return s.issueTokens(user)
}

// ValidateToken parses and validates an access token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// issueTokens builds the access/refresh token pair for a staff user
func (s *Service) issueTokens(user *models.StaffUser) (*TokenResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.ExpiryDuration)

	tenantID := ""
	if user.TenantID != nil {
		tenantID = user.TenantID.String()
	}

	accessClaims := Claims{
		StaffID:  user.ID.String(),
		TenantID: tenantID,
		Email:    user.Email,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   user.ID.String(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := RefreshClaims{
		StaffID: user.ID.String(),
		TokenID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshExpiry)),
			Subject:   user.ID.String(),
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.Unix(),
		TokenType:    "Bearer",
		StaffID:      user.ID.String(),
		TenantID:     tenantID,
		Role:         string(user.Role),
	}, nil
}
