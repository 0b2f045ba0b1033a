package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"alessacloud/internal/data"
	"alessacloud/internal/models"
)

// MockRepository is a mock tenant lookup
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockRepository) GetByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func TestResolveBySlug(t *testing.T) {
	repo := new(MockRepository)
	resolver := NewResolver(repo, nil)

	want := &models.Tenant{ID: uuid.New(), Slug: "pizza"}
	repo.On("GetBySlug", mock.Anything, "pizza").Return(want, nil)

	got, err := resolver.Resolve(context.Background(), "pizza")

	assert.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertNotCalled(t, "GetByCustomDomain", mock.Anything, mock.Anything)
}

func TestResolveCustomDomainFallback(t *testing.T) {
	repo := new(MockRepository)
	resolver := NewResolver(repo, nil)

	want := &models.Tenant{ID: uuid.New(), Slug: "marios", CustomDomain: "mariospizzeria.com"}
	repo.On("GetBySlug", mock.Anything, "mariospizzeria.com").Return(nil, data.ErrNotFound)
	repo.On("GetByCustomDomain", mock.Anything, "mariospizzeria.com").Return(want, nil)

	got, err := resolver.Resolve(context.Background(), "mariospizzeria.com")

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveNotFound(t *testing.T) {
	repo := new(MockRepository)
	resolver := NewResolver(repo, nil)

	repo.On("GetBySlug", mock.Anything, "ghost").Return(nil, data.ErrNotFound)

	got, err := resolver.Resolve(context.Background(), "ghost")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrTenantNotFound)
	// No dot means no custom-domain fallback.
	repo.AssertNotCalled(t, "GetByCustomDomain", mock.Anything, mock.Anything)
}

func TestResolveNotFoundAfterBothLookups(t *testing.T) {
	repo := new(MockRepository)
	resolver := NewResolver(repo, nil)

	repo.On("GetBySlug", mock.Anything, "unknown.example.com").Return(nil, data.ErrNotFound)
	repo.On("GetByCustomDomain", mock.Anything, "unknown.example.com").Return(nil, data.ErrNotFound)

	_, err := resolver.Resolve(context.Background(), "unknown.example.com")

	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveDatabaseError(t *testing.T) {
	repo := new(MockRepository)
	resolver := NewResolver(repo, nil)

	dbErr := errors.New("connection refused")
	repo.On("GetBySlug", mock.Anything, "pizza").Return(nil, dbErr)

	_, err := resolver.Resolve(context.Background(), "pizza")

	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrTenantNotFound)
}
