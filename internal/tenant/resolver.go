package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alessacloud/internal/data"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// ErrTenantNotFound is returned when neither the slug nor the custom-domain
// lookup matches a tenant. Resolution failure is terminal for the request;
// it is never retried.
var ErrTenantNotFound = errors.New("tenant not found")

// Repository is the data access the resolver needs. Both lookups return the
// tenant aggregate with settings and integration records loaded in one round
// trip.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error)
}

// Resolver translates a slug candidate (as produced by HostParser) into a
// fully-populated tenant aggregate, or a definitive ErrTenantNotFound.
type Resolver struct {
	repo    Repository
	metrics *observability.Metrics
}

// NewResolver creates a new tenant resolver
func NewResolver(repo Repository, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		repo:    repo,
		metrics: metrics,
	}
}

// Resolve looks up a tenant by exact slug first. If that misses and the
// input looks like a custom domain (it contains a dot), it falls back to the
// custom-domain field on the tenant record.
func (r *Resolver) Resolve(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := r.repo.GetBySlug(ctx, slug)
	if err == nil {
		r.metrics.RecordTenantResolution("hit")
		return t, nil
	}
	if !errors.Is(err, data.ErrNotFound) {
		return nil, fmt.Errorf("tenant lookup failed: %w", err)
	}

	if strings.Contains(slug, ".") {
		t, err = r.repo.GetByCustomDomain(ctx, slug)
		if err == nil {
			r.metrics.RecordTenantResolution("hit")
			return t, nil
		}
		if !errors.Is(err, data.ErrNotFound) {
			return nil, fmt.Errorf("custom domain lookup failed: %w", err)
		}
	}

	r.metrics.RecordTenantResolution("miss")
	return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, slug)
}
