package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracktok/internal/domain"
)

func newResolverFixture() (*TenantResolver, *fakeTenantRepo, *fakeCache, *domain.Tenant) {
	tenant := domain.NewTenant("Acme", "acme", domain.TenantPlanPro)
	repo := newFakeTenantRepo(tenant)
	c := newFakeCache()
	resolver := NewTenantResolver(repo, c, "tracktok.io", time.Minute, zap.NewNop())
	return resolver, repo, c, tenant
}

func TestResolveBySubdomain(t *testing.T) {
	resolver, _, _, tenant := newResolverFixture()

	got, err := resolver.Resolve(context.Background(), ResolveInput{Host: "acme.tracktok.io"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolveStripsPortAndCase(t *testing.T) {
	resolver, _, _, tenant := newResolverFixture()

	got, err := resolver.Resolve(context.Background(), ResolveInput{Host: "ACME.tracktok.io:8080"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolveByCustomDomain(t *testing.T) {
	resolver, repo, _, tenant := newResolverFixture()
	repo.customDomains["expenses.acme-corp.com"] = tenant.ID

	got, err := resolver.Resolve(context.Background(), ResolveInput{Host: "expenses.acme-corp.com"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolveByHeaderFallback(t *testing.T) {
	resolver, _, _, tenant := newResolverFixture()

	got, err := resolver.Resolve(context.Background(), ResolveInput{
		Host:           "www.tracktok.io",
		HeaderTenantID: tenant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolveBySessionFallback(t *testing.T) {
	resolver, _, _, tenant := newResolverFixture()

	got, err := resolver.Resolve(context.Background(), ResolveInput{SessionTenantID: tenant.ID})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolveHostWinsOverHeader(t *testing.T) {
	resolver, repo, _, tenant := newResolverFixture()
	other := domain.NewTenant("Globex", "globex", domain.TenantPlanFree)
	repo.tenants[other.ID] = other

	got, err := resolver.Resolve(context.Background(), ResolveInput{
		Host:           "acme.tracktok.io",
		HeaderTenantID: other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID, "host resolution takes precedence")
}

func TestResolveNothingMatches(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()

	_, err := resolver.Resolve(context.Background(), ResolveInput{Host: "unknown.example.com"})
	assert.ErrorIs(t, err, domain.ErrTenantRequired)

	_, err = resolver.Resolve(context.Background(), ResolveInput{})
	assert.ErrorIs(t, err, domain.ErrTenantRequired)
}

func TestResolveSuspendedTenant(t *testing.T) {
	resolver, _, _, tenant := newResolverFixture()
	tenant.Suspend("payment overdue")

	_, err := resolver.Resolve(context.Background(), ResolveInput{Host: "acme.tracktok.io"})
	assert.ErrorIs(t, err, domain.ErrTenantSuspended)
}

func TestResolveApexAndWwwAreNotSubdomains(t *testing.T) {
	resolver, repo, _, _ := newResolverFixture()
	// Would match if the apex or www were treated as a subdomain lookup.
	www := domain.NewTenant("Web", "www", domain.TenantPlanFree)
	repo.tenants[www.ID] = www

	_, err := resolver.Resolve(context.Background(), ResolveInput{Host: "tracktok.io"})
	assert.ErrorIs(t, err, domain.ErrTenantRequired)

	_, err = resolver.Resolve(context.Background(), ResolveInput{Host: "www.tracktok.io"})
	assert.ErrorIs(t, err, domain.ErrTenantRequired)

	_, err = resolver.Resolve(context.Background(), ResolveInput{Host: "deep.acme.tracktok.io"})
	assert.ErrorIs(t, err, domain.ErrTenantRequired)
}

func TestResolveCachesHostLookups(t *testing.T) {
	resolver, _, c, tenant := newResolverFixture()

	_, err := resolver.Resolve(context.Background(), ResolveInput{Host: "acme.tracktok.io"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, c.data["tenant:host:acme.tracktok.io"])

	// Second resolve hits the cache, then fetches the tenant by id.
	gets := c.gets
	_, err = resolver.Resolve(context.Background(), ResolveInput{Host: "acme.tracktok.io"})
	require.NoError(t, err)
	assert.Equal(t, gets+1, c.gets)
}

func TestResolveCacheHitShortCircuitsHostLookup(t *testing.T) {
	resolver, repo, c, tenant := newResolverFixture()
	require.NoError(t, c.Set(context.Background(), "tenant:host:billing.acme-corp.com", tenant.ID, time.Minute))

	// No custom domain mapping exists in the repo; only the cache knows the host.
	got, err := resolver.Resolve(context.Background(), ResolveInput{Host: "billing.acme-corp.com"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
	assert.Empty(t, repo.customDomains)
}
