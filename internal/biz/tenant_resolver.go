package biz

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"tracktok/internal/domain"
	"tracktok/pkg/cache"
)

// ResolveInput carries the request attributes tenant resolution can use, in
// precedence order: custom domain, subdomain, explicit header, session.
type ResolveInput struct {
	Host            string
	HeaderTenantID  string
	SessionTenantID string
}

// TenantResolver resolves the active tenant once per request. Host lookups
// are cached in redis because every request pays for them.
type TenantResolver struct {
	tenantRepo domain.TenantRepository
	cache      cache.Cache
	baseDomain string
	cacheTTL   time.Duration
	log        *zap.Logger
}

// NewTenantResolver creates the resolver. baseDomain is the platform's own
// domain; hosts under it are treated as tenant subdomains, anything else as a
// custom domain.
func NewTenantResolver(tenantRepo domain.TenantRepository, c cache.Cache, baseDomain string, cacheTTL time.Duration, logger *zap.Logger) *TenantResolver {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &TenantResolver{
		tenantRepo: tenantRepo,
		cache:      c,
		baseDomain: baseDomain,
		cacheTTL:   cacheTTL,
		log:        logger,
	}
}

// Resolve returns the active tenant for the request or ErrTenantRequired when
// nothing matches. Suspended tenants resolve to ErrTenantSuspended so callers
// can distinguish "no tenant" from "tenant exists but is blocked".
func (r *TenantResolver) Resolve(ctx context.Context, input ResolveInput) (*domain.Tenant, error) {
	host := normalizeHost(input.Host)

	if host != "" {
		tenant, err := r.resolveByHost(ctx, host)
		if err == nil {
			return r.checkActive(tenant)
		}
		if !errors.Is(err, domain.ErrTenantRequired) {
			return nil, err
		}
	}

	if input.HeaderTenantID != "" {
		tenant, err := r.tenantRepo.GetByID(ctx, input.HeaderTenantID)
		if err == nil {
			return r.checkActive(tenant)
		}
		if !errors.Is(err, domain.ErrTenantRequired) {
			return nil, err
		}
	}

	if input.SessionTenantID != "" {
		tenant, err := r.tenantRepo.GetByID(ctx, input.SessionTenantID)
		if err == nil {
			return r.checkActive(tenant)
		}
		if !errors.Is(err, domain.ErrTenantRequired) {
			return nil, err
		}
	}

	return nil, domain.ErrTenantRequired
}

func (r *TenantResolver) checkActive(tenant *domain.Tenant) (*domain.Tenant, error) {
	if !tenant.IsActive {
		return nil, domain.ErrTenantSuspended
	}
	return tenant, nil
}

// resolveByHost maps a host to a tenant, consulting the cache first.
func (r *TenantResolver) resolveByHost(ctx context.Context, host string) (*domain.Tenant, error) {
	cacheKey := "tenant:host:" + host

	if r.cache != nil {
		if tenantID, err := r.cache.Get(ctx, cacheKey); err == nil {
			return r.tenantRepo.GetByID(ctx, tenantID)
		}
	}

	var tenant *domain.Tenant
	var err error

	if subdomain, ok := r.subdomainOf(host); ok {
		tenant, err = r.tenantRepo.GetBySubdomain(ctx, subdomain)
	} else {
		tenant, err = r.tenantRepo.GetByCustomDomain(ctx, host)
	}
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, tenant.ID, r.cacheTTL); err != nil {
			r.log.Warn("tenant cache write failed", zap.String("host", host), zap.Error(err))
		}
	}
	return tenant, nil
}

// subdomainOf extracts the tenant subdomain when host is directly under the
// base domain. "acme.tracktok.io" yields "acme"; "www" and the apex are not
// tenant subdomains.
func (r *TenantResolver) subdomainOf(host string) (string, bool) {
	if r.baseDomain == "" {
		return "", false
	}
	suffix := "." + r.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	sub := strings.TrimSuffix(host, suffix)
	if sub == "" || sub == "www" || strings.Contains(sub, ".") {
		return "", false
	}
	return sub, true
}

// normalizeHost lowercases the host and strips any port.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}
