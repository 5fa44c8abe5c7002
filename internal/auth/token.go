// Package auth implements the two-tier session credential: a long-lived
// signed identity token carried in an httpOnly cookie, plus a short-lived
// role value that is cached per tenant/user and re-fetched from the tenant
// database on a fixed TTL. Identity validity (days) and role freshness
// (seconds) age independently, so permission changes land quickly without a
// database read on every request.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/mirantsoa/clinic-api/internal/config"
	"github.com/mirantsoa/clinic-api/internal/store"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired session token")
	ErrTenantMismatch = errors.New("session does not belong to this tenant")
	// ErrSessionRevoked means the user behind the session no longer exists;
	// the middleware clears the cookie on this error.
	ErrSessionRevoked = errors.New("session revoked")
)

type Claims struct {
	Email      string `json:"email"`
	UserID     string `json:"userId"`
	Tenant     string `json:"tenant"`
	Role       string `json:"role"`
	RoleExpiry int64  `json:"roleExpiry"` // unix seconds; role is stale past this
	jwt.RegisteredClaims
}

// Session is the result of verifying a request's token.
type Session struct {
	Claims *Claims
	// RefreshedToken is set when the role window was renewed during
	// verification; the middleware re-sets the cookie with it. The absolute
	// expiry of the refreshed token matches the original.
	RefreshedToken string
}

// RoleFetcher reads the user's current role from the tenant's database. It
// returns store.ErrNotFound when the user record is gone.
type RoleFetcher func(ctx context.Context, tenant, userID string) (string, error)

type Manager struct {
	secret     []byte
	sessionTTL time.Duration
	roleTTL    time.Duration
	cache      RoleCache
	fetchRole  RoleFetcher
	sf         singleflight.Group
	now        func() time.Time
}

func NewManager(cfg config.SessionConfig, cache RoleCache, fetch RoleFetcher) *Manager {
	return &Manager{
		secret:     []byte(cfg.Secret),
		sessionTTL: cfg.SessionTTL,
		roleTTL:    cfg.RoleTTL,
		cache:      cache,
		fetchRole:  fetch,
		now:        time.Now,
	}
}

// Issue creates a fresh session token on login.
func (m *Manager) Issue(email, userID, tenant, role string) (string, error) {
	now := m.now()
	return m.sign(email, userID, tenant, role, now, now.Add(m.sessionTTL))
}

func (m *Manager) sign(email, userID, tenant, role string, now, expiresAt time.Time) (string, error) {
	claims := &Claims{
		Email:      email,
		UserID:     userID,
		Tenant:     tenant,
		Role:       role,
		RoleExpiry: now.Add(m.roleTTL).Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify checks the token against the requested tenant and ensures the role
// claim is fresh. A stale role is resolved from the cache or, failing that,
// re-fetched from the tenant database exactly once per tenant/user even under
// concurrent requests, and the token is re-issued with a fresh role window
// and the original absolute expiry.
func (m *Manager) Verify(ctx context.Context, tokenStr, tenant string) (*Session, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Tenant != tenant {
		return nil, ErrTenantMismatch
	}

	if m.now().Unix() < claims.RoleExpiry {
		return &Session{Claims: claims}, nil
	}
	return m.renewRole(ctx, claims, false)
}

// RefreshRole forces a role re-fetch regardless of freshness. Backs the
// verify-role endpoint.
func (m *Manager) RefreshRole(ctx context.Context, tokenStr, tenant string) (*Session, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Tenant != tenant {
		return nil, ErrTenantMismatch
	}
	return m.renewRole(ctx, claims, true)
}

func (m *Manager) renewRole(ctx context.Context, claims *Claims, force bool) (*Session, error) {
	key := claims.Tenant + "/" + claims.UserID

	role, ok := "", false
	if !force {
		role, ok = m.cache.Get(ctx, key)
	}
	if !ok {
		v, err, _ := m.sf.Do(key, func() (interface{}, error) {
			return m.fetchRole(ctx, claims.Tenant, claims.UserID)
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				m.cache.Invalidate(ctx, key)
				return nil, ErrSessionRevoked
			}
			return nil, err
		}
		role = v.(string)
		m.cache.Set(ctx, key, role, m.roleTTL)
	}

	// Re-issue with the refreshed role window; the absolute expiry carries
	// over from the original token.
	claims.Role = role
	claims.RoleExpiry = m.now().Add(m.roleTTL).Unix()
	refreshed, err := m.sign(claims.Email, claims.UserID, claims.Tenant, role, m.now(), claims.ExpiresAt.Time)
	if err != nil {
		return nil, err
	}
	return &Session{Claims: claims, RefreshedToken: refreshed}, nil
}

// InvalidateRole drops the cached role for a user, forcing the next stale
// verification to hit the database. Called after role updates and deletes.
func (m *Manager) InvalidateRole(ctx context.Context, tenant, userID string) {
	m.cache.Invalidate(ctx, tenant+"/"+userID)
}

// SessionTTL exposes the configured absolute token lifetime for cookie
// max-age calculations.
func (m *Manager) SessionTTL() time.Duration {
	return m.sessionTTL
}
