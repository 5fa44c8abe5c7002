package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirantsoa/clinic-api/internal/config"
	"github.com/mirantsoa/clinic-api/internal/store"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret",
		SessionTTL: 7 * 24 * time.Hour,
		RoleTTL:    60 * time.Second,
		CookieName: "clinic_session",
	}
}

func newTestManager(t *testing.T, fetch RoleFetcher) (*Manager, *time.Time) {
	t.Helper()
	now := time.Now()
	m := NewManager(testSessionConfig(), NewMemoryRoleCache(), fetch)
	m.now = func() time.Time { return now }
	return m, &now
}

func countingFetcher(role string, calls *int32) RoleFetcher {
	return func(ctx context.Context, tenant, userID string) (string, error) {
		atomic.AddInt32(calls, 1)
		return role, nil
	}
}

func TestVerifyFreshRoleSkipsDatabase(t *testing.T) {
	var calls int32
	m, _ := newTestManager(t, countingFetcher("doctor", &calls))

	token, err := m.Issue("dr@clinic1.test", "user-1", "clinic1", "doctor")
	require.NoError(t, err)

	session, err := m.Verify(context.Background(), token, "clinic1")
	require.NoError(t, err)
	assert.Equal(t, "doctor", session.Claims.Role)
	assert.Empty(t, session.RefreshedToken)
	assert.Zero(t, atomic.LoadInt32(&calls), "fresh role must not hit the database")
}

func TestVerifyStaleRoleRefreshesOnce(t *testing.T) {
	var calls int32
	m, now := newTestManager(t, countingFetcher("staff", &calls))

	token, err := m.Issue("a@clinic1.test", "user-1", "clinic1", "doctor")
	require.NoError(t, err)

	origClaims, err := m.parse(token)
	require.NoError(t, err)

	*now = now.Add(61 * time.Second)

	session, err := m.Verify(context.Background(), token, "clinic1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "stale role triggers exactly one re-fetch")
	assert.Equal(t, "staff", session.Claims.Role, "refreshed role is used")
	require.NotEmpty(t, session.RefreshedToken)

	refreshed, err := m.parse(session.RefreshedToken)
	require.NoError(t, err)
	assert.Equal(t, origClaims.ExpiresAt.Unix(), refreshed.ExpiresAt.Unix(),
		"absolute expiry carries over from the original token")
	assert.Equal(t, now.Add(60*time.Second).Unix(), refreshed.RoleExpiry,
		"role window restarts from the refresh")

	// A second stale verify within the role TTL is served from the cache.
	_, err = m.Verify(context.Background(), token, "clinic1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestVerifyTenantMismatch(t *testing.T) {
	m, _ := newTestManager(t, countingFetcher("user", new(int32)))

	token, err := m.Issue("u@clinic1.test", "user-1", "clinic1", "user")
	require.NoError(t, err)

	_, err = m.Verify(context.Background(), token, "clinic2")
	assert.ErrorIs(t, err, ErrTenantMismatch)
}

func TestVerifyDeletedUserRevokesSession(t *testing.T) {
	m, now := newTestManager(t, func(ctx context.Context, tenant, userID string) (string, error) {
		return "", store.ErrNotFound
	})

	token, err := m.Issue("gone@clinic1.test", "user-1", "clinic1", "user")
	require.NoError(t, err)

	*now = now.Add(61 * time.Second)

	_, err = m.Verify(context.Background(), token, "clinic1")
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestVerifyGarbageToken(t *testing.T) {
	m, _ := newTestManager(t, countingFetcher("user", new(int32)))

	_, err := m.Verify(context.Background(), "not-a-token", "clinic1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	other := NewManager(config.SessionConfig{
		Secret:     "other-secret",
		SessionTTL: time.Hour,
		RoleTTL:    time.Minute,
	}, NewMemoryRoleCache(), nil)
	token, err := other.Issue("u@clinic1.test", "user-1", "clinic1", "user")
	require.NoError(t, err)

	m, _ := newTestManager(t, countingFetcher("user", new(int32)))
	_, err = m.Verify(context.Background(), token, "clinic1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRoleForcesFetch(t *testing.T) {
	var calls int32
	m, _ := newTestManager(t, countingFetcher("owner", &calls))

	token, err := m.Issue("o@clinic1.test", "user-1", "clinic1", "staff")
	require.NoError(t, err)

	// Role is still fresh, but RefreshRole must bypass the window.
	session, err := m.RefreshRole(context.Background(), token, "clinic1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "owner", session.Claims.Role)
	assert.NotEmpty(t, session.RefreshedToken)
}

func TestInvalidateRoleForcesNextFetch(t *testing.T) {
	var calls int32
	m, now := newTestManager(t, countingFetcher("user", &calls))

	token, err := m.Issue("u@clinic1.test", "user-1", "clinic1", "user")
	require.NoError(t, err)

	*now = now.Add(61 * time.Second)
	_, err = m.Verify(context.Background(), token, "clinic1")
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	m.InvalidateRole(context.Background(), "clinic1", "user-1")

	_, err = m.Verify(context.Background(), token, "clinic1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "invalidation drops the cached role")
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)
	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
