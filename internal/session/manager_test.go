package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ctgpost/MarketingWebTools/internal/cache"
	"github.com/ctgpost/MarketingWebTools/internal/catalog"
	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGateway struct{}

func (staticGateway) MarketingTip(context.Context, string) string          { return "tip" }
func (staticGateway) SocialCaption(context.Context, string, string) string { return "caption" }
func (staticGateway) Keywords(context.Context, string) string              { return "keywords" }

type fixedAuditor struct{ score int }

func (a fixedAuditor) Run(_ context.Context, url string) (int, bool) {
	return a.score, url != ""
}

func testDeps() Deps {
	return Deps{
		Catalog:     catalog.New(catalog.DefaultProducts()),
		Gateway:     staticGateway{},
		Auditor:     fixedAuditor{score: 82},
		MarkerDelay: time.Minute,
	}
}

func setupRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisCache(client, 0), mr
}

func newTestManager(t *testing.T, store cache.SessionCache, cfg ManagerConfig) *Manager {
	m := NewManager(testDeps(), store, cfg)
	t.Cleanup(m.Close)
	return m
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager(t, nil, ManagerConfig{})
	ctx := context.Background()

	s := m.Create(ctx)
	require.NotEmpty(t, s.ID())
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newTestManager(t, nil, ManagerConfig{})
	ctx := context.Background()

	a := m.Create(ctx)
	b := m.Create(ctx)
	require.NotEqual(t, a.ID(), b.ID())

	_, err := a.AddItem(1)
	require.NoError(t, err)

	assert.Equal(t, 1, a.Snapshot().Cart.Count)
	assert.Zero(t, b.Snapshot().Cart.Count)
}

func TestManager_Delete(t *testing.T) {
	rc, mr := setupRedisCache(t)
	m := newTestManager(t, rc, ManagerConfig{})
	ctx := context.Background()

	s := m.Create(ctx)
	require.True(t, mr.Exists("session:"+s.ID()))

	require.NoError(t, m.Delete(ctx, s.ID()))
	assert.Zero(t, m.Len())
	assert.False(t, mr.Exists("session:"+s.ID()))

	assert.ErrorIs(t, m.Delete(ctx, s.ID()), ErrSessionNotFound)
}

// gatedCache holds the next Set until release is closed.
type gatedCache struct {
	cache.SessionCache
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (c *gatedCache) Set(ctx context.Context, id string, snap *domain.SessionSnapshot) error {
	if c.armed.CompareAndSwap(true, false) {
		close(c.entered)
		<-c.release
	}
	return c.SessionCache.Set(ctx, id, snap)
}

func TestManager_DeleteDuringWriteThroughStaysDeleted(t *testing.T) {
	rc, mr := setupRedisCache(t)
	gc := &gatedCache{SessionCache: rc, entered: make(chan struct{}), release: make(chan struct{})}
	m := newTestManager(t, gc, ManagerConfig{})
	ctx := context.Background()

	s := m.Create(ctx)
	id := s.ID()

	gc.armed.Store(true)
	added := make(chan struct{})
	go func() {
		defer close(added)
		_, err := s.AddItem(1)
		assert.NoError(t, err)
	}()
	<-gc.entered

	deleted := make(chan error, 1)
	go func() { deleted <- m.Delete(ctx, id) }()
	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, time.Millisecond)

	close(gc.release)
	<-added
	require.NoError(t, <-deleted)

	assert.False(t, mr.Exists("session:"+id))
	_, err := m.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_NoObserverAfterEnd(t *testing.T) {
	s := New("ended", testDeps())
	var calls atomic.Int32
	s.Subscribe(func(domain.SessionSnapshot) { calls.Add(1) })

	s.End()
	_, err := s.AddItem(1)
	require.NoError(t, err)
	assert.Zero(t, calls.Load())
}

func TestManager_WritesThroughToCache(t *testing.T) {
	rc, _ := setupRedisCache(t)
	m := newTestManager(t, rc, ManagerConfig{})
	ctx := context.Background()

	s := m.Create(ctx)
	_, err := s.AddItem(7)
	require.NoError(t, err)
	require.True(t, s.OpenCheckout())

	snap, err := rc.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Cart.Count)
	assert.True(t, snap.Checkout.Open)
	assert.Equal(t, s.Snapshot().Version, snap.Version)
}

func TestManager_RehydratesFromAnotherInstance(t *testing.T) {
	rc, _ := setupRedisCache(t)
	ctx := context.Background()

	first := newTestManager(t, rc, ManagerConfig{})
	s := first.Create(ctx)
	_, err := s.AddItem(7)
	require.NoError(t, err)
	_, err = s.AddItem(3)
	require.NoError(t, err)
	require.True(t, s.OpenCheckout())
	require.True(t, s.Proceed())
	require.True(t, s.RunAudit(ctx, "https://boutique.example"))
	s.Wait()

	second := newTestManager(t, rc, ManagerConfig{})
	got, err := second.Get(ctx, s.ID())
	require.NoError(t, err)

	snap := got.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.Equal(t, 2, snap.Cart.Count)
	assert.Equal(t, domain.StepShippingInfo, snap.Checkout.Step)
	assert.Equal(t, domain.Totals{Subtotal: 1700, DeliveryFee: 60, Total: 1760}, snap.Checkout.Totals)
	assert.Equal(t, 82, snap.Audit.Score)

	again, err := second.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, got, again)
}

func TestManager_CacheErrorTreatedAsNotFound(t *testing.T) {
	rc, mr := setupRedisCache(t)
	m := newTestManager(t, rc, ManagerConfig{})
	mr.Close()

	_, err := m.Get(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ExpiresIdleSessions(t *testing.T) {
	rc, mr := setupRedisCache(t)
	m := newTestManager(t, rc, ManagerConfig{
		IdleTTL:         30 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})

	s := m.Create(context.Background())
	require.True(t, mr.Exists("session:"+s.ID()))

	require.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, mr.Exists("session:"+s.ID()))
}

func TestManager_TouchKeepsSessionAlive(t *testing.T) {
	m := newTestManager(t, nil, ManagerConfig{
		IdleTTL:         200 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})
	ctx := context.Background()

	s := m.Create(ctx)
	for i := 0; i < 10; i++ {
		time.Sleep(30 * time.Millisecond)
		_, err := m.Get(ctx, s.ID())
		require.NoError(t, err)
	}
}
