package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/classward/test-delivery-service/internal/models"
)

func testScope() models.AuthContext {
	return models.AuthContext{
		TenantID:       uuid.New(),
		OrganisationID: uuid.New(),
		UserID:         "user-1",
	}
}

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type cachedTest struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestCacheHelper_GetSet(t *testing.T) {
	helper := NewCacheHelper(newTestClient(t), TestCacheConfig.Prefix)
	ctx := context.Background()

	key := TestKey(1, testScope())

	var missed cachedTest
	if err := helper.Get(ctx, key, &missed); err != ErrCacheNotFound {
		t.Fatalf("Get() on empty cache error = %v, want ErrCacheNotFound", err)
	}

	want := cachedTest{ID: 1, Title: "algebra quiz"}
	if err := helper.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got cachedTest
	if err := helper.Get(ctx, key, &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if err := helper.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := helper.Get(ctx, key, &got); err != ErrCacheNotFound {
		t.Errorf("Get() after delete error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper := NewCacheHelper(newTestClient(t), FastCacheConfig.Prefix)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedTest{ID: 7, Title: "fetched"}, nil
	}

	var first cachedTest
	if err := helper.CacheOrExecute(ctx, "probe", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if calls != 1 || first.ID != 7 {
		t.Fatalf("first call: calls = %d, value = %+v", calls, first)
	}

	// the populate happens in the background
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		var probe cachedTest
		if helper.Get(ctx, "probe", &probe) == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var second cachedTest
	if err := helper.CacheOrExecute(ctx, "probe", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() second call error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1 (second call served from cache)", calls)
	}
	if second != first {
		t.Errorf("second = %+v, want %+v", second, first)
	}
}

func TestCacheHelper_Locking(t *testing.T) {
	helper := NewCacheHelper(newTestClient(t), "")
	ctx := context.Background()

	key := AttemptStartLockKey(10, "user-1")
	if err := helper.AcquireLock(ctx, key, 10*time.Second); err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	if err := helper.AcquireLock(ctx, key, 10*time.Second); err != ErrLockNotAcquired {
		t.Fatalf("second AcquireLock() error = %v, want ErrLockNotAcquired", err)
	}

	// a different user is not serialized against this one
	if err := helper.AcquireLock(ctx, AttemptStartLockKey(10, "user-2"), 10*time.Second); err != nil {
		t.Errorf("AcquireLock() for other user error = %v", err)
	}

	helper.ReleaseLock(ctx, key)
	if err := helper.AcquireLock(ctx, key, 10*time.Second); err != nil {
		t.Errorf("AcquireLock() after release error = %v", err)
	}
}

func TestCacheHelper_NoClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", cachedTest{ID: 1}, time.Minute); err != nil {
		t.Errorf("Set() without client error = %v", err)
	}
	var dest cachedTest
	if err := helper.Get(ctx, "k", &dest); err != ErrCacheNotAvailable {
		t.Errorf("Get() without client error = %v, want ErrCacheNotAvailable", err)
	}

	// locks become no-ops; the DB unique constraint is then the only guard
	if err := helper.AcquireLock(ctx, "lock", time.Second); err != nil {
		t.Errorf("AcquireLock() without client error = %v", err)
	}

	calls := 0
	if err := helper.CacheOrExecute(ctx, "k", &dest, time.Minute, func() (interface{}, error) {
		calls++
		return cachedTest{ID: 2, Title: "live"}, nil
	}); err != nil {
		t.Fatalf("CacheOrExecute() without client error = %v", err)
	}
	if calls != 1 || dest.ID != 2 {
		t.Errorf("CacheOrExecute() = %+v after %d calls", dest, calls)
	}
}

func TestCacheManager_Invalidate(t *testing.T) {
	client := newTestClient(t)
	cm := NewCacheManager(client)
	ctx := context.Background()

	key := QuestionKey(3)
	if err := cm.Question.Set(ctx, key, cachedTest{ID: 3}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cm.Fast.Set(ctx, key, cachedTest{ID: 3}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cm.Invalidate(ctx, key)

	var dest cachedTest
	if err := cm.Question.Get(ctx, key, &dest); err != ErrCacheNotFound {
		t.Errorf("Question.Get() after invalidate error = %v, want ErrCacheNotFound", err)
	}
	if err := cm.Fast.Get(ctx, key, &dest); err != ErrCacheNotFound {
		t.Errorf("Fast.Get() after invalidate error = %v, want ErrCacheNotFound", err)
	}

	if err := cm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := NewCacheManager(nil).HealthCheck(ctx); err != ErrCacheNotAvailable {
		t.Errorf("HealthCheck() without client error = %v, want ErrCacheNotAvailable", err)
	}
}
