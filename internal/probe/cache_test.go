package probe

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "nested", "durations.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	mtime := time.Unix(1_700_000_000, 0)

	if _, _, hit, err := cache.Lookup(ctx, "/media/a.mov", 10, mtime); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	if err := cache.Store(ctx, "/media/a.mov", 10, mtime, 100, MethodMeasured); err != nil {
		t.Fatalf("Store: %v", err)
	}

	frames, method, hit, err := cache.Lookup(ctx, "/media/a.mov", 10, mtime)
	if err != nil || !hit {
		t.Fatalf("expected hit, err=%v", err)
	}
	if frames != 100 || method != MethodMeasured {
		t.Fatalf("unexpected entry: frames=%d method=%s", frames, method)
	}
}

func TestCacheMissOnChangedIdentity(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "durations.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	ctx := context.Background()
	mtime := time.Unix(1_700_000_000, 0)
	if err := cache.Store(ctx, "/media/a.mov", 10, mtime, 100, MethodEstimated); err != nil {
		t.Fatal(err)
	}

	if _, _, hit, _ := cache.Lookup(ctx, "/media/a.mov", 11, mtime); hit {
		t.Fatal("size change must invalidate the entry")
	}
	if _, _, hit, _ := cache.Lookup(ctx, "/media/a.mov", 10, mtime.Add(time.Second)); hit {
		t.Fatal("mtime change must invalidate the entry")
	}
}

func TestCacheUpsert(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "durations.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	ctx := context.Background()
	mtime := time.Unix(1_700_000_000, 0)
	if err := cache.Store(ctx, "/media/a.mov", 10, mtime, 90, MethodEstimated); err != nil {
		t.Fatal(err)
	}
	if err := cache.Store(ctx, "/media/a.mov", 10, mtime, 100, MethodMeasured); err != nil {
		t.Fatal(err)
	}

	frames, method, hit, err := cache.Lookup(ctx, "/media/a.mov", 10, mtime)
	if err != nil || !hit {
		t.Fatalf("expected hit, err=%v", err)
	}
	if frames != 100 || method != MethodMeasured {
		t.Fatalf("upsert did not replace entry: frames=%d method=%s", frames, method)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	if _, _, hit, err := cache.Lookup(ctx, "p", 1, time.Now()); hit || err != nil {
		t.Fatalf("nil cache lookup should be a clean miss: hit=%v err=%v", hit, err)
	}
	if err := cache.Store(ctx, "p", 1, time.Now(), 1, MethodMeasured); err != nil {
		t.Fatalf("nil cache store should be a no-op: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("nil cache close should be a no-op: %v", err)
	}
}
