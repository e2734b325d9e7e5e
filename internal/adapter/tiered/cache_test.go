package tiered_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/AgentForge/internal/adapter/tiered"
	"github.com/Strob0t/AgentForge/internal/port/cache/cachetest"
)

var errDown = errors.New("l2 unavailable")

// brokenCache fails every call.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errDown
}
func (brokenCache) Delete(context.Context, string) error { return errDown }

func TestCompliance(t *testing.T) {
	cachetest.RunComplianceTests(t, tiered.New(cachetest.NewMemory(), cachetest.NewMemory(), time.Minute))
}

func TestTiered_L1Hit(t *testing.T) {
	l1, l2 := cachetest.NewMemory(), cachetest.NewMemory()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	_ = l1.Set(ctx, "key1", []byte("val1"), 0)

	val, found, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "val1" {
		t.Fatalf("expected L1 hit val1, got %q found=%v", val, found)
	}
}

func TestTiered_L2HitWithBackfill(t *testing.T) {
	l1, l2 := cachetest.NewMemory(), cachetest.NewMemory()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	_ = l2.Set(ctx, "key2", []byte("val2"), 0)

	val, found, err := c.Get(ctx, "key2")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "val2" {
		t.Fatalf("expected L2 hit val2, got %q found=%v", val, found)
	}

	l1Val, ok, _ := l1.Get(ctx, "key2")
	if !ok || string(l1Val) != "val2" {
		t.Fatal("expected L1 backfill")
	}
}

func TestTiered_SetAndDeleteBoth(t *testing.T) {
	l1, l2 := cachetest.NewMemory(), cachetest.NewMemory()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "key3", []byte("val3"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if l1.Len() != 1 || l2.Len() != 1 {
		t.Fatalf("expected key in both levels, got l1=%d l2=%d", l1.Len(), l2.Len())
	}

	if err := c.Delete(ctx, "key3"); err != nil {
		t.Fatal(err)
	}
	if l1.Len() != 0 || l2.Len() != 0 {
		t.Fatalf("expected key removed from both levels, got l1=%d l2=%d", l1.Len(), l2.Len())
	}
}

func TestTiered_L2FailureDegradesToL1(t *testing.T) {
	l1 := cachetest.NewMemory()
	c := tiered.New(l1, brokenCache{}, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set should tolerate L2 failure: %v", err)
	}
	val, found, err := c.Get(ctx, "k")
	if err != nil || !found || string(val) != "v" {
		t.Fatalf("expected L1 hit, got %q found=%v err=%v", val, found, err)
	}

	_, found, err = c.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("L2 error should read as a miss, got %v", err)
	}
	if found {
		t.Fatal("expected miss")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete should tolerate L2 failure: %v", err)
	}
}
