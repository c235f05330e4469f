package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

func setupCache(t *testing.T) (*Cache[models.TxLocator], *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New[models.TxLocator](client, "lookup", time.Hour), mr
}

func sampleLocator(t *testing.T) models.TxLocator {
	addr, err := models.ParseAddress("EQCtJGu1Q5xptmRFuP16M2w01QValw3V8IiyxQczAf83YITE")
	if err != nil {
		t.Fatal(err)
	}
	hash, err := models.ParseHash("53bLbTDYoHiBHGJPz2/oGr1JvJ/SS7iVVeMTUi5PYpw=")
	if err != nil {
		t.Fatal(err)
	}
	loc, err := models.NewTxLocator(44640875000007, hash, addr, models.Mainnet)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestCacheRoundTrip(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	loc := sampleLocator(t)

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := c.Set(ctx, "tx", loc); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("lookup:tx") {
		t.Fatalf("expected key with prefix, keys: %v", mr.Keys())
	}
	if ttl := mr.TTL("lookup:tx"); ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %v", ttl)
	}

	got, err := c.Get(ctx, "tx")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Equal(loc) || got.Address.Bounceable != loc.Address.Bounceable {
		t.Errorf("expected %v, got %v", loc, got)
	}

	if err := c.Delete(ctx, "tx"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "tx"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCacheDecodeFailure(t *testing.T) {
	c, mr := setupCache(t)
	if err := mr.Set("lookup:broken", "\xc1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "broken"); !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("expected ErrDecodeFailed, got %v", err)
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache[models.TxLocator]
	ctx := context.Background()
	if err := c.Set(ctx, "k", models.TxLocator{}); err != nil {
		t.Errorf("nil cache Set: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("nil cache Get: %v", err)
	}
}
