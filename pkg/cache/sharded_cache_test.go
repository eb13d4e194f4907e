package cache

import (
	"testing"
	"time"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := NewShardedPriceCache(time.Minute)

	if _, ok := c.Get("XRPUSDT"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set("XRPUSDT", 0.5123)
	got, ok := c.Get("XRPUSDT")
	if !ok || got != 0.5123 {
		t.Fatalf("Get = %v, %v, want 0.5123, true", got, ok)
	}
}

func TestEntriesExpire(t *testing.T) {
	c := NewShardedPriceCache(5 * time.Millisecond)

	c.Set("BTCUSDT", 65000)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("BTCUSDT"); ok {
		t.Fatal("stale entry should miss")
	}
}

func TestInvalidate(t *testing.T) {
	c := NewShardedPriceCache(time.Minute)

	c.Set("ETHUSDT", 3200)
	c.Invalidate("ETHUSDT")
	if _, ok := c.Get("ETHUSDT"); ok {
		t.Fatal("invalidated entry should miss")
	}
}
