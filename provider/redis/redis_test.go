package redis

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcoll/internal/fakeredis"
)

func TestRedisProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := fakeredis.New()
	p, err := New(Config{Client: st})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("miss: ok=%v err=%v", ok, err)
	}
	val := []byte{0, 1, 2, 0xFF}
	if ok, err := p.Set(ctx, "k", val, 1, time.Minute); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	if st.TTL("k") != time.Minute {
		t.Fatalf("ttl not forwarded: %v", st.TTL("k"))
	}
	got, ok, err := p.Get(ctx, "k")
	if !ok || err != nil || !bytes.Equal(got, val) {
		t.Fatalf("Get=%x ok=%v err=%v", got, ok, err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("still present after Del")
	}
}

func TestRedisProviderErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("err=%v", err)
	}
	st := fakeredis.New()
	p, _ := New(Config{Client: st})
	boom := errors.New("down")
	st.FailOn("get", boom)
	st.FailOn("set", boom)
	if _, _, err := p.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("Get err=%v", err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, 0); ok || !errors.Is(err, boom) {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
}

func TestRedisProviderCloseOwnership(t *testing.T) {
	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})

	borrowed, _ := New(Config{Client: rdb})
	if err := borrowed.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	owned, _ := New(Config{Client: rdb, CloseClient: true})
	if err := owned.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := owned.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// executors without Close are left alone
	fake, _ := New(Config{Client: fakeredis.New(), CloseClient: true})
	if err := fake.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
