package ristretto

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestRistrettoRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	val := []byte("payload")
	if ok, err := p.Set(ctx, "k", val, 0, time.Minute); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	p.Wait()
	got, ok, err := p.Get(ctx, "k")
	if !ok || err != nil || !bytes.Equal(got, val) {
		t.Fatalf("Get=%q ok=%v err=%v", got, ok, err)
	}
	_ = p.Del(ctx, "k")
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("still present after Del")
	}
}

func TestRistrettoRejectsNegativeConfig(t *testing.T) {
	if _, err := New(Config{MaxCost: -1}); err == nil {
		t.Fatalf("expected error")
	}
}
