package service_test

import (
	"testing"

	"github.com/msomdec/photocat/internal/service"
)

func TestTokenBucket_Allow(t *testing.T) {
	tb := service.NewTokenBucket(1, 3)

	for i := 0; i < 3; i++ {
		if !tb.Allow("client1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if tb.Allow("client1") {
		t.Fatal("request beyond capacity should be denied")
	}
}

func TestTokenBucket_SeparateKeys(t *testing.T) {
	tb := service.NewTokenBucket(1, 1)

	if !tb.Allow("client1") {
		t.Fatal("client1 first request should be allowed")
	}
	if tb.Allow("client1") {
		t.Fatal("client1 second request should be denied")
	}
	if !tb.Allow("client2") {
		t.Fatal("client2 has its own bucket and should be allowed")
	}
}
