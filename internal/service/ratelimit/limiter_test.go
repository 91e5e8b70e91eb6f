package ratelimit

import "testing"

func TestAllowConsumesBucket(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		if !l.Allow("client-a", 3, 0) {
			t.Fatalf("request %d should pass within capacity", i+1)
		}
	}
	if l.Allow("client-a", 3, 0) {
		t.Fatal("request past capacity should be rejected")
	}
}

func TestAllowIsolatesKeys(t *testing.T) {
	l := New()

	if !l.Allow("client-a", 1, 0) {
		t.Fatal("first request for client-a should pass")
	}
	if l.Allow("client-a", 1, 0) {
		t.Fatal("client-a exhausted its bucket")
	}
	if !l.Allow("client-b", 1, 0) {
		t.Fatal("client-b has its own bucket")
	}
}
