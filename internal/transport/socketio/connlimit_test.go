package socketio

import (
	"fmt"
	"testing"
)

func TestConnectionLimiterLoopbackUnlimited(t *testing.T) {
	cl := NewConnectionLimiter(1)
	cl.TryAdd("ext-1", "192.168.1.100")

	addrs := []string{"127.0.0.1", "::1", "127.0.0.1:53122", "[::1]:8080", "::ffff:127.0.0.1", "localhost"}
	for i, addr := range addrs {
		allowed, evicted := cl.TryAdd(fmt.Sprintf("local-%d", i), addr)
		if !allowed {
			t.Errorf("loopback connection from %s should be allowed", addr)
		}
		if evicted != "" {
			t.Errorf("loopback connection from %s should not evict anyone, got %s", addr, evicted)
		}
	}
	if got := cl.External(); got != 1 {
		t.Errorf("expected 1 external client, got %d", got)
	}
}

func TestConnectionLimiterEvictsOldestExternal(t *testing.T) {
	cl := NewConnectionLimiter(2)

	cl.TryAdd("first", "10.0.0.1")
	cl.TryAdd("second", "10.0.0.2:4000")

	_, evicted := cl.TryAdd("third", "10.0.0.3")
	if evicted != "first" {
		t.Errorf("expected eviction of first, got %q", evicted)
	}
	_, evicted = cl.TryAdd("fourth", "10.0.0.4")
	if evicted != "second" {
		t.Errorf("expected eviction of second, got %q", evicted)
	}
}

func TestConnectionLimiterRemoveFreesSlot(t *testing.T) {
	cl := NewConnectionLimiter(1)

	cl.TryAdd("ext-1", "192.168.1.100")
	cl.Remove("ext-1")

	allowed, evicted := cl.TryAdd("ext-2", "192.168.1.101")
	if !allowed {
		t.Error("external should be allowed after removal")
	}
	if evicted != "" {
		t.Errorf("should not evict after removal freed a slot, got %s", evicted)
	}
}

func TestConnectionLimiterDuplicateAddIsIdempotent(t *testing.T) {
	cl := NewConnectionLimiter(1)

	cl.TryAdd("ext-1", "192.168.1.100")
	allowed, evicted := cl.TryAdd("ext-1", "192.168.1.100")
	if !allowed {
		t.Error("duplicate add should be allowed")
	}
	if evicted != "" {
		t.Errorf("duplicate add should not evict, got %s", evicted)
	}
	if got := cl.External(); got != 1 {
		t.Errorf("expected 1 external client, got %d", got)
	}
}

func TestConnectionLimiterRemoveNonexistent(t *testing.T) {
	cl := NewConnectionLimiter(1)
	cl.Remove("nonexistent")
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		addr     string
		expected bool
	}{
		{"127.0.0.1", true},
		{"127.0.0.2", true},
		{"::1", true},
		{"[::1]:3000", true},
		{"::ffff:127.0.0.1", true},
		{"localhost", true},
		{"192.168.1.100", false},
		{"192.168.1.100:52000", false},
		{"0.0.0.0", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := isLoopback(tc.addr); got != tc.expected {
			t.Errorf("isLoopback(%q) = %v, want %v", tc.addr, got, tc.expected)
		}
	}
}
