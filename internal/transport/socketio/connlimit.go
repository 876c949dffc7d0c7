package socketio

import (
	"net"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// ConnectionLimiter caps concurrent remote-control clients from other
// machines. Loopback clients are never limited. When a new external
// client exceeds the cap, the oldest external client is evicted.
type ConnectionLimiter struct {
	mu          sync.Mutex
	maxExternal int
	external    []string          // oldest first
	connections map[string]string // clientID -> remote address
}

// NewConnectionLimiter creates a limiter that allows up to maxExternal
// concurrent non-loopback connections.
func NewConnectionLimiter(maxExternal int) *ConnectionLimiter {
	return &ConnectionLimiter{
		maxExternal: maxExternal,
		connections: make(map[string]string),
	}
}

// TryAdd registers a new connection and returns the ID of the client it
// displaced, if any. Connections are always allowed.
func (cl *ConnectionLimiter) TryAdd(clientID, remoteAddr string) (allowed bool, evictedID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.connections[clientID]; exists {
		return true, ""
	}
	cl.connections[clientID] = remoteAddr
	if isLoopback(remoteAddr) {
		return true, ""
	}

	cl.external = append(cl.external, clientID)
	if len(cl.external) <= cl.maxExternal {
		return true, ""
	}
	evictedID = cl.external[0]
	cl.external = cl.external[1:]
	delete(cl.connections, evictedID)
	return true, evictedID
}

// Remove unregisters a connection when a client disconnects.
func (cl *ConnectionLimiter) Remove(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.connections[clientID]; !exists {
		return
	}
	delete(cl.connections, clientID)
	cl.external = lo.Without(cl.external, clientID)
}

// External returns the number of tracked external clients.
func (cl *ConnectionLimiter) External() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.external)
}

// isLoopback accepts bare addresses, host:port pairs and IPv4-mapped
// IPv6 forms.
func isLoopback(addr string) bool {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
