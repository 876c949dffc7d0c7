package mpd_test

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/edumarques81/turntable/internal/infra/mpd"
)

func TestNewClient(t *testing.T) {
	client := mpd.NewClient("localhost", 6600, "")

	if client == nil {
		t.Error("NewClient should return a non-nil client")
	}
}

func TestClientConnectFailure(t *testing.T) {
	// Test connection to non-existent server
	client := mpd.NewClient("localhost", 16600, "") // Wrong port

	err := client.Connect()
	if err == nil {
		t.Error("Connect should fail for non-existent server")
		client.Close()
	}
}

func TestClientPingWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")

	err := client.Ping()
	if err == nil {
		t.Error("Ping should fail when not connected")
	}
}

func TestClientCommandsWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", 16600, "")

	tests := []struct {
		name string
		call func() error
	}{
		{"Status", func() error { _, err := client.Status(); return err }},
		{"Play", func() error { return client.Play(0) }},
		{"Pause", func() error { return client.Pause(true) }},
		{"Stop", func() error { return client.Stop() }},
		{"Seek", func() error { return client.Seek(30*time.Second) }},
		{"SetVolume", func() error { return client.SetVolume(50) }},
		{"Clear", func() error { return client.Clear() }},
		{"Add", func() error { return client.Add("https://rr1.googlevideo.com/a") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Errorf("%s should fail when not connected", tt.name)
			}
		})
	}
}

func TestOutputRates(t *testing.T) {
	out := mpd.NewOutput(mpd.NewClient("localhost", 16600, ""))

	if err := out.SetRate(1); err != nil {
		t.Errorf("rate 1 rejected: %v", err)
	}
	if err := out.SetRate(1.25); err == nil {
		t.Error("MPD output accepted a non-unit rate")
	}
}

// fakeServer accepts one connection, answers OK to every command and
// sends the commands it received on the returned channel.
func fakeServer(t *testing.T) (int, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	commands := make(chan string, 16)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte("OK MPD 0.23.5\n"))
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			commands <- strings.TrimSpace(line)
			conn.Write([]byte("OK\n"))
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, commands
}

func TestSeekKeepsSubSecondPrecision(t *testing.T) {
	port, commands := fakeServer(t)
	client := mpd.NewClient("127.0.0.1", port, "")
	defer client.Close()

	if err := client.Seek(12500 * time.Millisecond); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case cmd := <-commands:
			if !strings.HasPrefix(cmd, "seekcur ") {
				continue
			}
			arg := strings.Trim(strings.TrimPrefix(cmd, "seekcur "), `"`)
			secs, err := strconv.ParseFloat(arg, 64)
			if err != nil || secs != 12.5 {
				t.Errorf("seekcur argument = %q, want 12.5 seconds", arg)
			}
			return
		case <-timeout:
			t.Fatal("no seekcur command received")
		}
	}
}
