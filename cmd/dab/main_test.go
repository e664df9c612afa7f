package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/vitalvas/mqttv5"
)

const maxTestPacketSize = 256 * 1024

// fakeDeviceAddr starts a JSON-RPC endpoint that answers every call with an
// empty result, so the panel implementation's compatibility probe accepts
// it and run() gets past device registration.
func fakeDeviceAddr(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	t.Cleanup(srv.Close)
	return srv.Listener.Addr().String()
}

// TestRunFailsWithInvalidConfig verifies run() surfaces a config load error.
func TestRunFailsWithInvalidConfig(t *testing.T) {
	original := os.Getenv("DAB_CONFIG")
	defer os.Setenv("DAB_CONFIG", original)
	os.Setenv("DAB_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "tcp://127.0.0.1:1", "tv-1", "127.0.0.1:1"); err == nil {
		t.Fatal("run() should fail when the config file doesn't exist")
	}
}

// TestRunFailsWithUnreachableBroker verifies run() surfaces a connect error
// rather than hanging when no broker is listening.
func TestRunFailsWithUnreachableBroker(t *testing.T) {
	original := os.Getenv("DAB_CONFIG")
	defer os.Setenv("DAB_CONFIG", original)
	os.Unsetenv("DAB_CONFIG")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "tcp://127.0.0.1:1", "tv-1", fakeDeviceAddr(t)); err == nil {
		t.Fatal("run() should fail when the broker is unreachable")
	}
}

// TestRunConnectsAndShutsDownOnSignal drives run() against a minimal fake
// broker and cancels ctx to exercise the graceful-shutdown path.
func TestRunConnectsAndShutsDownOnSignal(t *testing.T) {
	original := os.Getenv("DAB_CONFIG")
	defer os.Setenv("DAB_CONFIG", original)
	os.Unsetenv("DAB_CONFIG")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go serveOneFakeConnection(t, ln)

	deviceAddr := fakeDeviceAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, "tcp://"+ln.Addr().String(), "tv-1", deviceAddr) }()

	time.AfterFunc(200*time.Millisecond, cancel)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() never returned after context cancellation")
	}
}

func serveOneFakeConnection(t *testing.T, ln net.Listener) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	pkt, _, err := mqttv5.ReadPacket(conn, maxTestPacketSize)
	if err != nil {
		return
	}
	if _, ok := pkt.(*mqttv5.ConnectPacket); !ok {
		return
	}
	mqttv5.WritePacket(conn, &mqttv5.ConnackPacket{ReasonCode: mqttv5.ReasonSuccess}, maxTestPacketSize)

	pkt, _, err = mqttv5.ReadPacket(conn, maxTestPacketSize)
	if err != nil {
		return
	}
	sub, ok := pkt.(*mqttv5.SubscribePacket)
	if !ok {
		return
	}
	codes := make([]mqttv5.ReasonCode, len(sub.Subscriptions))
	for i := range sub.Subscriptions {
		codes[i] = mqttv5.ReasonSuccess
	}
	mqttv5.WritePacket(conn, &mqttv5.SubackPacket{PacketID: sub.PacketID, ReasonCodes: codes}, maxTestPacketSize)

	// Keep reading until the connection closes (the DISCONNECT on shutdown,
	// or simply the client hanging up).
	for {
		if _, _, err := mqttv5.ReadPacket(conn, maxTestPacketSize); err != nil {
			return
		}
	}
}
