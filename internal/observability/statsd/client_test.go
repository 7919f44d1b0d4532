package statsd

import (
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"
)

func TestSanitizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  versetype.api  ": "versetype.api",
		"..foo..":           "foo",
		".":                 "",
		"":                  "",
	}
	for input, want := range tests {
		if got := sanitizePrefix(input); got != want {
			t.Fatalf("sanitizePrefix(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" auth/operation ": "auth_operation",
		"sweeper..run":     "sweeper.run",
		"two  spaces":      "two__spaces",
		".edge.":           "edge",
	}
	for input, want := range tests {
		if got := normalizeMetricName(input); got != want {
			t.Fatalf("normalizeMetricName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{"env": "prod", " service ": " api "}
	local := map[string]string{"result": " success ", "": "ignored", "env": "stage"}

	want := "|#env:stage,result:success,service:api"
	if got := formatTags(global, local); got != want {
		t.Fatalf("formatTags mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatTags(nil, nil); got != "" {
		t.Fatalf("formatTags(nil, nil) = %q, want empty string", got)
	}
}

func TestClientWritesLines(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{prefix: "versetype", conn: clientConn, logger: slog.Default()}

	lines := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := peerConn.Read(buf)
		lines <- string(buf[:n])
	}()

	client.Timing("sweeper.run_duration", 1500*time.Microsecond, map[string]string{"result": "success"})

	select {
	case got := <-lines:
		if want := "versetype.sweeper.run_duration:1.5|ms|#result:success"; got != want {
			t.Fatalf("line = %q, want %q", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no metric written")
	}
}

func TestClientEnabledAndClose(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{conn: clientConn}
	if !client.Enabled() {
		t.Fatal("expected client.Enabled to report true with active connection")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client.Enabled to report false after Close")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close (second call) error: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	nilClient.Count("ignored", 1, nil)
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Enabled: true, Address: "   "})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client to stay disabled when address is empty")
	}
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	if err == nil || !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("expected statsd dial error, got %v", err)
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Count("sweeper.deleted", 3, map[string]string{"result": "success"})
	rec.Count("sweeper.deleted", 2, nil)
	rec.Gauge("sweeper.last_success_epoch", 42, nil)

	if got := rec.Sum("sweeper.deleted"); got != 5 {
		t.Fatalf("Sum = %d, want 5", got)
	}
	if got := len(rec.Gauges("sweeper.last_success_epoch")); got != 1 {
		t.Fatalf("gauges = %d, want 1", got)
	}
}
