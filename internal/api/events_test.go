package api

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEventsHeadersAndInit(t *testing.T) {
	h := newTestHandler(t)
	if rr := putPolicy(t, h, testDoc); rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", rr.Code)
	}

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/policy/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.HasPrefix(line, "event: init") {
		t.Errorf("first line = %q, want init event", line)
	}
	data, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(data, `"etag"`) {
		t.Errorf("data line = %q, want etag payload", data)
	}
}

func TestEventsUpdateOnApply(t *testing.T) {
	h := newTestHandler(t)
	if rr := putPolicy(t, h, testDoc); rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", rr.Code)
	}

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/policy/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// Drain the init event, then push a new document and expect an update.
	waitForLine(t, lines, "event: init")
	if rr := putPolicy(t, h, `{"version": "1.1", "entries": []}`); rr.Code != http.StatusOK {
		t.Fatalf("second PUT status = %d", rr.Code)
	}
	waitForLine(t, lines, "event: update")
}

func waitForLine(t *testing.T, lines <-chan string, prefix string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before %q", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", prefix)
		}
	}
}
