package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestNoopNotifierDiscardsEvents(t *testing.T) {
	if err := (NoopNotifier{}).Notify(context.Background(), Event{Kind: EventPublished}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

func TestSlackSinkPostsPayload(t *testing.T) {
	var (
		mu  sync.Mutex
		got slackPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSlackSink(srv.URL)
	defer sink.Close()

	if err := sink.Notify(context.Background(), Event{Kind: EventPublished, Artifact: "demo", Version: "1.0.0"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		text := got.Text
		mu.Unlock()
		if text != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if got.Text != "published demo 1.0.0" {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestSlackSinkWriteAfterCloseIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSlackSink(srv.URL)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sink.Notify(context.Background(), Event{Kind: EventSynced}); err == nil {
		t.Fatal("expected error writing to a closed sink")
	}
}
