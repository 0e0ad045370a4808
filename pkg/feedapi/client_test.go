package feedapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientDetailBySeedBuildsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all-news/detail-by-seed/seed123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Fatalf("expected no query, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"seed":"seed123","channel":"world","id_post":7,"content":"body","outlinks":["https://example.com/a"]}`))
	}))
	defer srv.Close()

	client := NewClientFromConfig(Config{BaseURL: srv.URL}, nil)
	detail, err := client.DetailBySeed(context.Background(), "seed123")
	if err != nil {
		t.Fatalf("DetailBySeed: %v", err)
	}
	if detail.Seed != "seed123" || detail.Channel != "world" || detail.IDPost != 7 {
		t.Fatalf("unexpected detail %#v", detail)
	}
	if len(detail.Outlinks) != 1 {
		t.Fatalf("expected 1 outlink, got %d", len(detail.Outlinks))
	}
}

func TestClientDetailBySeedNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown seed", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClientFromConfig(Config{BaseURL: srv.URL}, nil)
	detail, err := client.DetailBySeed(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if detail != nil {
		t.Fatalf("expected nil detail, got %#v", detail)
	}
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestClientDeleteQueuedBuildsPath(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Path != "/queue/delete-news/world/42" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClientFromConfig(Config{BaseURL: srv.URL}, nil)
	if err := client.DeleteQueued(context.Background(), "world", 42); err != nil {
		t.Fatalf("DeleteQueued: %v", err)
	}
	if !called {
		t.Fatal("server did not receive request")
	}
}

func TestClientLastQueueDecodesListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/queue/get-news/by/hours" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"queue":[{"seed":"s1","channel":"world","id_post":1},{"seed":"s2","channel":"tech","id_post":2}]}`))
	}))
	defer srv.Close()

	client := NewClientFromConfig(Config{BaseURL: srv.URL}, nil)
	queue, err := client.LastQueue(context.Background())
	if err != nil {
		t.Fatalf("LastQueue: %v", err)
	}
	if len(queue.Queue) != 2 {
		t.Fatalf("expected 2 items, got %d", len(queue.Queue))
	}
	seeds := queue.Seeds()
	if _, ok := seeds["s2"]; !ok {
		t.Fatalf("expected seed s2 in %v", seeds)
	}
}

func TestClientLastSendNewsDecodesListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send-news/get-news/by/hours" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"send":[{"seed":"s9","channel":"world","id_post":9}]}`))
	}))
	defer srv.Close()

	client := NewClientFromConfig(Config{BaseURL: srv.URL}, nil)
	sent, err := client.LastSendNews(context.Background())
	if err != nil {
		t.Fatalf("LastSendNews: %v", err)
	}
	if len(sent.Send) != 1 || sent.Send[0].Seed != "s9" {
		t.Fatalf("unexpected listing %#v", sent)
	}
}
