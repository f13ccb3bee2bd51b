package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/config"
)

func TestPushPublishesToTopic(t *testing.T) {
	var gotPath, gotTitle, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("X-Title")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer srv.Close()

	n := New(config.NotifyConfig{
		Enabled:   true,
		ServerURL: srv.URL,
		Topic:     "builds",
		Title:     "Claude Code",
	})
	if err := n.Push(context.Background(), "session finished"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if gotPath != "/builds" {
		t.Errorf("path = %s, want /builds", gotPath)
	}
	if gotTitle != "Claude Code" {
		t.Errorf("X-Title = %s", gotTitle)
	}
	if gotBody != "session finished" {
		t.Errorf("body = %s", gotBody)
	}
}

func TestPushDisabledIsNoop(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	n := New(config.NotifyConfig{Enabled: false, ServerURL: srv.URL, Topic: "builds"})
	if err := n.Push(context.Background(), "x"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if hits != 0 {
		t.Errorf("disabled notifier made %d requests", hits)
	}
}

func TestPushEmptyTopicIsNoop(t *testing.T) {
	n := New(config.NotifyConfig{Enabled: true, ServerURL: "http://127.0.0.1:1", Topic: ""})
	if err := n.Push(context.Background(), "x"); err != nil {
		t.Fatalf("Push with empty topic should be a no-op: %v", err)
	}
}

func TestPushServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	n := New(config.NotifyConfig{Enabled: true, ServerURL: srv.URL, Topic: "builds"})
	if err := n.Push(context.Background(), "x"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestPlaySoundDisabledIsNoop(t *testing.T) {
	n := New(config.NotifyConfig{SoundEnabled: false, AudioFile: "complete.wav"})
	if err := n.PlaySound(context.Background()); err != nil {
		t.Fatalf("disabled sound should be a no-op: %v", err)
	}
}

func TestSendJoinsFailures(t *testing.T) {
	// Unreachable server, push enabled: Send must surface the failure.
	n := New(config.NotifyConfig{Enabled: true, ServerURL: "http://127.0.0.1:1", Topic: "t"})
	if err := n.Send(context.Background(), "x"); err == nil {
		t.Fatal("expected error from unreachable server")
	}
}
