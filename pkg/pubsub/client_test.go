package pubsub

import (
	"context"
	"testing"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project string
		name    string
		want    string
	}{
		{"bizzy-prod", "lead-events", "projects/bizzy-prod/topics/lead-events"},
		{"bizzy-prod", " lead-events ", "projects/bizzy-prod/topics/lead-events"},
		{"", "projects/other/topics/lead-events", "projects/other/topics/lead-events"},
		{"", "lead-events", ""},
		{"bizzy-prod", "", ""},
	}
	for _, tc := range cases {
		if got := topicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(context.Background(), config.PubSubConfig{LeadEventsTopic: "lead-events"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(context.Background(), config.PubSubConfig{ProjectID: "bizzy"}, nil); err != errTopicRequired {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("lead-events") != nil {
		t.Fatal("expected nil publisher")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
