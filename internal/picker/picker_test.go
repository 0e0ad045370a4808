package picker

import (
	"context"
	"testing"

	"github.com/samvad-hq/samvad-news-sender/internal/domain"
)

func TestFirstUnsentPickerSkipsPublishedSeeds(t *testing.T) {
	queue := &domain.QueueList{Queue: []domain.QueueItem{
		{Seed: "s1"},
		{Seed: "s2"},
		{Seed: "s3"},
	}}
	sent := &domain.SendNewsList{Send: []domain.SendNewsItem{
		{Seed: "s1"},
	}}

	seed, err := NewFirstUnsentPicker().Pick(context.Background(), queue, sent)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if seed != "s2" {
		t.Fatalf("expected s2, got %s", seed)
	}
}

func TestFirstUnsentPickerEmptyQueue(t *testing.T) {
	_, err := NewFirstUnsentPicker().Pick(context.Background(), &domain.QueueList{}, nil)
	if err == nil {
		t.Fatal("expected error for empty queue")
	}
}

func TestFirstUnsentPickerAllPublished(t *testing.T) {
	queue := &domain.QueueList{Queue: []domain.QueueItem{{Seed: "s1"}}}
	sent := &domain.SendNewsList{Send: []domain.SendNewsItem{{Seed: "s1"}}}

	_, err := NewFirstUnsentPicker().Pick(context.Background(), queue, sent)
	if err == nil {
		t.Fatal("expected error when every seed is published")
	}
}

func TestParseSeedToleratesCodeFences(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "plain", content: `{"seed":"s1"}`, want: "s1"},
		{name: "fenced", content: "```json\n{\"seed\":\"s2\"}\n```", want: "s2"},
		{name: "bare fence", content: "```\n{\"seed\":\"s3\"}\n```", want: "s3"},
		{name: "empty seed", content: `{"seed":""}`, wantErr: true},
		{name: "not json", content: "no idea", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSeed(tc.content)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSeed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
