package picker

import (
	"context"
	"fmt"

	"github.com/samvad-hq/samvad-news-sender/internal/domain"
)

// Picker chooses the seed of the next post to dispatch from the current
// queue, given the posts already published.
type Picker interface {
	Pick(ctx context.Context, queue *domain.QueueList, sent *domain.SendNewsList) (string, error)
}

// FirstUnsentPicker deterministically picks the oldest queued post whose
// seed has not been published yet. Used when no picker API is configured.
type FirstUnsentPicker struct{}

// NewFirstUnsentPicker returns the deterministic fallback picker.
func NewFirstUnsentPicker() *FirstUnsentPicker {
	return &FirstUnsentPicker{}
}

// Pick returns the first queue seed absent from the sent list.
func (p *FirstUnsentPicker) Pick(_ context.Context, queue *domain.QueueList, sent *domain.SendNewsList) (string, error) {
	if queue == nil || len(queue.Queue) == 0 {
		return "", fmt.Errorf("queue is empty")
	}

	sentSeeds := sent.Seeds()
	for _, item := range queue.Queue {
		if item.Seed == "" {
			continue
		}
		if _, published := sentSeeds[item.Seed]; !published {
			return item.Seed, nil
		}
	}
	return "", fmt.Errorf("every queued post has already been published")
}
