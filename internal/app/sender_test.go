package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-news-sender/internal/config"
	"github.com/samvad-hq/samvad-news-sender/internal/domain"
	"github.com/samvad-hq/samvad-news-sender/internal/logger"
	"github.com/samvad-hq/samvad-news-sender/internal/picker"
	"github.com/samvad-hq/samvad-news-sender/internal/storage"
	"github.com/samvad-hq/samvad-news-sender/pkg/dispatch"
)

type stubFeed struct {
	queue *domain.QueueList
	sent  *domain.SendNewsList

	details map[string]*domain.NewsDetail

	deletedChannel string
	deletedIDPost  int64
	deleteCalls    int
}

func (s *stubFeed) LastQueue(context.Context) (*domain.QueueList, error)       { return s.queue, nil }
func (s *stubFeed) LastSendNews(context.Context) (*domain.SendNewsList, error) { return s.sent, nil }

func (s *stubFeed) DetailBySeed(_ context.Context, seed string) (*domain.NewsDetail, error) {
	detail, ok := s.details[seed]
	if !ok {
		return nil, errors.New("unknown seed")
	}
	return detail, nil
}

func (s *stubFeed) DeleteQueued(_ context.Context, channel string, idPost int64) error {
	s.deletedChannel = channel
	s.deletedIDPost = idPost
	s.deleteCalls++
	return nil
}

type stubFanout struct {
	events []dispatch.Event
	err    error
	count  int
}

func (s *stubFanout) Send(_ context.Context, evt dispatch.Event) (int, error) {
	s.events = append(s.events, evt)
	return s.count, s.err
}

func (s *stubFanout) Size() int { return 1 }

type stubScraper struct{}

func (stubScraper) FromOutlinks(context.Context, []string) *domain.Preview { return nil }

func newTestSender(feed *stubFeed, fanout *stubFanout) *Sender {
	store, _ := storage.NewStore("none", "", storage.Options{})
	return &Sender{
		cfg:     &config.Config{MaxPickAttempts: 3},
		feed:    feed,
		picker:  picker.NewFirstUnsentPicker(),
		scraper: stubScraper{},
		fanout:  fanout,
		store:   store,
		log:     &logger.NopLogger{},
	}
}

func TestRunOnceDispatchesFirstUnsentPost(t *testing.T) {
	feed := &stubFeed{
		queue: &domain.QueueList{Queue: []domain.QueueItem{
			{Seed: "s1", Channel: "world", IDPost: 1},
			{Seed: "s2", Channel: "tech", IDPost: 2},
		}},
		sent: &domain.SendNewsList{Send: []domain.SendNewsItem{{Seed: "s1"}}},
		details: map[string]*domain.NewsDetail{
			"s2": {Seed: "s2", Channel: "tech", IDPost: 2, Content: "body"},
		},
	}
	fanout := &stubFanout{count: 1}

	sender := newTestSender(feed, fanout)
	if err := sender.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	if len(fanout.events) != 1 || fanout.events[0].Seed != "s2" {
		t.Fatalf("expected one event for s2, got %#v", fanout.events)
	}
	if feed.deleteCalls != 1 || feed.deletedChannel != "tech" || feed.deletedIDPost != 2 {
		t.Fatalf("expected delete for tech/2, got %s/%d (%d calls)",
			feed.deletedChannel, feed.deletedIDPost, feed.deleteCalls)
	}
}

func TestRunOnceFailsWhenNoSenderAcceptsEvent(t *testing.T) {
	feed := &stubFeed{
		queue: &domain.QueueList{Queue: []domain.QueueItem{
			{Seed: "s1", Channel: "world", IDPost: 1},
		}},
		sent: &domain.SendNewsList{},
		details: map[string]*domain.NewsDetail{
			"s1": {Seed: "s1", Channel: "world", IDPost: 1},
		},
	}
	fanout := &stubFanout{count: 0, err: errors.New("all sinks down")}

	sender := newTestSender(feed, fanout)
	if err := sender.runOnce(context.Background()); err == nil {
		t.Fatal("expected error when no dispatcher accepts the event")
	}
	if feed.deleteCalls != 0 {
		t.Fatalf("post must stay queued when dispatch fails, got %d delete calls", feed.deleteCalls)
	}
}

func TestDispatchSeedReportsEmptyFanout(t *testing.T) {
	feed := &stubFeed{
		details: map[string]*domain.NewsDetail{
			"s1": {Seed: "s1", Channel: "world", IDPost: 1},
		},
	}
	fanout := &stubFanout{count: 0, err: nil}

	sender := newTestSender(feed, fanout)
	err := sender.dispatchSeed(context.Background(), "s1")
	if err == nil {
		t.Fatal("expected error when fanout delivers to nothing")
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Fatalf("error wraps a nil cause: %v", err)
	}
}

func TestRunOnceFailsWhenEverythingPublished(t *testing.T) {
	feed := &stubFeed{
		queue: &domain.QueueList{Queue: []domain.QueueItem{{Seed: "s1"}}},
		sent:  &domain.SendNewsList{Send: []domain.SendNewsItem{{Seed: "s1"}}},
	}
	fanout := &stubFanout{count: 1}

	sender := newTestSender(feed, fanout)
	if err := sender.runOnce(context.Background()); err == nil {
		t.Fatal("expected error when every queued post is already published")
	}
	if len(fanout.events) != 0 {
		t.Fatalf("no events should be dispatched, got %#v", fanout.events)
	}
}
