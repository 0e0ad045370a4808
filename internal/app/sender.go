package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/samvad-hq/samvad-news-sender/internal/config"
	"github.com/samvad-hq/samvad-news-sender/internal/domain"
	"github.com/samvad-hq/samvad-news-sender/internal/logger"
	"github.com/samvad-hq/samvad-news-sender/internal/picker"
	"github.com/samvad-hq/samvad-news-sender/internal/preview"
	"github.com/samvad-hq/samvad-news-sender/internal/storage"
	"github.com/samvad-hq/samvad-news-sender/pkg/dispatch"
	"github.com/samvad-hq/samvad-news-sender/pkg/feedapi"
)

// feedClient is the slice of the feed API client the sender depends on.
type feedClient interface {
	LastQueue(ctx context.Context) (*domain.QueueList, error)
	LastSendNews(ctx context.Context) (*domain.SendNewsList, error)
	DetailBySeed(ctx context.Context, seed string) (*domain.NewsDetail, error)
	DeleteQueued(ctx context.Context, channel string, idPost int64) error
}

// eventFanout delivers a picked event downstream.
type eventFanout interface {
	Send(ctx context.Context, evt dispatch.Event) (int, error)
	Size() int
}

// previewScraper extracts link-preview metadata for an event.
type previewScraper interface {
	FromOutlinks(ctx context.Context, outlinks []string) *domain.Preview
}

// Sender represents the dispatch runtime. Each pass it inspects the remote
// queue, picks one post, fans it out downstream, removes it from the queue,
// and records the seed locally.
type Sender struct {
	cfg     *config.Config
	feed    feedClient
	picker  picker.Picker
	scraper previewScraper
	fanout  eventFanout
	store   storage.Store
	log     logger.Logger
	rng     *rand.Rand
}

// NewSender builds a sender runtime from config files.
func NewSender(ctx context.Context, cfg *config.Config, log logger.Logger) (*Sender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	feed := feedapi.NewClientFromConfig(feedapi.Config{
		BaseURL: cfg.FeedBaseURL,
		Timeout: cfg.RequestTimeout,
	}, log)

	dispatcherReg, err := dispatch.LoadRegistry(cfg.DispatchersFile)
	if err != nil {
		return nil, fmt.Errorf("load dispatchers registry: %w", err)
	}
	enabled := dispatcherReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no dispatchers configured")
	}

	senders, err := dispatch.BuildAll(ctx, dispatch.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build dispatchers: %w", err)
	}
	fanout := dispatch.NewFanout(senders)
	senderSummaries := make([]map[string]string, 0, len(enabled))
	for _, sndCfg := range enabled {
		senderSummaries = append(senderSummaries, map[string]string{
			"id":   sndCfg.ID,
			"type": sndCfg.Type,
		})
	}
	log.InfoObj("dispatchers registry loaded", "dispatchers_meta", map[string]any{
		"count":       len(senderSummaries),
		"dispatchers": senderSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SeedTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanup,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"seed_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanup.Seconds()),
	})

	var chooser picker.Picker
	if cfg.PickerAPIKey != "" {
		chooser = picker.NewChatPicker(picker.ChatConfig{
			APIURL: cfg.PickerAPIURL,
			APIKey: cfg.PickerAPIKey,
			Model:  cfg.PickerModel,
		}, log)
		log.InfoObj("chat picker configured", "picker_model", cfg.PickerModel)
	} else {
		chooser = picker.NewFirstUnsentPicker()
		log.InfoObj("deterministic picker configured (no picker api key)", "picker_model", "first-unsent")
	}

	return &Sender{
		cfg:     cfg,
		feed:    feed,
		picker:  chooser,
		scraper: preview.NewScraper(nil),
		fanout:  fanout,
		store:   store,
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run executes dispatch passes until the context is cancelled, sleeping a
// random interval between passes.
func (s *Sender) Run(ctx context.Context) error {
	if s == nil || s.feed == nil {
		return fmt.Errorf("sender is not initialized")
	}
	defer s.closeStore()

	s.log.InfoObj("sender loop starting", "sender_state", map[string]any{
		"dispatchers_count": s.fanout.Size(),
		"interval_min":      s.cfg.SendIntervalMin.String(),
		"interval_max":      s.cfg.SendIntervalMax.String(),
	})

	for {
		if err := s.runOnce(ctx); err != nil {
			s.log.ErrorObj("dispatch pass failed", "error", err.Error())
		}

		interval := s.nextInterval()
		s.log.InfoObj("sleeping until next pass", "sleep_interval", interval.String())

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.InfoObj("sender loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-timer.C:
		}
	}
}

// nextInterval returns a random duration between the configured min and max.
func (s *Sender) nextInterval() time.Duration {
	min := s.cfg.SendIntervalMin
	max := s.cfg.SendIntervalMax
	if max <= min {
		return min
	}
	return min + time.Duration(s.rng.Int63n(int64(max-min)+1))
}

// runOnce performs one dispatch pass: fetch listings, pick a post, fan it
// out, delete it from the remote queue, and remember the seed.
func (s *Sender) runOnce(ctx context.Context) error {
	start := time.Now()

	queue, err := s.feed.LastQueue(ctx)
	if err != nil {
		return fmt.Errorf("fetch queue listing: %w", err)
	}
	sent, err := s.feed.LastSendNews(ctx)
	if err != nil {
		return fmt.Errorf("fetch sent listing: %w", err)
	}

	queueSeeds := queue.Seeds()
	sentSeeds := sent.Seeds()

	for attempt := 1; attempt <= s.cfg.MaxPickAttempts; attempt++ {
		seed, err := s.picker.Pick(ctx, queue, sent)
		if err != nil {
			s.log.WarnObj("pick attempt failed", "pick_error", map[string]any{
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}

		if !s.dispatchable(seed, queueSeeds, sentSeeds) {
			s.log.WarnObj("picked seed not dispatchable", "pick_rejected", map[string]any{
				"attempt": attempt,
				"seed":    seed,
			})
			continue
		}

		if err := s.dispatchSeed(ctx, seed); err != nil {
			s.log.ErrorObj("dispatch attempt failed", "dispatch_error", map[string]any{
				"attempt": attempt,
				"seed":    seed,
				"error":   err.Error(),
			})
			continue
		}

		s.log.InfoObj("dispatch pass completed", "pass_meta", map[string]any{
			"seed":       seed,
			"attempts":   attempt,
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	return fmt.Errorf("no post dispatched after %d attempts", s.cfg.MaxPickAttempts)
}

// dispatchable reports whether the picked seed is queued, unpublished, and
// not already dispatched by a previous pass.
func (s *Sender) dispatchable(seed string, queueSeeds, sentSeeds map[string]struct{}) bool {
	if seed == "" {
		return false
	}
	if _, queued := queueSeeds[seed]; !queued {
		return false
	}
	if _, published := sentSeeds[seed]; published {
		return false
	}
	seen, err := s.store.SeenSeed(seed)
	if err != nil {
		s.log.WarnObj("seed ledger lookup failed", "storage_error", err.Error())
		return true
	}
	return !seen
}

// dispatchSeed fetches the detail record, fans it out, deletes the post from
// the remote queue and marks the seed locally.
func (s *Sender) dispatchSeed(ctx context.Context, seed string) error {
	detail, err := s.feed.DetailBySeed(ctx, seed)
	if err != nil {
		return fmt.Errorf("fetch detail for seed %s: %w", seed, err)
	}

	evt := dispatch.NewEvent(detail, s.scraper.FromOutlinks(ctx, detail.Outlinks))

	delivered, err := s.fanout.Send(ctx, evt)
	if delivered == 0 {
		if err == nil {
			err = errors.New("no dispatchers configured")
		}
		return fmt.Errorf("no dispatcher accepted seed %s: %w", seed, err)
	}
	if err != nil {
		s.log.WarnObj("partial dispatch delivery", "dispatch_partial", map[string]any{
			"seed":      seed,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}

	if err := s.feed.DeleteQueued(ctx, detail.Channel, detail.IDPost); err != nil {
		// The post went out; a stale queue entry is recoverable on the next pass.
		s.log.WarnObj("remote queue delete failed", "queue_delete_error", map[string]any{
			"seed":  seed,
			"error": err.Error(),
		})
	}

	if err := s.store.MarkSeed(seed); err != nil {
		s.log.WarnObj("seed ledger mark failed", "storage_error", err.Error())
	}
	return nil
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (s *Sender) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
