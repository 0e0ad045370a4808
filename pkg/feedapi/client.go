package feedapi

import (
	"context"
	"strconv"

	"github.com/samvad-hq/samvad-news-sender/internal/domain"
	"github.com/samvad-hq/samvad-news-sender/internal/logger"
)

// Endpoint templates consumed by the client, relative to the feed base URL.
const (
	endpointLastSendNews = "send-news/get-news/by/hours"
	endpointLastQueue    = "queue/get-news/by/hours"
	endpointDetailBySeed = "all-news/detail-by-seed/{seed}"
	endpointDeleteQueued = "queue/delete-news/{channel}/{id_post}"
)

// Client binds the fixed set of feed API resources onto Handler verbs. It
// composes a Handler rather than embedding it, so the generic verb surface
// stays off the domain type; callers needing raw Results can reach the
// Handler directly.
type Client struct {
	handler *Handler
}

// NewClient wraps an existing Handler.
func NewClient(h *Handler) *Client {
	return &Client{handler: h}
}

// NewClientFromConfig builds a Client with its own Handler.
func NewClientFromConfig(cfg Config, log logger.Logger) *Client {
	return NewClient(NewHandler(cfg, log))
}

// Handler exposes the underlying verb layer for callers that need access to
// Result.Status or header/timeout mutation.
func (c *Client) Handler() *Handler { return c.handler }

// detailPath fills the {seed} placeholder of the detail endpoint.
type detailPath struct {
	seed string
}

func (p detailPath) PathValues() map[string]string {
	return map[string]string{"seed": p.seed}
}

// deleteQueuePath fills the {channel} and {id_post} placeholders of the
// queue deletion endpoint.
type deleteQueuePath struct {
	channel string
	idPost  int64
}

func (p deleteQueuePath) PathValues() map[string]string {
	return map[string]string{
		"channel": p.channel,
		"id_post": strconv.FormatInt(p.idPost, 10),
	}
}

// LastSendNews fetches the recently published posts.
func (c *Client) LastSendNews(ctx context.Context) (*domain.SendNewsList, error) {
	out := &domain.SendNewsList{}
	if _, err := c.handler.Get(ctx, endpointLastSendNews, WithResponse(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// LastQueue fetches the recently queued posts.
func (c *Client) LastQueue(ctx context.Context) (*domain.QueueList, error) {
	out := &domain.QueueList{}
	if _, err := c.handler.Get(ctx, endpointLastQueue, WithResponse(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// DetailBySeed fetches the full record for a seed.
func (c *Client) DetailBySeed(ctx context.Context, seed string) (*domain.NewsDetail, error) {
	out := &domain.NewsDetail{}
	_, err := c.handler.Get(ctx, endpointDetailBySeed,
		WithPathParams(detailPath{seed: seed}),
		WithResponse(out),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteQueued removes a post from the remote queue by channel and post id.
func (c *Client) DeleteQueued(ctx context.Context, channel string, idPost int64) error {
	_, err := c.handler.Delete(ctx, endpointDeleteQueued,
		WithPathParams(deleteQueuePath{channel: channel, idPost: idPost}),
	)
	return err
}
