package domain

// Domain contains wire models shared by the feed API client and dispatchers.

// QueueItem is a post waiting in the remote queue, not yet published.
type QueueItem struct {
	Seed    string `json:"seed" validate:"required"`
	Channel string `json:"channel"`
	IDPost  int64  `json:"id_post"`
	Title   string `json:"title"`
}

// QueueList is the feed API response for the recent queue listing.
type QueueList struct {
	Queue []QueueItem `json:"queue" validate:"dive"`
}

// SendNewsItem is a post that has already been published to a channel.
type SendNewsItem struct {
	Seed    string `json:"seed" validate:"required"`
	Channel string `json:"channel"`
	IDPost  int64  `json:"id_post"`
}

// SendNewsList is the feed API response for the recent published listing.
type SendNewsList struct {
	Send []SendNewsItem `json:"send" validate:"dive"`
}

// NewsDetail is the full record stored for a seed.
type NewsDetail struct {
	Seed     string   `json:"seed" validate:"required"`
	Channel  string   `json:"channel" validate:"required"`
	IDPost   int64    `json:"id_post"`
	Content  string   `json:"content"`
	Outlinks []string `json:"outlinks"`
}

// Preview carries link metadata scraped from an article outlink.
type Preview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Seeds returns the set of seeds currently queued.
func (l *QueueList) Seeds() map[string]struct{} {
	if l == nil {
		return nil
	}
	out := make(map[string]struct{}, len(l.Queue))
	for _, item := range l.Queue {
		out[item.Seed] = struct{}{}
	}
	return out
}

// Seeds returns the set of seeds already published.
func (l *SendNewsList) Seeds() map[string]struct{} {
	if l == nil {
		return nil
	}
	out := make(map[string]struct{}, len(l.Send))
	for _, item := range l.Send {
		out[item.Seed] = struct{}{}
	}
	return out
}
