package dispatch

import (
	"time"

	"github.com/samvad-hq/samvad-news-sender/internal/domain"
)

// Event is the payload delivered downstream for a picked post.
type Event struct {
	Seed     string          `json:"seed"`
	Channel  string          `json:"channel"`
	IDPost   int64           `json:"id_post"`
	Content  string          `json:"content"`
	Outlinks []string        `json:"outlinks"`
	Preview  *domain.Preview `json:"preview,omitempty"`
	PickedAt time.Time       `json:"picked_at"`
}

// NewEvent constructs an Event from a news detail and its optional preview.
func NewEvent(detail *domain.NewsDetail, preview *domain.Preview) Event {
	return Event{
		Seed:     detail.Seed,
		Channel:  detail.Channel,
		IDPost:   detail.IDPost,
		Content:  detail.Content,
		Outlinks: detail.Outlinks,
		Preview:  preview,
		PickedAt: time.Now().UTC(),
	}
}
