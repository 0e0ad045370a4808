package dispatch

import "context"

// Sender delivers a picked news event to a downstream sink (SQS, SNS,
// Pub/Sub, HTTP, etc).
type Sender interface {
	ID() string
	Type() string
	Send(ctx context.Context, evt Event) error
}
