package dispatch

import (
	"context"
	"errors"
	"fmt"
)

// Fanout delivers events to all configured senders.
type Fanout struct {
	senders []Sender
}

// NewFanout builds a dispatcher that fans out events across senders.
func NewFanout(senders []Sender) *Fanout {
	cp := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{senders: cp}
}

// Send forwards the event to every registered sender.
// It returns the number of senders that successfully handled the event.
func (f *Fanout) Send(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.senders) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, s := range f.senders {
		if err := s.Send(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sender[%s]: %w", s.Type(), s.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active senders.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.senders)
}
