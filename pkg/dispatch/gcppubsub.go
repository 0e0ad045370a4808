package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// gcpPubSubSender implements the Sender interface for GCP Pub/Sub.
type gcpPubSubSender struct {
	id     string
	typ    string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

// newGCPPubSubSenderFromConfig adapts newGCPPubSubSender to the registry Builder shape.
func newGCPPubSubSenderFromConfig(ctx context.Context, cfg SenderConfig, log Logger) (Sender, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("dispatcher %q missing pubsub configuration", cfg.ID)
	}
	sender, err := newGCPPubSubSender(ctx, cfg.PubSub, log)
	if err != nil {
		return nil, err
	}
	sender.id = cfg.ID
	return sender, nil
}

// newGCPPubSubSender creates a Pub/Sub sender for the given project and topic.
func newGCPPubSubSender(ctx context.Context, cfg *PubSubSenderConfig, log Logger) (*gcpPubSubSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pubsub configuration is nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubSender{
		id:     cfg.Topic,
		typ:    TypePubSub,
		client: client,
		topic:  client.Topic(cfg.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (g *gcpPubSubSender) ID() string   { return g.id }
func (g *gcpPubSubSender) Type() string { return g.typ }

// Send publishes the event to the configured Pub/Sub topic and waits for the
// server acknowledgement.
func (g *gcpPubSubSender) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := g.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"seed": evt.Seed,
		},
	})

	if _, err := result.Get(ctx); err != nil {
		g.log.ErrorObj("pubsub sender publish failed", "sender_pubsub_error", map[string]any{
			"sender_id": g.id,
			"error":     err.Error(),
		})
		return fmt.Errorf("publish message to pubsub: %w", err)
	}
	g.log.DebugObj("pubsub sender delivered event", "sender_pubsub_delivery", map[string]any{
		"sender_id": g.id,
		"seed":      evt.Seed,
	})
	return nil
}
