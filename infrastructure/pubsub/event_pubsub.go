package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"content-platform/domain/model"
	"content-platform/domain/repository"
	"content-platform/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NewPubSub builds a Pub/Sub client. An empty projectID disables the sink.
func NewPubSub(ctx context.Context, projectID, credentialsFile string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, nil
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return pubsub.NewClient(ctx, projectID, opts...)
}

type EventPubSub struct {
	PubSubClient *pubsub.Client
	topicName    string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewEventPubSub(pubSubClient *pubsub.Client, topicName string) repository.IEventSink {
	return &EventPubSub{
		PubSubClient: pubSubClient,
		topicName:    topicName,
	}
}

func (p *EventPubSub) Name() string { return "pubsub" }

func (p *EventPubSub) Publish(ctx context.Context, evt *model.OutboxEvent) error {
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"eventId":     evt.ID,
			"type":        evt.Type,
			"aggregateId": evt.AggregateID,
			"teamId":      evt.TeamID,
		},
	}

	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return err
	}

	logger.GetLogger().
		WithField("serverId", serverID).
		WithField("eventId", evt.ID).
		Info("Event published to Pub/Sub")
	return nil
}

// ensureTopic resolves the topic once, creating it if it doesn't exist.
func (p *EventPubSub) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}

	topic := p.PubSubClient.Topic(p.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		topic, err = p.PubSubClient.CreateTopic(ctx, p.topicName)
		if err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

// Stop flushes pending publishes.
func (p *EventPubSub) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
