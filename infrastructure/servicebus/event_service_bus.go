package servicebus

import (
	"context"
	"encoding/json"
	"fmt"

	"content-platform/domain/model"
	"content-platform/domain/repository"
	"content-platform/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus authenticates with the default Azure credential chain. An
// empty namespace disables the sink.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(fmt.Sprintf("%s.servicebus.windows.net", namespace), cred, nil)
}

type EventServiceBus struct {
	AzservicebusClient *azservicebus.Client
	queue              string
}

func NewEventServiceBus(azServiceBusClient *azservicebus.Client, queue string) repository.IEventSink {
	return &EventServiceBus{AzservicebusClient: azServiceBusClient, queue: queue}
}

func (s *EventServiceBus) Name() string { return "servicebus" }

func (s *EventServiceBus) Publish(ctx context.Context, evt *model.OutboxEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	sender, err := s.AzservicebusClient.NewSender(s.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		err := sender.Close(ctx)
		if err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	messageID := evt.ID
	contentType := "application/json"
	subject := evt.Type
	sbMessage := &azservicebus.Message{
		MessageID:   &messageID,
		ContentType: &contentType,
		Subject:     &subject,
		Body:        body,
		ApplicationProperties: map[string]interface{}{
			"teamId":      evt.TeamID,
			"aggregateId": evt.AggregateID,
		},
	}
	if err := sender.SendMessage(ctx, sbMessage, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
