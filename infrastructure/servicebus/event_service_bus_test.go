package servicebus_test

import (
	"context"
	"testing"

	"content-platform/infrastructure/servicebus"

	"github.com/stretchr/testify/assert"
)

func TestNewEventServiceBus(t *testing.T) {
	sink := servicebus.NewEventServiceBus(nil, "content-approved")
	assert.NotNil(t, sink)
	assert.Equal(t, "servicebus", sink.Name())
}

func TestNewServiceBus_NoNamespace(t *testing.T) {
	client, err := servicebus.NewServiceBus(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, client)
}
