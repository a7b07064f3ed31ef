package audit_test

import (
	"context"
	"testing"

	"content-platform/infrastructure/audit"

	"github.com/stretchr/testify/assert"
)

func TestNewActionAudit(t *testing.T) {
	sink := audit.NewActionAudit(nil, "content_platform")
	assert.NotNil(t, sink)
	assert.Equal(t, "mongo-audit", sink.Name())
}

func TestNewMongoDb_EmptyURI(t *testing.T) {
	client, err := audit.NewMongoDb(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, client)
}
