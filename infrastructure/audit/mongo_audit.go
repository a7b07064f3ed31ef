package audit

import (
	"context"
	"time"

	"content-platform/domain/model"
	"content-platform/domain/repository"
	"content-platform/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "action_events"

// NewMongoDb connects and pings. An empty uri disables the audit sink.
func NewMongoDb(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, nil
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// ActionAudit appends every dispatched event to a MongoDB collection.
type ActionAudit struct {
	mongoDb  *mongo.Client
	database string
}

func NewActionAudit(db *mongo.Client, database string) repository.IEventSink {
	return &ActionAudit{mongoDb: db, database: database}
}

func (a *ActionAudit) Name() string { return "mongo-audit" }

func (a *ActionAudit) Publish(ctx context.Context, evt *model.OutboxEvent) error {
	doc := bson.D{
		{Key: "_id", Value: evt.ID},
		{Key: "type", Value: evt.Type},
		{Key: "aggregateId", Value: evt.AggregateID},
		{Key: "teamId", Value: evt.TeamID},
		{Key: "payload", Value: string(evt.Payload)},
		{Key: "createdAt", Value: evt.CreatedAt},
		{Key: "recordedAt", Value: time.Now().UTC()},
	}

	collection := a.mongoDb.Database(a.database).Collection(collectionName)
	_, err := collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		// A retried dispatch already wrote this event.
		return nil
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("eventId", evt.ID).Error("Error while writing audit event")
		return err
	}
	return nil
}
