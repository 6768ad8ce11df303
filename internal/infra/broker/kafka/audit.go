package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"churnportal/internal/app/policies"
)

// PredictionsTopic is the topic suffix for prediction audit events.
const PredictionsTopic = "churn.predictions"

// Publisher is the slice of Producer the audit publisher needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// AuditPublisher writes one JSON message per completed prediction, keyed by
// username so a user's events stay ordered within a partition.
type AuditPublisher struct {
	Producer Publisher
	Topic    string
}

func NewAuditPublisher(producer Publisher, topicPrefix string) *AuditPublisher {
	return &AuditPublisher{Producer: producer, Topic: topicPrefix + PredictionsTopic}
}

func (a *AuditPublisher) PublishPrediction(ctx context.Context, event policies.PredictionEvent) error {
	if a == nil || a.Producer == nil {
		return errors.New("kafka: producer not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := event.Username
	if key == "" {
		key = event.ID
	}
	headers := map[string]string{
		"event_id":   event.ID,
		"event_kind": string(event.Kind),
	}
	return a.Producer.Publish(ctx, a.Topic, key, payload, headers)
}

var _ policies.AuditPort = (*AuditPublisher)(nil)
