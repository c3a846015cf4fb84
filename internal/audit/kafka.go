package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher mirrors audit entries to a Kafka topic. Produce is fully
// asynchronous; delivery failures are logged, never surfaced to the
// request path. At-least-once delivery: consumers dedupe on entry id.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry Entry) {
	value, err := json.Marshal(entry)
	if err != nil {
		p.logger.Error("marshal audit entry", "entry_id", entry.ID, "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.Action),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publish audit entry", "entry_id", entry.ID, "error", err)
		}
	})
}

// Close flushes buffered records and shuts the client down.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
