package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher fans audit entries out to Kafka for downstream SIEM consumption.
// The store append is the mandatory audit path; Kafka delivery is best-effort
// and must never fail the business operation.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to Kafka and ensures the audit topic exists.
// Returns nil when no brokers are configured (publishing disabled).
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		// Topic may already exist; anything else surfaces on first produce.
		logger.Warn("audit topic creation skipped", "topic", topic, "error", err)
	}

	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// entryPayload is the JSON structure published to Kafka.
type entryPayload struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name,omitempty"`
	AccessType string `json:"access_type"`
	SourceAddr string `json:"source_addr,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Publish sends one entry, keyed by document ID so per-document ordering is
// preserved within a partition. Errors are logged, not returned.
func (p *Publisher) Publish(ctx context.Context, entry Entry) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(entryPayload{
		ID:         entry.ID.String(),
		DocumentID: entry.DocumentID.String(),
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		AccessType: entry.AccessType.String(),
		SourceAddr: entry.SourceAddr,
		UserAgent:  entry.UserAgent,
		OccurredAt: entry.OccurredAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal audit entry", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.DocumentID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("audit publish failed",
				"document_id", entry.DocumentID.String(),
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
