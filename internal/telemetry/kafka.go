package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes tick reports to a Kafka topic, keyed by run id so a
// run's reports land on one partition in order.
type KafkaPublisher struct {
	w   *kafka.Writer
	log *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	l := log.With("component", "kafka-publisher", "topic", topic)
	l.Info("kafka writer ready", "brokers", brokers)
	return &KafkaPublisher{w: w, log: l}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg TickReportMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("marshal failed", "err", err)
		return err
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.RunID),
		Value: b,
		Time:  msg.Timestamp,
	})
	if err != nil {
		p.log.Error("kafka write failed", "err", err, "tick", msg.Tick)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
