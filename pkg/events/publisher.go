package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, env Envelope) error
}

type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher writes synchronously; the topic is set per message.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafka: marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, Envelope) error { return nil }

type Published struct {
	Topic    string
	Key      string
	Envelope Envelope
}

// Recorder keeps published envelopes in memory. Err, when set, is returned
// from every Publish after recording.
type Recorder struct {
	mu   sync.Mutex
	msgs []Published
	Err  error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Published{Topic: topic, Key: key, Envelope: env})
	return r.Err
}

func (r *Recorder) Messages() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Envelope.EventType)
	}
	return out
}
