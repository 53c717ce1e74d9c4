package kafkaclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWriter is the producing side, satisfied by *kafka.Writer.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer manages the Kafka consumer and its message loop.
type KafkaConsumer struct {
	reader KafkaReader
	log    zerolog.Logger
	// a channel to signal a graceful shutdown.
	doneChan chan struct{}
	// a wait group to ensure all goroutines have exited before the program terminates.
	wg sync.WaitGroup
	// a channel to hold the Kafka messages, which are then consumed by the Iterator.
	messageChan chan kafka.Message
}

// NewKafkaConsumer creates a new instance of KafkaConsumer.
func NewKafkaConsumer(topic, groupID, broker string, log zerolog.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Disable auto-commit to manually control offset committing.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader, log)
}

func newConsumer(reader KafkaReader, log zerolog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:      reader,
		log:         log,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}
}

// Messages returns the channel fed by StartConsuming. It is closed when the
// loop exits.
func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

// CommitOffset manually commits the offset of a message.
func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	kc.log.Debug().Str("topic", msg.Topic).Int("partition", msg.Partition).Int64("offset", msg.Offset).Msg("Committing offset")
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the Kafka message consumption loop in a separate goroutine.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		kc.log.Info().Msg("Starting Kafka consumer loop")

		for {
			select {
			case <-ctx.Done():
				kc.log.Info().Msg("Context canceled, stopping consumer loop")
				return
			case <-kc.doneChan:
				kc.log.Info().Msg("Shutdown signal received, stopping consumer loop")
				return
			default:
				msg, err := kc.reader.ReadMessage(ctx)
				if err != nil {
					if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
						return
					}
					kc.log.Error().Err(err).Msg("Error reading message")
					// Back off to prevent a tight error loop.
					select {
					case <-time.After(time.Second):
					case <-ctx.Done():
						return
					case <-kc.doneChan:
						return
					}
					continue
				}

				select {
				case kc.messageChan <- msg:
					kc.log.Debug().Str("topic", msg.Topic).Int("partition", msg.Partition).Int64("offset", msg.Offset).Msg("Message received")
				case <-ctx.Done():
					return
				case <-kc.doneChan:
					return
				}
			}
		}
	}()
}

// Stop gracefully shuts down the Kafka consumer.
func (kc *KafkaConsumer) Stop() {
	close(kc.doneChan)
	kc.wg.Wait()
	if err := kc.reader.Close(); err != nil {
		kc.log.Error().Err(err).Msg("Failed to close Kafka reader")
	}
	kc.log.Info().Msg("Kafka consumer stopped")
}

// Producer publishes keyed messages to a single topic.
type Producer struct {
	writer KafkaWriter
	log    zerolog.Logger
}

// NewProducer returns an asynchronous producer for topic. Delivery failures
// are logged, never returned to the caller.
func NewProducer(topic, broker string, log zerolog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("messages", len(msgs)).Msg("Failed to deliver messages")
			}
		},
	}
	return NewProducerWithWriter(w, log)
}

func NewProducerWithWriter(w KafkaWriter, log zerolog.Logger) *Producer {
	return &Producer{writer: w, log: log}
}

// Publish writes a single message.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
