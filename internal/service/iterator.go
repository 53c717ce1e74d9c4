// Package service turns a stream of Kafka messages into decoded values.
package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Iterator decodes each message from a MessageIterator and commits its offset
// once the value has been handed to the caller. Messages that fail to decode
// are logged, committed and skipped.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
	log         zerolog.Logger
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T], log zerolog.Logger) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
		log:         log,
	}
}

// Objects streams decoded values until the underlying message channel closes
// or ctx is canceled.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *Decoded[T] {
	out := make(chan *Decoded[T])
	go func() {
		defer close(out)

		messages := it.msgIterator.Messages()
		for {
			var msg kafka.Message
			select {
			case <-ctx.Done():
				return
			case m, ok := <-messages:
				if !ok {
					return
				}
				msg = m
			}

			data, err := it.decode(msg.Value)
			if err != nil {
				it.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("Skipping undecodable message")
				it.commit(ctx, msg)
				continue
			}

			select {
			case out <- &Decoded[T]{Data: data, Message: msg}:
			case <-ctx.Done():
				return
			}
			it.commit(ctx, msg)
		}
	}()
	return out
}

func (it *Iterator[T]) commit(ctx context.Context, msg kafka.Message) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		it.log.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit offset")
	}
}
