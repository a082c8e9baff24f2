package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// kafkaSegmentMessage is the wire shape published to the transcript-segments
// topic: one message per source, carrying its whole ordered segment list.
// A separate transcription service is assumed to own segment production;
// this source only consumes and decodes.
type kafkaSegmentMessage struct {
	SourceID string              `json:"source_id"`
	Segments []model.TimedSegment `json:"segments"`
}

// KafkaSegmentSourceConfig configures the reader side of the
// transcript-segments topic.
type KafkaSegmentSourceConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// DefaultKafkaSegmentSourceConfig applies sane 1KB/10MB read bounds.
func DefaultKafkaSegmentSourceConfig(brokers []string, groupID string) KafkaSegmentSourceConfig {
	return KafkaSegmentSourceConfig{
		Brokers:  brokers,
		Topic:    "veritas.transcript-segments",
		GroupID:  groupID,
		MinBytes: 1024,
		MaxBytes: 10 * 1024 * 1024,
	}
}

// KafkaSegmentSource reads one source's segment list off a Kafka topic
// published by an upstream transcription service. It is request/response
// rather than a run-forever consume loop: ListSegments reads messages
// until it finds the one matching sourceID or the context is cancelled.
type KafkaSegmentSource struct {
	reader *kafka.Reader
	log    zerolog.Logger
}

// NewKafkaSegmentSource builds a reader against cfg.
func NewKafkaSegmentSource(cfg KafkaSegmentSourceConfig, log zerolog.Logger) *KafkaSegmentSource {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Debug().Msgf(msg, args...)
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf(msg, args...)
		}),
	})
	return &KafkaSegmentSource{
		reader: reader,
		log:    log.With().Str("component", "kafka_segment_source").Logger(),
	}
}

// ListSegments reads messages from the topic until it finds one addressed
// to sourceID, decodes its segment list, sorts defensively by StartS (the
// wire format should already be ordered, but consumers never trust that),
// and returns it. It returns an error — never a partial result — when
// fetching a message fails, including on context cancellation. A message
// that is not valid JSON cannot be attributed to any source: it is logged,
// committed and skipped, and the read loop continues.
func (k *KafkaSegmentSource) ListSegments(ctx context.Context, sourceID string) ([]model.TimedSegment, error) {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch segment message for %s: %w", sourceID, err)
		}

		var decoded kafkaSegmentMessage
		if err := json.Unmarshal(msg.Value, &decoded); err != nil {
			k.log.Warn().Err(err).Str("source_id", sourceID).Msg("dropping malformed segment message")
			if commitErr := k.reader.CommitMessages(ctx, msg); commitErr != nil {
				k.log.Error().Err(commitErr).Msg("commit failed after malformed message")
			}
			continue
		}

		if commitErr := k.reader.CommitMessages(ctx, msg); commitErr != nil {
			k.log.Error().Err(commitErr).Msg("commit failed")
		}

		if decoded.SourceID != sourceID {
			continue
		}

		segments := make([]model.TimedSegment, len(decoded.Segments))
		copy(segments, decoded.Segments)
		sort.Slice(segments, func(i, j int) bool { return segments[i].StartS < segments[j].StartS })
		return segments, nil
	}
}

// Close releases the underlying Kafka reader.
func (k *KafkaSegmentSource) Close() error {
	return k.reader.Close()
}
