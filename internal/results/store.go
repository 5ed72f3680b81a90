package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/tbraam/gamehub-server/internal/logger"
)

var log = logger.Get()

// Store writes each match to postgres, publishes a completion event for
// achievement evaluation, and indexes the match for the analytics
// dashboard. The postgres insert is the durable write; the other two are
// best-effort side channels and only logged on failure.
type Store struct {
	pool     *pgxpool.Pool
	producer *kafka.Writer
	search   *elasticsearch.TypedClient
	index    string
}

func NewStore(pool *pgxpool.Pool, producer *kafka.Writer, search *elasticsearch.TypedClient, index string) *Store {
	return &Store{
		pool:     pool,
		producer: producer,
		search:   search,
		index:    index,
	}
}

func (s *Store) Record(ctx context.Context, match Match) error {
	if match.PlayedAt.IsZero() {
		match.PlayedAt = time.Now()
	}

	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO matches (id, user_id, pin, mode, outcome, winner, score, details, played_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, match.UserID, match.Pin, match.Mode, match.Outcome, match.Winner, match.Score, match.Details, match.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}

	s.publish(ctx, id, match)
	s.indexMatch(ctx, id, match)
	return nil
}

func (s *Store) publish(ctx context.Context, id uuid.UUID, match Match) {
	if s.producer == nil {
		return
	}

	value, err := json.Marshal(match)
	if err != nil {
		log.Error().Err(err).Msg("error marshalling match event")
		return
	}

	err = s.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(match.UserID),
		Value: value,
	})
	if err != nil {
		log.Error().Err(err).Str("match_id", id.String()).Msg("error publishing match completed event")
	}
}

func (s *Store) indexMatch(ctx context.Context, id uuid.UUID, match Match) {
	if s.search == nil {
		return
	}

	_, err := s.search.Index(s.index).
		Id(id.String()).
		Request(match).
		Do(ctx)
	if err != nil {
		log.Error().Err(err).Str("match_id", id.String()).Msg("error indexing match")
	}
}
