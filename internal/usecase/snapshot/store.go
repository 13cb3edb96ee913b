package snapshot

import (
	"context"
	"encoding/json"

	snapshotv1 "github.com/muhammadchandra19/exchange-core/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-core/pkg/errors"
	"github.com/muhammadchandra19/exchange-core/pkg/logger"
	"github.com/muhammadchandra19/exchange-core/pkg/redis"
)

// Store persists book snapshots in Redis, keyed by trading pair.
type Store struct {
	pair        string
	logger      logger.Interface
	redisclient redis.Client
}

// NewSnapshotStore creates a snapshot store for one pair.
func NewSnapshotStore(redisclient redis.Client, pair string, log logger.Interface) *Store {
	return &Store{
		pair:        pair,
		redisclient: redisclient,
		logger:      log,
	}
}

// Store stores the snapshot in Redis.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.pair, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	s.logger.InfoContext(ctx, "Snapshot stored",
		logger.Field{Key: "pair", Value: s.pair},
		logger.Field{Key: "orderOffset", Value: snapshot.OrderOffset},
	)
	return nil
}

// Load loads the latest snapshot from Redis. A nil snapshot with nil error
// means no snapshot exists yet for the pair.
func (s *Store) Load(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, s.pair)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "No snapshot found", logger.Field{Key: "pair", Value: s.pair})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}

	return &snapshot, nil
}
