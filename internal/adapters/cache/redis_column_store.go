package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/pool"
)

// RedisColumnStore keeps one hash per instance: field is the column key,
// value the encoded route.
type RedisColumnStore struct {
	Client redis.Cmdable
	Prefix string
}

func NewRedisColumnStore(client redis.Cmdable) *RedisColumnStore {
	return &RedisColumnStore{Client: client, Prefix: "columns:"}
}

func (s *RedisColumnStore) key(instance string) string { return s.Prefix + instance }

// SaveColumns stores the columns not yet present and returns how many were new.
func (s *RedisColumnStore) SaveColumns(ctx context.Context, instance string, cols []domain.Column) (_ int, err error) {
	defer obs.Time(ctx, "column.cache.redis.Save")(&err)

	if s.Client == nil {
		return 0, errors.New("redis column store: client is nil")
	}
	if instance == "" {
		return 0, errors.New("save columns: instance must not be empty")
	}
	if len(cols) == 0 {
		return 0, nil
	}

	pipe := s.Client.TxPipeline()
	cmds := make([]*redis.BoolCmd, 0, len(cols))
	for _, c := range cols {
		data, err := encodeRoute(c)
		if err != nil {
			return 0, fmt.Errorf("save columns: %w", err)
		}
		cmds = append(cmds, pipe.HSetNX(ctx, s.key(instance), pool.KeyString(c), data))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("save columns: exec pipeline: %w", err)
	}

	added := 0
	for _, cmd := range cmds {
		if cmd.Val() {
			added++
		}
	}
	return added, nil
}

// LoadColumns returns the stored columns in key order. Entries that no longer
// match the problem are skipped with a warning.
func (s *RedisColumnStore) LoadColumns(ctx context.Context, instance string, prob *domain.Problem) (_ []domain.Column, err error) {
	defer obs.Time(ctx, "column.cache.redis.Load")(&err)

	if s.Client == nil {
		return nil, errors.New("redis column store: client is nil")
	}

	entries, err := s.Client.HGetAll(ctx, s.key(instance)).Result()
	if err != nil {
		return nil, fmt.Errorf("load columns: hgetall %q: %w", s.key(instance), err)
	}

	fields := make([]string, 0, len(entries))
	for f := range entries {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	rows := domain.NewRowTable(prob)
	out := make([]domain.Column, 0, len(fields))
	for _, f := range fields {
		c, err := decodeRoute(prob, rows, []byte(entries[f]))
		if err != nil {
			log.WithFields(log.Fields{
				"run_id":   obs.RunID(ctx),
				"instance": instance,
				"key":      f,
			}).WithError(err).Warn("skipping stored column")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
