package health

import (
	"context"
	"fmt"
	"time"

	"synthd/core"

	"github.com/fox-one/msgpack"
	"github.com/go-redis/redis"
)

type healthStore struct {
	redis *redis.Client
	exp   time.Duration
}

// New new health store backed by redis. Snapshots expire after exp so the
// read surface never serves risk data the sentinel stopped refreshing.
func New(redis *redis.Client, exp time.Duration) core.HealthStore {
	return &healthStore{
		redis: redis,
		exp:   exp,
	}
}

func (s *healthStore) Save(ctx context.Context, snapshot *core.RiskSnapshot) error {
	raw, err := msgpack.Marshal(snapshot)
	if err != nil {
		return err
	}

	return s.redis.Set(s.key(snapshot.AccountID), raw, s.exp).Err()
}

func (s *healthStore) Find(ctx context.Context, account string) (*core.RiskSnapshot, error) {
	raw, err := s.redis.Get(s.key(account)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var snapshot core.RiskSnapshot
	if err := msgpack.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *healthStore) key(account string) string {
	return fmt.Sprintf("synthd:risk:%s", account)
}
