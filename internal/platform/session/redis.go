package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sales_system/internal/common"
	"sales_system/internal/domain/model"
	"sales_system/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func Connect() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

// Store keeps authenticated sessions in Redis as JSON blobs. The TTL is a
// storage property; the auth core itself defines no expiry semantics.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Create(ctx context.Context, sess *model.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session.Store.Create: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session.Store.Create: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*model.Session, error) {
	payload, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("session.Store.Get: %w", err)
	}
	sess := &model.Session{}
	if err := json.Unmarshal(payload, sess); err != nil {
		return nil, fmt.Errorf("session.Store.Get: unmarshal: %w", err)
	}
	return sess, nil
}

func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session.Store.Destroy: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}
