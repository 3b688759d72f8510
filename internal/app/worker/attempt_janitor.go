package worker

import (
	"context"
	"log"
	"time"

	"sales_system/internal/domain/repository"
	"sales_system/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// AttemptJanitor prunes login_attempts rows older than the retention
// horizon. Rows inside the lockout window are never touched: retention is
// configured well above the window, so pruning cannot change a lockout
// decision. A Redis lock keeps a single replica pruning per cycle.
type AttemptJanitor struct {
	rdb         *redis.Client
	attemptRepo repository.LoginAttemptRepository
	instanceID  string
}

func NewAttemptJanitor(rdb *redis.Client, attemptRepo repository.LoginAttemptRepository, instanceID string) *AttemptJanitor {
	return &AttemptJanitor{
		rdb:         rdb,
		attemptRepo: attemptRepo,
		instanceID:  instanceID,
	}
}

func (j *AttemptJanitor) Start(ctx context.Context) {
	log.Println("Attempt janitor started, interval:", config.AppConfig.JanitorInterval)
	ticker := time.NewTicker(config.AppConfig.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Attempt janitor stopping:", ctx.Err())
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *AttemptJanitor) runOnce(ctx context.Context) {
	lockTTL := time.Duration(config.AppConfig.JanitorLockTTLSeconds) * time.Second
	acquired, err := j.rdb.SetNX(ctx, config.AppConfig.JanitorLockKey, j.instanceID, lockTTL).Result()
	if err != nil {
		log.Printf("Attempt janitor: lock error: %v", err)
		return
	}
	if !acquired {
		return // another replica is pruning
	}
	defer j.releaseLock(ctx)

	cutoff := time.Now().Add(-config.AppConfig.AttemptRetention)
	deleted, err := j.attemptRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("Attempt janitor: prune error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Attempt janitor: pruned %d stale login attempts", deleted)
	}
}

func (j *AttemptJanitor) releaseLock(ctx context.Context) {
	// Only release a lock we still hold; otherwise let the TTL expire it.
	holder, err := j.rdb.Get(ctx, config.AppConfig.JanitorLockKey).Result()
	if err != nil || holder != j.instanceID {
		return
	}
	if err := j.rdb.Del(ctx, config.AppConfig.JanitorLockKey).Err(); err != nil {
		log.Printf("Attempt janitor: lock release error: %v", err)
	}
}
