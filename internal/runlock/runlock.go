// Package runlock serializes scheduled runs across replicas with a Redis
// lease. Without Redis configured the lock degrades to a no-op, which is
// correct for a single instance.
package runlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/openhire/jobfeed/internal/config"
)

var Module = fx.Module("runlock",
	fx.Provide(NewRedisClient),
	fx.Provide(NewLocker),
)

// releaseScript deletes the key only when it still holds our token, so an
// expired lease reacquired by another replica is never released by us.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// NewRedisClient returns nil when no Redis address is configured.
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

type LockerParam struct {
	fx.In

	Client *redis.Client `optional:"true"`
	Log    *zap.Logger
	Config config.Config
}

// Locker hands out named single-holder leases.
type Locker struct {
	client *redis.Client
	log    *zap.Logger
	ttl    time.Duration
}

func NewLocker(p LockerParam) *Locker {
	return &Locker{
		client: p.Client,
		log:    p.Log.Named("runlock"),
		ttl:    p.Config.RunLockTTL,
	}
}

// Lease is one acquired lock. Release is safe to call once.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire tries to take the named lock. ok=false means another holder has
// it and the caller should skip this run.
func (l *Locker) Acquire(ctx context.Context, name string) (*Lease, bool, error) {
	if l.client == nil {
		return &Lease{}, true, nil
	}

	key := "jobfeed:lock:" + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		l.log.Debug("lock held elsewhere", zap.String("key", key))
		return nil, false, nil
	}
	return &Lease{locker: l, key: key, token: token}, true, nil
}

func (le *Lease) Release(ctx context.Context) {
	if le == nil || le.locker == nil || le.locker.client == nil {
		return
	}
	if err := le.locker.client.Eval(ctx, releaseScript, []string{le.key}, le.token).Err(); err != nil {
		le.locker.log.Warn("lock release failed", zap.String("key", le.key), zap.Error(err))
	}
}
