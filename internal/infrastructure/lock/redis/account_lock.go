package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
)

const (
	defaultTTL          = 30 * time.Minute
	defaultPollInterval = 500 * time.Millisecond
	defaultKeyPrefix    = "bulk_import:account_lock:"
	releaseTimeout      = 5 * time.Second
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`

const refreshScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`

type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd
}

type Config struct {
	TTL          time.Duration
	PollInterval time.Duration
	KeyPrefix    string
	Logger       *logrus.Entry
}

// AccountLocker serializes executions per corporate account across
// processes. The holder's token guards release and TTL refresh.
type AccountLocker struct {
	client lockClient
	cfg    Config
	logger *logrus.Entry
}

func NewAccountLocker(client lockClient, cfg Config) *AccountLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &AccountLocker{
		client: client,
		cfg:    cfg,
		logger: logger.WithField("component", "account_lock"),
	}
}

// Acquire blocks until the account lock is held or ctx is done.
func (l *AccountLocker) Acquire(ctx context.Context, accountID int64) (func(), error) {
	key := fmt.Sprintf("%s%d", l.cfg.KeyPrefix, accountID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrLockNotAcquired, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", domain.ErrLockNotAcquired, ctx.Err())
		case <-timer.C:
		}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.refreshLoop(key, token, stop)
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(stop)
			wg.Wait()

			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
				l.logger.WithError(err).WithField("account_id", accountID).Warn("release account lock failed")
			}
		})
	}
	return release, nil
}

func (l *AccountLocker) refreshLoop(key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.cfg.TTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			err := l.client.Eval(ctx, refreshScript, []string{key}, token, l.cfg.TTL.Milliseconds()).Err()
			cancel()
			if err != nil {
				l.logger.WithError(err).WithField("lock_key", key).Warn("refresh account lock failed")
			}
		}
	}
}
