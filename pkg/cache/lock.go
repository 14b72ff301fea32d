package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/campus-registrar-api/pkg/config"
)

const (
	lockPrefix  = "campus-registrar:lock:"
	dialTimeout = 3 * time.Second
	releaseWait = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived mutual exclusion across replicas.
type Locker struct {
	client redis.Cmdable
	close  func() error
}

// NewLocker constructs a Locker over an existing client. Close is a no-op; the caller owns the client.
func NewLocker(client redis.Cmdable) *Locker {
	return &Locker{client: client, close: func() error { return nil }}
}

// Connect dials Redis for the sweep lock and fails when the server does not answer a PING within the dial timeout.
func Connect(ctx context.Context, cfg config.RedisConfig) (*Locker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
		MaxRetries:  1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}
	return &Locker{client: client, close: client.Close}, nil
}

// Close releases the connection opened by Connect.
func (l *Locker) Close() error {
	return l.close()
}

// TryLock acquires name for ttl. It returns ok=false without error when another holder owns it.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	key := lockPrefix + name
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !acquired {
		return func() {}, false, nil
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseWait)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, true, nil
}
