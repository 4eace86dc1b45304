package cache

import (
	"bytes"
	"testing"
	"time"

	"caravanshare/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisReleaseLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Nop()
	log.SetOutput(&buf)

	// Nothing listens on port 1, so the unlock script cannot run.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	r := &RedisCache{
		client: client,
		config: &RedisConfig{WriteTimeout: 100 * time.Millisecond},
		logger: log,
	}

	r.release(lockKeyPrefix+"caravan:abc", "token")

	assert.Contains(t, buf.String(), "Failed to release lock")
	assert.Contains(t, buf.String(), "lock:caravan:abc")
}
