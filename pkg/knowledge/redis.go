package knowledge

import (
	"context"
	"fmt"
	"strings"

	"agentcrew/pkg/config"
	"agentcrew/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// LoadRedis loads all documents stored under cfg.Prefix into memory.
// Each redis string key "<prefix><name>" becomes document "name".
// Like the directory loader, an empty keyspace is tolerated.
func LoadRedis(ctx context.Context, cfg config.KnowledgeRedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return loadFromClient(ctx, client, cfg.Prefix)
}

func loadFromClient(ctx context.Context, client *redis.Client, prefix string) (*Store, error) {
	docs := make(map[string]string)

	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge keys: %w", err)
		}
		for _, key := range keys {
			content, err := client.Get(ctx, key).Result()
			if err != nil {
				// Skip non-string values rather than failing the whole load
				logger.Warnf("skipping knowledge key %s: %v", key, err)
				continue
			}
			docs[strings.TrimPrefix(key, prefix)] = content
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(docs) == 0 {
		logger.Warnf("no knowledge documents under prefix %q, starting with empty store", prefix)
	} else {
		logger.Infof("knowledge store loaded from redis, documents: %d, prefix: %s", len(docs), prefix)
	}
	return NewStore(docs), nil
}
