package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"leadgen_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// maxTaskBatch caps the lead IDs carried by one task.
const maxTaskBatch = 50

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueEnrichLeads schedules enrichment, split into tasks of at most maxTaskBatch leads.
func (c *Client) EnqueueEnrichLeads(ctx context.Context, leadIDs []uuid.UUID) error {
	return c.enqueueBatches(ctx, leadIDs, NewEnrichLeadsTask)
}

// EnqueueScoreLeads schedules rescoring, split the same way.
func (c *Client) EnqueueScoreLeads(ctx context.Context, leadIDs []uuid.UUID) error {
	return c.enqueueBatches(ctx, leadIDs, NewScoreLeadsTask)
}

func (c *Client) enqueueBatches(ctx context.Context, leadIDs []uuid.UUID, build func([]uuid.UUID) (*asynq.Task, error)) error {
	if c == nil || c.client == nil {
		return nil
	}

	for _, batch := range chunkIDs(leadIDs, maxTaskBatch) {
		task, err := build(batch)
		if err != nil {
			return err
		}
		if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(3)); err != nil {
			return err
		}
	}
	return nil
}

func chunkIDs(ids []uuid.UUID, size int) [][]uuid.UUID {
	chunks := make([][]uuid.UUID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
