// Package redis caches the latest summary and quiz JSON per document so a
// session reopen does not hit sqlite for content that was just generated.
// The service works identically with the cache disabled.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/study-agent/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func summaryKey(documentID int64) string {
	return fmt.Sprintf("summary:%d", documentID)
}

func quizKey(documentID int64) string {
	return fmt.Sprintf("quiz:%d", documentID)
}

// summaryEntry keeps the generation style with the text so a cache hit
// reports the style the summary was actually produced under.
type summaryEntry struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

func (c *Client) SetSummary(ctx context.Context, documentID int64, text, style string) error {
	payload, err := json.Marshal(summaryEntry{Text: text, Style: style})
	if err != nil {
		return fmt.Errorf("failed to encode summary cache entry: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(documentID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

func (c *Client) GetSummary(ctx context.Context, documentID int64) (string, string, bool, error) {
	raw, err := c.client.Get(ctx, summaryKey(documentID)).Result()
	if err == redis.Nil {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var entry summaryEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", "", false, fmt.Errorf("failed to decode summary cache entry: %w", err)
	}
	return entry.Text, entry.Style, true, nil
}

func (c *Client) SetQuiz(ctx context.Context, documentID int64, data string) error {
	if err := c.client.Set(ctx, quizKey(documentID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quiz: %w", err)
	}
	return nil
}

func (c *Client) GetQuiz(ctx context.Context, documentID int64) (string, bool, error) {
	data, err := c.client.Get(ctx, quizKey(documentID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read quiz cache: %w", err)
	}
	return data, true, nil
}

// Invalidate drops both cached entries for a document; called when its
// content is re-uploaded.
func (c *Client) Invalidate(ctx context.Context, documentID int64) error {
	if err := c.client.Del(ctx, summaryKey(documentID), quizKey(documentID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	logger.Debug("Cache invalidated", zap.Int64("document_id", documentID))
	return nil
}
