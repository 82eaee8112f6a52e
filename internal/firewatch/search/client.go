package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

const defaultBackoff = 60 * time.Second

// Client 推文搜索接口客户端（advanced_search）
type Client struct {
	Log         *zap.Logger
	HTTPClient  *http.Client
	BaseURL     string
	APIKey      string
	WithinHours int
	MaxResults  int

	// Backoff 429 后的固定退避时长，测试里可置 0
	Backoff time.Duration
}

type searchResponse struct {
	Tweets []model.Post `json:"tweets"`
}

// FetchQuery 拉取单个查询的最新推文。429 先退避再重试一次，仍失败就放弃该查询。
func (c *Client) FetchQuery(ctx context.Context, query string) ([]model.Post, error) {
	req, err := c.buildRequest(ctx, query)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := c.Backoff
		if backoff == 0 {
			backoff = defaultBackoff
		}
		c.Log.Warn("Rate limited by search API, backing off",
			zap.String("query", query),
			zap.Duration("backoff", backoff),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		// 只重试一次
		req, err = c.buildRequest(ctx, query)
		if err != nil {
			return nil, err
		}
		resp, err = c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.Log.Warn("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("search API invalid JSON: %w", err)
	}

	tweets := parsed.Tweets
	if c.MaxResults > 0 && len(tweets) > c.MaxResults {
		tweets = tweets[:c.MaxResults]
	}
	c.Log.Debug("Fetched query",
		zap.String("query", query),
		zap.Int("count", len(tweets)),
	)
	return tweets, nil
}

func (c *Client) buildRequest(ctx context.Context, query string) (*http.Request, error) {
	u, err := url.Parse(c.BaseURL + "/twitter/tweet/advanced_search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("query", fmt.Sprintf("%s within_time:%dh", query, c.WithinHours))
	q.Set("queryType", "Latest")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.APIKey)
	return req, nil
}
