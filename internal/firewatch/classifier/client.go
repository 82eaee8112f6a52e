package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

const (
	incidentTextCap = 4000
	scoreTextCap    = 2000
)

var scorePattern = regexp.MustCompile(`\b(10|[0-9])\b`)

// Oracle 文本分类黑盒。两个能力互相独立、无状态，
// 延迟不定、偶发失败，调用方必须能带着失败继续跑。
type Oracle interface {
	// ClassifyIncident 二分判定 + 模型原话。失败返回 Indeterminate。
	ClassifyIncident(ctx context.Context, text, url string) (model.Verdict, string)
	// ScoreRelevance 0-10 相关度。失败返回 Unavailable，绝不推翻已有正例。
	ScoreRelevance(ctx context.Context, text string) model.Score
}

// Client chat-completions 风格的分类客户端。
// 显式构造、显式注入，不走进程级全局句柄。自身不重试。
type Client struct {
	Log        *zap.Logger
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const incidentSystemPrompt = "You are an AI tasked with evaluating tweets to determine if they describe fire damages or destruction in the United States. Be inclusive: If the tweet is plausibly about fire damages or destruction in the USA, mark as 'yes'."

const scoreSystemPrompt = "You are an AI that rates the fire-relatedness of tweets about fire damages or destruction in the USA. Respond with a single integer from 0 to 10."

// ClassifyIncident 刻意偏召回：模糊但说得通的火情按正例算
func (c *Client) ClassifyIncident(ctx context.Context, text, url string) (model.Verdict, string) {
	prompt := fmt.Sprintf(
		"You are given the content of a tweet. Determine if it describes a fire incident in the United States that likely caused damage to physical structures (such as homes, apartments, offices, commercial buildings, factories, or infrastructure). "+
			"The fire may have resulted in structural damage or destruction, due to causes like electrical faults, negligence, accidents, natural disasters (e.g., wildfires), or arson. "+
			"Be inclusive: If the tweet suggests a fire incident with possible or likely damage to structures, even if not 100%% explicit, respond with 'yes'. "+
			"Respond with 'yes' if the tweet is about a fire incident in the USA that could have caused damage to physical structures. Otherwise, respond with 'no'.\n\n"+
			"Tweet content: %s\nURL: %s\n"+
			"Only use the provided content for your evaluation. Do not infer or assume details not present in the text, but err on the side of inclusion if the fire incident is plausible.",
		truncate(text, incidentTextCap), url,
	)

	answer, err := c.complete(ctx, incidentSystemPrompt, prompt)
	if err != nil {
		c.Log.Warn("Incident classification failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return model.VerdictIndeterminate, ""
	}

	answer = strings.TrimSpace(answer)
	lower := strings.ToLower(answer)
	switch {
	case strings.HasPrefix(lower, "yes"):
		return model.VerdictPositive, answer
	case strings.HasPrefix(lower, "no"):
		return model.VerdictNegative, answer
	default:
		c.Log.Warn("Unparsable incident verdict",
			zap.String("url", url),
			zap.String("answer", answer),
		)
		return model.VerdictIndeterminate, answer
	}
}

// ScoreRelevance 回复里第一个独立的 0-9 或 10 即为评分
func (c *Client) ScoreRelevance(ctx context.Context, text string) model.Score {
	prompt := fmt.Sprintf(
		"On a scale of 0 to 10, how strongly is the following tweet related to fire damages or destruction in the United States? "+
			"A score of 0 means not related at all, 10 means it is definitely about fire damages or destruction in the USA. "+
			"Only use the tweet content for your evaluation.\n\n"+
			"Tweet content: %s",
		truncate(text, scoreTextCap),
	)

	answer, err := c.complete(ctx, scoreSystemPrompt, prompt)
	if err != nil {
		c.Log.Warn("Relevance scoring failed", zap.Error(err))
		return model.ScoreUnavailable()
	}

	match := scorePattern.FindString(answer)
	if match == "" {
		c.Log.Warn("Unparsable relevance score", zap.String("answer", answer))
		return model.ScoreUnavailable()
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return model.ScoreUnavailable()
	}
	return model.ScoreOf(v)
}

// complete 单次 chat-completions 调用，temperature 固定 0 保证可复现
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("classifier: API key not configured")
	}

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.Log.Warn("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("classifier: invalid JSON: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("classifier: empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// truncate 按字符截断，别把多字节字符切半
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
