package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/util"
	"strings"
	"time"
)

// Insights AI 生成的解读，只用于展示，不参与任何计算分支
type Insights map[string]interface{}

// Recommendations 取出 recommendations 字段中的字符串
func (i Insights) Recommendations() []string {
	raw, ok := i["recommendations"].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

type InsightKind string

const (
	InsightDaily  InsightKind = "daily"
	InsightPeriod InsightKind = "period"
	InsightGoals  InsightKind = "goals"
)

// InsightGenerator 把结构化分析数据交给外部模型生成文字解读
type InsightGenerator interface {
	Generate(ctx context.Context, kind InsightKind, payload interface{}) (Insights, error)
}

// NoopInsightGenerator 关闭 AI 解读时使用
type NoopInsightGenerator struct{}

func (NoopInsightGenerator) Generate(context.Context, InsightKind, interface{}) (Insights, error) {
	return Insights{}, nil
}

type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIService{config: cfg, client: &http.Client{Timeout: timeout}}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var insightPrompts = map[InsightKind]string{
	InsightDaily:  "Summarize this user's nutrition for the day and suggest improvements.",
	InsightPeriod: "Describe the nutrition trends over this period, highlight recurring deficiencies and suggest improvements.",
	InsightGoals:  "Assess the progress on these goals, comment on pace and likelihood of completion and suggest next steps.",
}

const insightSystemPrompt = "You are a nutrition coach. Reply with a JSON object containing a \"summary\" string and a \"recommendations\" array of short strings. Do not include any other text."

// Generate 实现 InsightGenerator
func (s *AIService) Generate(ctx context.Context, kind InsightKind, payload interface{}) (Insights, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("%s\n\nData:\n%s", insightPrompts[kind], data)
	reply, err := s.Chat(ctx, insightSystemPrompt, prompt)
	if err != nil {
		if errors.Is(err, util.ErrInsightUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", util.ErrInsightUnavailable, err)
	}

	return parseInsights(reply), nil
}

// parseInsights 模型没有按要求返回 JSON 时，把原文作为 summary
func parseInsights(reply string) Insights {
	trimmed := strings.TrimSpace(reply)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var insights Insights
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &insights); err == nil && insights != nil {
		return insights
	}
	return Insights{"summary": strings.TrimSpace(reply)}
}

func (s *AIService) Chat(ctx context.Context, system, prompt string) (string, error) {
	if s.config.BaseURL == "" {
		return "", util.ErrInsightUnavailable
	}

	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.config.BaseURL, "/")+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", err
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("AI API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("AI API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}
