package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient OpenRouter 聊天補全客戶端
// 暫時性失敗（網路錯誤、429、5xx）由 resty 以指數退避重試，
// 重試耗盡後以 PROVIDER_ERROR 上浮，不在此層吞掉
type OpenRouterClient struct {
	cfg    *config.Config
	client *resty.Client
}

// NewOpenRouterClient 創建 OpenRouter 客戶端
func NewOpenRouterClient(cfg *config.Config) *OpenRouterClient {
	client := resty.New().
		SetBaseURL(openRouterBaseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://nutrition-planner.local").
		SetHeader("X-Title", "Nutrition Planner").
		SetTimeout(cfg.OpenRouter.Timeout).
		SetRetryCount(cfg.OpenRouter.RetryAttempts).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(30 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &OpenRouterClient{
		cfg:    cfg,
		client: client,
	}
}

// Complete 發送單輪聊天補全請求
func (c *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": c.cfg.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.cfg.OpenRouter.MaxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", common.WrapError(common.ErrProviderError, fmt.Errorf("failed to send request to OpenRouter: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return "", common.WrapError(common.ErrProviderError, fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), resp.String()))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", common.WrapError(common.ErrProviderError, fmt.Errorf("failed to parse OpenRouter response: %w", err))
	}
	if len(result.Choices) == 0 {
		return "", common.WrapError(common.ErrProviderError, fmt.Errorf("no choices in OpenRouter response"))
	}
	return result.Choices[0].Message.Content, nil
}
