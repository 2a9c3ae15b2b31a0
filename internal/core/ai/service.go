package ai

import (
	"context"
	"strings"
	"time"

	"nutrition-planner/internal/core/ai/cache"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"
)

// completer 聊天補全的最小介面，測試時以假實作替換
type completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service LLM 補全服務：快取層包在供應商客戶端外
// 同一份提示詞（空白正規化後）只打一次供應商
type Service struct {
	client completer
	store  cache.Store
}

// NewService 創建補全服務
// OpenRouter 未啟用時回傳 nil，呼叫端以 nil 表示無 LLM 能力
func NewService(cfg *config.Config, store cache.Store) *Service {
	if !cfg.OpenRouter.Enabled || cfg.OpenRouter.APIKey == "" {
		common.LogInfo("OpenRouter 未啟用，LLM 計畫策略不可用")
		return nil
	}
	return &Service{
		client: NewOpenRouterClient(cfg),
		store:  store,
	}
}

// Complete 取得提示詞的補全結果，優先讀快取
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	key := normalizePrompt(prompt)

	if s.store != nil {
		if value, err := s.store.Get(ctx, key); err == nil {
			common.LogCacheHit("llm")
			return value, nil
		}
		common.LogCacheMiss("llm")
	}

	start := time.Now()
	content, err := s.client.Complete(ctx, prompt)
	common.LogLLMCall(time.Since(start), err, requestIDFrom(ctx))
	if err != nil {
		return "", err
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, content); err != nil {
			// 快取寫入失敗不影響補全結果
			common.LogWarn("快取寫入失敗")
		}
	}
	return content, nil
}

// CacheStats 快取統計，健康檢查端點用
func (s *Service) CacheStats(ctx context.Context) map[string]interface{} {
	if s.store == nil {
		return map[string]interface{}{"enabled": false}
	}
	return s.store.Stats(ctx)
}

// normalizePrompt 提示詞空白正規化，作為快取鍵基底
func normalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}

type ctxKey string

// RequestIDKey 請求 ID 在 context 中的鍵
const RequestIDKey ctxKey = "request_id"

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
