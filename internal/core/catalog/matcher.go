package catalog

import (
	"strings"
	"unicode"

	"nutrition-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultMatchThreshold 模糊比對預設門檻
// 0.8 沿用既有行為；可由 plan.match_threshold 設定覆寫
const DefaultMatchThreshold = 0.8

// NameIndex 以正規化名稱索引食譜，供自由文字比對
// 僅為 best-effort 索引：名稱碰撞時後寫者覆蓋
type NameIndex struct {
	keys      []string // 建立順序，決定同分時的優先序
	byKey     map[string]*Recipe
	threshold float64
}

// NormalizeDishName 菜名識別用的嚴格正規化：僅保留字母數字並轉小寫
// 與食材名稱正規化（procurement 套件）是不同函數，不可混用
func NormalizeDishName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildNameIndex 依目錄建立名稱索引
func BuildNameIndex(recipes []Recipe, threshold float64) *NameIndex {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	idx := &NameIndex{
		byKey:     make(map[string]*Recipe, len(recipes)),
		threshold: threshold,
	}
	for i := range recipes {
		key := NormalizeDishName(recipes[i].Name)
		if key == "" {
			continue
		}
		if _, exists := idx.byKey[key]; !exists {
			idx.keys = append(idx.keys, key)
		}
		idx.byKey[key] = &recipes[i]
	}
	return idx
}

// Len 索引內的鍵數量
func (idx *NameIndex) Len() int {
	return len(idx.keys)
}

// Match 將自由文字菜名解析為目錄食譜
// 精確命中直接回傳；否則取相似度最高且達門檻者，同分取先建立者
// 找不到是正常結果而非錯誤，回傳 nil
func (idx *NameIndex) Match(freeText string) *Recipe {
	if idx == nil {
		return nil
	}

	key := NormalizeDishName(freeText)
	if key == "" {
		return nil
	}

	// 精確命中短路，略過模糊評分
	if r, ok := idx.byKey[key]; ok {
		return r
	}

	var best *Recipe
	bestScore := 0.0
	bestKey := ""
	for _, k := range idx.keys {
		score := Similarity(key, k)
		if score > bestScore {
			bestScore = score
			best = idx.byKey[k]
			bestKey = k
		}
	}

	if best == nil || bestScore < idx.threshold {
		return nil
	}

	common.LogDebug("模糊比對命中",
		zap.String("query", freeText),
		zap.String("matched_key", bestKey),
		zap.Float64("score", bestScore),
	)
	return best
}
