package procurement

import (
	"math"
	"sort"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// MealEntry 一筆待彙總的餐次：食譜 ID 或名稱提示，加上份量倍數
type MealEntry struct {
	RecipeID string  // 優先以 ID 解析
	NameHint string  // ID 缺失或無效時的名稱備援
	Portion  float64 // 份量倍數，無效值由呼叫端先行修正為 1.0
}

// AggregatedIngredient 採購清單中的一項
// (Name, Unit) 在一次彙總內唯一
type AggregatedIngredient struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit,omitempty"`
	Quantity float64 `json:"quantity"`
}

// Aggregator 將多個餐次的食材展開並彙總為採購清單
type Aggregator struct{}

// NewAggregator 創建彙總器
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

type aggKey struct {
	name string
	unit string
}

// Aggregate 彙總採購清單
// 解析不到的餐次靜默略過（上游計畫可能含目錄外的自訂菜色）；
// 無數量的食材行不參與彙總。輸出按總量遞減排序，數量四捨五入到小數四位
func (a *Aggregator) Aggregate(entries []MealEntry, recipes []catalog.Recipe, index *catalog.NameIndex) []AggregatedIngredient {
	lookup := catalog.ByExternalID(recipes)

	totals := make(map[aggKey]float64)
	display := make(map[aggKey]string)
	var order []aggKey

	resolved := 0
	for _, entry := range entries {
		recipe := a.resolve(entry, lookup, index)
		if recipe == nil {
			common.LogDebug("餐次無法對應目錄食譜，略過",
				zap.String("recipe_id", entry.RecipeID),
				zap.String("name_hint", entry.NameHint),
			)
			continue
		}
		resolved++

		portion := entry.Portion
		if portion <= 0 {
			portion = 1.0
		}

		for _, line := range recipe.Ingredients {
			if line.Quantity == nil {
				continue
			}
			nameKey, displayName := CanonicalizeIngredient(line.Name)
			if nameKey == "" {
				continue
			}
			key := aggKey{name: nameKey, unit: NormalizeUnit(line.Unit)}
			if _, seen := totals[key]; !seen {
				order = append(order, key)
				display[key] = displayName
			}
			totals[key] += *line.Quantity * portion
		}
	}

	// 插入順序為次序基準，排序僅按總量遞減且穩定
	out := make([]AggregatedIngredient, 0, len(order))
	for _, key := range order {
		out = append(out, AggregatedIngredient{
			Name:     display[key],
			Unit:     key.unit,
			Quantity: round4(totals[key]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity > out[j].Quantity
	})

	common.LogInfo("採購彙總完成",
		zap.Int("entries", len(entries)),
		zap.Int("resolved", resolved),
		zap.Int("ingredients", len(out)),
	)
	return out
}

// resolve 以 ID 優先解析食譜，失敗時退回名稱模糊比對
func (a *Aggregator) resolve(entry MealEntry, lookup map[string]*catalog.Recipe, index *catalog.NameIndex) *catalog.Recipe {
	if entry.RecipeID != "" {
		if r, ok := lookup[entry.RecipeID]; ok {
			return r
		}
	}
	if entry.NameHint != "" {
		return index.Match(entry.NameHint)
	}
	return nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
