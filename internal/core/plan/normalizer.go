package plan

import (
	"fmt"
	"time"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Resolver 將計畫骨架對照安全食譜子集解析為完整一週計畫
// 解析一律以安全子集為候選，絕不回頭查完整目錄，
// 安全不變式因此貫穿整條管線
type Resolver struct {
	threshold float64
}

// NewResolver 創建計畫解析器
func NewResolver(threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = catalog.DefaultMatchThreshold
	}
	return &Resolver{threshold: threshold}
}

// Resolve 解析七日骨架
// 骨架長度不是 7、或任一餐次無法對應到安全食譜，整次解析失敗，
// 絕不輸出部分一週或佔位餐次
func (r *Resolver) Resolve(weekStart time.Time, skeleton []DaySkeleton, safeRecipes []catalog.Recipe) ([]DayPlan, error) {
	if len(skeleton) != 7 {
		return nil, common.WrapError(common.ErrMalformedProposal, fmt.Errorf("計畫骨架應有 7 天，實得 %d 天", len(skeleton)))
	}

	byID := catalog.ByExternalID(safeRecipes)
	index := catalog.BuildNameIndex(safeRecipes, r.threshold)

	days := make([]DayPlan, 0, 7)
	for i := range skeleton {
		date := weekStart.AddDate(0, 0, i).Format("2006-01-02")
		day := DayPlan{Date: date}

		var err error
		if day.Breakfast, err = r.resolveSlot(skeleton[i].Breakfast, byID, index, date, "breakfast"); err != nil {
			return nil, err
		}
		if day.Lunch, err = r.resolveSlot(skeleton[i].Lunch, byID, index, date, "lunch"); err != nil {
			return nil, err
		}
		if day.Dinner, err = r.resolveSlot(skeleton[i].Dinner, byID, index, date, "dinner"); err != nil {
			return nil, err
		}
		for j := range skeleton[i].Snacks {
			snack, err := r.resolveSlot(&skeleton[i].Snacks[j], byID, index, date, "snack")
			if err != nil {
				return nil, err
			}
			day.Snacks = append(day.Snacks, *snack)
		}

		day.Totals = dayTotals(&day)
		days = append(days, day)
	}
	return days, nil
}

// resolveSlot 將單一餐次引用解析為完整餐次
// ID 查找優先，失敗退回名稱模糊比對；兩者皆失敗即整體失敗
func (r *Resolver) resolveSlot(ref *SlotRef, byID map[string]*catalog.Recipe, index *catalog.NameIndex, date, slot string) (*Meal, error) {
	if ref == nil {
		return nil, common.WrapError(common.ErrUnresolvableSlot, fmt.Errorf("%s 的 %s 餐次缺失", date, slot))
	}

	var recipe *catalog.Recipe
	if ref.RecipeID != "" {
		recipe = byID[ref.RecipeID]
	}
	if recipe == nil && ref.Name != "" {
		recipe = index.Match(ref.Name)
	}
	if recipe == nil {
		common.LogWarn("餐次無法對應任何安全食譜",
			zap.String("date", date),
			zap.String("slot", slot),
			zap.String("recipe_id", ref.RecipeID),
			zap.String("name", ref.Name),
		)
		return nil, common.WrapError(common.ErrUnresolvableSlot,
			fmt.Errorf("%s 的 %s 餐次（recipe_id=%q, name=%q）無法對應任何安全食譜", date, slot, ref.RecipeID, ref.Name))
	}

	portion := ref.Portion
	if portion <= 0 {
		portion = 1.0
	}
	return materializeMeal(recipe, portion), nil
}

func dayTotals(day *DayPlan) NutritionTotals {
	var totals NutritionTotals
	for _, m := range []*Meal{day.Breakfast, day.Lunch, day.Dinner} {
		if m != nil {
			totals.Add(m.Nutrition)
		}
	}
	for i := range day.Snacks {
		totals.Add(day.Snacks[i].Nutrition)
	}
	return totals
}
