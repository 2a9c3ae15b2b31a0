package plan

import (
	"fmt"
	"strings"

	"nutrition-planner/internal/pkg/common"
)

// SlotRef 上游計畫骨架中的單一餐次引用
// 以 RecipeID 或名稱提示其一指向目錄食譜
type SlotRef struct {
	RecipeID string  `json:"recipe_id,omitempty"`
	Name     string  `json:"name,omitempty"`
	Portion  float64 `json:"portion"`
}

// DaySkeleton 上游計畫骨架中的一日
type DaySkeleton struct {
	Breakfast *SlotRef  `json:"breakfast"`
	Lunch     *SlotRef  `json:"lunch"`
	Dinner    *SlotRef  `json:"dinner"`
	Snacks    []SlotRef `json:"snacks,omitempty"`
}

// ParseSkeleton 將 LLM 回應解析為七日計畫骨架
// 接受 {"days":[...]} 或裸陣列兩種形態；長度不是 7 即硬失敗，
// 不自動補齊也不截斷 — 無法產出完整一週的策略應整體失敗
func ParseSkeleton(content string) ([]DaySkeleton, error) {
	payload := common.ExtractJSON(content)

	var raw interface{}
	if err := common.ParseJSON(payload, &raw); err != nil {
		return nil, common.WrapError(common.ErrMalformedProposal, fmt.Errorf("提案不是合法 JSON: %w", err))
	}

	var rawDays []interface{}
	switch v := raw.(type) {
	case []interface{}:
		rawDays = v
	case map[string]interface{}:
		days, ok := v["days"].([]interface{})
		if !ok {
			return nil, common.WrapError(common.ErrMalformedProposal, fmt.Errorf("提案缺少 days 陣列"))
		}
		rawDays = days
	default:
		return nil, common.WrapError(common.ErrMalformedProposal, fmt.Errorf("提案頂層結構無法識別"))
	}

	if len(rawDays) != 7 {
		return nil, common.WrapError(common.ErrMalformedProposal, fmt.Errorf("提案應有 7 天，實得 %d 天", len(rawDays)))
	}

	skeleton := make([]DaySkeleton, 0, 7)
	for i, rd := range rawDays {
		dayMap, ok := rd.(map[string]interface{})
		if !ok {
			return nil, common.WrapError(common.ErrMalformedProposal, fmt.Errorf("第 %d 天不是物件", i+1))
		}

		day := DaySkeleton{
			Breakfast: parseSlot(dayMap["breakfast"]),
			Lunch:     parseSlot(dayMap["lunch"]),
			Dinner:    parseSlot(dayMap["dinner"]),
		}
		if rawSnacks, ok := dayMap["snacks"].([]interface{}); ok {
			for _, rs := range rawSnacks {
				if slot := parseSlot(rs); slot != nil {
					day.Snacks = append(day.Snacks, *slot)
				}
			}
		}
		skeleton = append(skeleton, day)
	}
	return skeleton, nil
}

// parseSlot 解析單一餐次引用
// 可為物件（recipe_id / name / dish / title / portion）或純字串菜名；
// 缺失或無法識別時回傳 nil，由解析階段決定是否失敗
func parseSlot(v interface{}) *SlotRef {
	switch slot := v.(type) {
	case string:
		name := strings.TrimSpace(slot)
		if name == "" {
			return nil
		}
		return &SlotRef{Name: name, Portion: 1.0}
	case map[string]interface{}:
		ref := &SlotRef{
			Portion: common.CoerceFloat(slot["portion"], 1.0),
		}
		if id, ok := slot["recipe_id"].(string); ok {
			ref.RecipeID = strings.TrimSpace(id)
		}
		for _, key := range []string{"name", "dish", "title", "meal_name"} {
			if name, ok := slot[key].(string); ok && strings.TrimSpace(name) != "" {
				ref.Name = strings.TrimSpace(name)
				break
			}
		}
		if ref.RecipeID == "" && ref.Name == "" {
			return nil
		}
		return ref
	default:
		return nil
	}
}
