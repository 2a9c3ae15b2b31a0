package plan

import (
	"fmt"
	"strings"
	"testing"

	"nutrition-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sevenDaysJSON(days int) string {
	var b strings.Builder
	b.WriteString(`{"days":[`)
	for i := 0; i < days; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"breakfast":{"recipe_id":"b%d","portion":1},"lunch":{"recipe_id":"l%d"},"dinner":{"recipe_id":"d%d","portion":1.5},"snacks":[{"recipe_id":"s%d","portion":0.5}]}`, i, i, i, i)
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestParseSkeletonValid(t *testing.T) {
	skeleton, err := ParseSkeleton(sevenDaysJSON(7))
	require.NoError(t, err)
	require.Len(t, skeleton, 7)

	day := skeleton[0]
	require.NotNil(t, day.Breakfast)
	assert.Equal(t, "b0", day.Breakfast.RecipeID)
	assert.Equal(t, 1.0, day.Breakfast.Portion)
	// portion 缺失時回退 1.0
	require.NotNil(t, day.Lunch)
	assert.Equal(t, 1.0, day.Lunch.Portion)
	assert.Equal(t, 1.5, day.Dinner.Portion)
	require.Len(t, day.Snacks, 1)
	assert.Equal(t, 0.5, day.Snacks[0].Portion)
}

func TestParseSkeletonMarkdownFence(t *testing.T) {
	content := "Here is your plan:\n```json\n" + sevenDaysJSON(7) + "\n```\nEnjoy!"
	skeleton, err := ParseSkeleton(content)
	require.NoError(t, err)
	assert.Len(t, skeleton, 7)
}

func TestParseSkeletonWrongDayCount(t *testing.T) {
	for _, days := range []int{6, 8} {
		_, err := ParseSkeleton(sevenDaysJSON(days))
		require.Error(t, err, "%d days", days)
		ce, ok := common.AsCustomError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrCodeMalformedProposal, ce.Code)
	}
}

func TestParseSkeletonNotJSON(t *testing.T) {
	_, err := ParseSkeleton("sorry, I cannot help with that")
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeMalformedProposal, ce.Code)
}

func TestParseSkeletonBareArray(t *testing.T) {
	raw := sevenDaysJSON(7)
	bare := strings.TrimSuffix(strings.TrimPrefix(raw, `{"days":`), `}`)
	skeleton, err := ParseSkeleton(bare)
	require.NoError(t, err)
	assert.Len(t, skeleton, 7)
}

func TestParseSlotShapes(t *testing.T) {
	// 純字串菜名
	slot := parseSlot("Grilled Chicken Salad")
	require.NotNil(t, slot)
	assert.Equal(t, "Grilled Chicken Salad", slot.Name)
	assert.Equal(t, 1.0, slot.Portion)

	// 名稱備援欄位 dish
	slot = parseSlot(map[string]interface{}{"dish": "Oatmeal", "portion": "2"})
	require.NotNil(t, slot)
	assert.Equal(t, "Oatmeal", slot.Name)
	assert.Equal(t, 2.0, slot.Portion)

	// 無效 portion 回退 1.0
	slot = parseSlot(map[string]interface{}{"recipe_id": "r1", "portion": "lots"})
	require.NotNil(t, slot)
	assert.Equal(t, 1.0, slot.Portion)

	// 空物件與 nil 無法識別
	assert.Nil(t, parseSlot(map[string]interface{}{}))
	assert.Nil(t, parseSlot(nil))
	assert.Nil(t, parseSlot("   "))
}
