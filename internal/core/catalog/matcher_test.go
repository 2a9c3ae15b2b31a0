package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDishName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grilled Chicken Salad", "grilledchickensalad"},
		{"  Beef & Broccoli!  ", "beefbroccoli"},
		{"---", ""},
		{"Chicken-123", "chicken123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDishName(tt.in))
	}
}

func TestMatchExactHit(t *testing.T) {
	recipes := []Recipe{
		{ExternalID: "r1", Name: "Grilled Chicken Salad"},
		{ExternalID: "r2", Name: "Grilled Chicken Salads Deluxe"},
	}
	idx := BuildNameIndex(recipes, 0.8)

	// 精確命中短路，不受其他相近條目影響
	got := idx.Match("Grilled Chicken Salad")
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ExternalID)
}

func TestMatchFuzzyThreshold(t *testing.T) {
	base := strings.Repeat("a", 100)
	recipes := []Recipe{{ExternalID: "r1", Name: base}}
	idx := BuildNameIndex(recipes, 0.8)

	// 相似度 0.79：21 個字元不同，不命中
	below := strings.Repeat("b", 21) + strings.Repeat("a", 79)
	assert.Nil(t, idx.Match(below))

	// 相似度 0.81：19 個字元不同，命中
	above := strings.Repeat("b", 19) + strings.Repeat("a", 81)
	got := idx.Match(above)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ExternalID)
}

func TestMatchTieBreakFirstWins(t *testing.T) {
	// 兩個條目與查詢等距，先建立者勝出
	recipes := []Recipe{
		{ExternalID: "first", Name: "aaaaaaaaab"},
		{ExternalID: "second", Name: "aaaaaaaaac"},
	}
	idx := BuildNameIndex(recipes, 0.8)

	got := idx.Match("aaaaaaaaaa")
	require.NotNil(t, got)
	assert.Equal(t, "first", got.ExternalID)
}

func TestMatchEmptyAndMisses(t *testing.T) {
	idx := BuildNameIndex([]Recipe{{ExternalID: "r1", Name: "Oatmeal"}}, 0.8)

	assert.Nil(t, idx.Match(""))
	assert.Nil(t, idx.Match("   "))
	assert.Nil(t, idx.Match("completely unrelated dish"))

	var nilIdx *NameIndex
	assert.Nil(t, nilIdx.Match("anything"))
}

func TestBuildNameIndexCollision(t *testing.T) {
	// 名稱碰撞後寫者覆蓋，鍵只登錄一次
	recipes := []Recipe{
		{ExternalID: "r1", Name: "Tomato Soup"},
		{ExternalID: "r2", Name: "tomato-soup"},
	}
	idx := BuildNameIndex(recipes, 0.8)

	assert.Equal(t, 1, idx.Len())
	got := idx.Match("Tomato Soup")
	require.NotNil(t, got)
	assert.Equal(t, "r2", got.ExternalID)
}
