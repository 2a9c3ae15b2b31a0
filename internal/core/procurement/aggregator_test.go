package procurement

import (
	"testing"

	"nutrition-planner/internal/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(v float64) *float64 { return &v }

func testCatalog() []catalog.Recipe {
	return []catalog.Recipe{
		{
			ExternalID: "r1",
			Name:       "Tomato Pasta",
			Ingredients: []catalog.IngredientLine{
				{Name: "Tomato", Quantity: qty(1), Unit: "kg"},
				{Name: "Pasta", Quantity: qty(0.1), Unit: "kg"},
			},
		},
		{
			ExternalID: "r2",
			Name:       "Grilled Chicken Salad",
			Ingredients: []catalog.IngredientLine{
				{Name: "Grilled Chicken Breast", Quantity: qty(0.2), Unit: "kg"},
				{Name: "Tomato (ripe)", Quantity: qty(0.5), Unit: "kgs"},
				{Name: "salt to taste"}, // 無數量，彙總略過
			},
		},
	}
}

func TestAggregateByIDWithPortions(t *testing.T) {
	recipes := testCatalog()
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	entries := []MealEntry{
		{RecipeID: "r1", Portion: 2},
		{RecipeID: "r1", Portion: 1},
	}
	got := agg.Aggregate(entries, recipes, index)
	require.Len(t, got, 2)

	// 按總量遞減排序
	assert.Equal(t, "Tomato", got[0].Name)
	assert.Equal(t, "kg", got[0].Unit)
	assert.InDelta(t, 3.0, got[0].Quantity, 1e-9)
	assert.Equal(t, "Pasta", got[1].Name)
	assert.InDelta(t, 0.3, got[1].Quantity, 1e-9)
}

func TestAggregateAdditivity(t *testing.T) {
	recipes := testCatalog()
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	split := agg.Aggregate([]MealEntry{
		{RecipeID: "r2", Portion: 1.5},
		{RecipeID: "r2", Portion: 0.5},
	}, recipes, index)
	merged := agg.Aggregate([]MealEntry{
		{RecipeID: "r2", Portion: 2.0},
	}, recipes, index)

	assert.Equal(t, merged, split)
}

func TestAggregateMergesNameAndUnitVariants(t *testing.T) {
	// r1 的 "Tomato"/"kg" 與 r2 的 "Tomato (ripe)"/"kgs" 應合併為同一項
	recipes := testCatalog()
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	got := agg.Aggregate([]MealEntry{
		{RecipeID: "r1", Portion: 1},
		{RecipeID: "r2", Portion: 1},
	}, recipes, index)

	var tomato *AggregatedIngredient
	for i := range got {
		if got[i].Name == "Tomato" {
			tomato = &got[i]
		}
	}
	require.NotNil(t, tomato)
	assert.Equal(t, "kg", tomato.Unit)
	assert.InDelta(t, 1.5, tomato.Quantity, 1e-9)
}

func TestAggregateResolvesByNameHint(t *testing.T) {
	recipes := testCatalog()
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	got := agg.Aggregate([]MealEntry{
		{NameHint: "grilled chicken salad", Portion: 1},
	}, recipes, index)

	require.NotEmpty(t, got)
	assert.Equal(t, "Tomato", got[0].Name)
}

func TestAggregateSkipsUnresolvedEntries(t *testing.T) {
	recipes := testCatalog()
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	got := agg.Aggregate([]MealEntry{
		{RecipeID: "missing", NameHint: "no such dish anywhere", Portion: 1},
		{RecipeID: "r1", Portion: 1},
	}, recipes, index)

	// 解析不到的餐次靜默略過，其餘照常彙總
	require.Len(t, got, 2)
	assert.InDelta(t, 1.0, got[0].Quantity, 1e-9)
}

func TestAggregateRoundsToFourDecimals(t *testing.T) {
	recipes := []catalog.Recipe{{
		ExternalID: "r1",
		Name:       "Oatmeal",
		Ingredients: []catalog.IngredientLine{
			{Name: "Oats", Quantity: qty(0.1), Unit: "kg"},
		},
	}}
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	got := agg.Aggregate([]MealEntry{
		{RecipeID: "r1", Portion: 1.00005},
	}, recipes, index)
	require.Len(t, got, 1)
	assert.Equal(t, 0.1, got[0].Quantity)
}

func TestAggregateDefaultsInvalidPortion(t *testing.T) {
	recipes := testCatalog()
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	zero := agg.Aggregate([]MealEntry{{RecipeID: "r1"}}, recipes, index)
	one := agg.Aggregate([]MealEntry{{RecipeID: "r1", Portion: 1}}, recipes, index)
	assert.Equal(t, one, zero)
}

func TestAggregateEmpty(t *testing.T) {
	recipes := testCatalog()
	index := catalog.BuildNameIndex(recipes, 0.8)
	agg := NewAggregator()

	assert.Empty(t, agg.Aggregate(nil, recipes, index))
}
