package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredientList(t *testing.T) {
	lines := ParseIngredientList("Chicken Breast: 0.2 kg; Olive Oil: 10 ml; a pinch of salt")
	require.Len(t, lines, 3)

	assert.Equal(t, "Chicken Breast", lines[0].Name)
	require.NotNil(t, lines[0].Quantity)
	assert.InDelta(t, 0.2, *lines[0].Quantity, 1e-9)
	assert.Equal(t, "kg", lines[0].Unit)

	assert.Equal(t, "Olive Oil", lines[1].Name)
	require.NotNil(t, lines[1].Quantity)
	assert.InDelta(t, 10, *lines[1].Quantity, 1e-9)
	assert.Equal(t, "ml", lines[1].Unit)

	// 無法解析的片段保留名稱，數量缺失
	assert.Equal(t, "a pinch of salt", lines[2].Name)
	assert.Nil(t, lines[2].Quantity)
	assert.Equal(t, "a pinch of salt", lines[2].Raw)
}

func TestParseIngredientListEmpty(t *testing.T) {
	assert.Nil(t, ParseIngredientList(""))
	assert.Nil(t, ParseIngredientList("   "))
	assert.Nil(t, ParseIngredientList(" ; ; "))
}

func TestRecipeNormalize(t *testing.T) {
	r := Recipe{
		ExternalID: " r1 ",
		Name:       " Peanut Stew ",
		Tags:       []string{" High-Sodium ", ""},
		Allergens:  []string{"Peanut", "NONE", "none"},
		Ingredients: []IngredientLine{
			{Name: " Peanut Butter ", Unit: " tbsp "},
		},
	}
	r.Normalize()

	assert.Equal(t, "r1", r.ExternalID)
	assert.Equal(t, "Peanut Stew", r.Name)
	assert.Equal(t, []string{"high-sodium"}, r.Tags)
	// "none" 過敏原視為空
	assert.Equal(t, []string{"peanut"}, r.Allergens)
	assert.Equal(t, "Peanut Butter", r.Ingredients[0].Name)
	assert.Equal(t, "tbsp", r.Ingredients[0].Unit)
}
