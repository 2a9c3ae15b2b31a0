package recipe

import (
	"encoding/json"
	"net/http"

	"nutrition-planner/internal/api/handlers"
	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/infrastructure/storage"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜目錄處理器
type Handler struct {
	store *storage.Store
}

// NewHandler 創建食譜處理器
func NewHandler(store *storage.Store) *Handler {
	return &Handler{store: store}
}

// importRecipe 匯入用的食譜條目
// ingredients 可為結構化陣列，或 "Tomato: 0.2 kg; Egg: 2 pcs" 形式的原始字串
type importRecipe struct {
	RecipeID           string          `json:"recipe_id"`
	MealName           string          `json:"meal_name"`
	MealType           string          `json:"meal_type"`
	CaloriesPerServing float64         `json:"calories_per_serving"`
	ProteinG           float64         `json:"protein_g"`
	CarbsG             float64         `json:"carbs_g"`
	FatG               float64         `json:"fat_g"`
	Tags               []string        `json:"tags"`
	Allergens          []string        `json:"allergens"`
	Ingredients        json.RawMessage `json:"ingredients"`
}

type importRequest struct {
	Recipes      []importRecipe        `json:"recipes"`
	DiseaseRules []catalog.DiseaseRule `json:"disease_rules"`
}

// Import 批次匯入食譜與疾病規則
func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}
	if len(req.Recipes) == 0 && len(req.DiseaseRules) == 0 {
		handlers.RespondError(c, common.ErrInvalidRequest)
		return
	}

	recipes := make([]catalog.Recipe, 0, len(req.Recipes))
	for i := range req.Recipes {
		recipe, err := req.Recipes[i].toCatalog()
		if err != nil {
			handlers.RespondError(c, common.WrapError(common.ErrInvalidRequest, err))
			return
		}
		recipes = append(recipes, recipe)
	}

	ctx := c.Request.Context()
	recipeCount, err := h.store.UpsertRecipes(ctx, recipes)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	ruleCount, err := h.store.ReplaceDiseaseRules(ctx, req.DiseaseRules)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("目錄匯入完成",
		zap.Int("recipes", recipeCount),
		zap.Int("rules", ruleCount),
	)
	c.JSON(http.StatusOK, gin.H{
		"recipes_imported": recipeCount,
		"rules_imported":   ruleCount,
	})
}

// List 取得完整食譜目錄
func (h *Handler) List(c *gin.Context) {
	recipes, err := h.store.ListRecipes(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// ListRules 取得疾病規則表
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.store.ListDiseaseRules(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"disease_rules": rules,
		"count":         len(rules),
	})
}

// toCatalog 轉為目錄條目並套用目錄不變式
func (r *importRecipe) toCatalog() (catalog.Recipe, error) {
	recipe := catalog.Recipe{
		ExternalID:         r.RecipeID,
		Name:               r.MealName,
		MealType:           r.MealType,
		CaloriesPerServing: r.CaloriesPerServing,
		ProteinG:           r.ProteinG,
		CarbsG:             r.CarbsG,
		FatG:               r.FatG,
		Tags:               r.Tags,
		Allergens:          r.Allergens,
	}

	if len(r.Ingredients) > 0 {
		var structured []catalog.IngredientLine
		if err := json.Unmarshal(r.Ingredients, &structured); err == nil {
			recipe.Ingredients = structured
		} else {
			var raw string
			if err := json.Unmarshal(r.Ingredients, &raw); err != nil {
				return catalog.Recipe{}, err
			}
			recipe.Ingredients = catalog.ParseIngredientList(raw)
		}
	}

	recipe.Normalize()
	return recipe, nil
}
