package procurement

import "strings"

// 單位同義詞表：僅做同義收斂，不做單位換算
// 不在表內的單位以小寫原樣保留，彙總仍可按字串分組
var unitSynonyms = map[string]string{
	"units":  "unit",
	"pcs":    "pc",
	"pieces": "pc",
	"piece":  "pc",
	"kgs":    "kg",
	"lbs":    "lb",
	"grams":  "g",
	"gram":   "g",
	"liters": "l",
	"litres": "l",
	"liter":  "l",
	"litre":  "l",
	"tbsps":  "tbsp",
	"tsps":   "tsp",
}

// NormalizeUnit 單位字串正規化
// 空輸入回傳空字串（表示無單位）；此函數不會失敗
func NormalizeUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return ""
	}
	if canonical, ok := unitSynonyms[unit]; ok {
		return canonical
	}
	return unit
}
