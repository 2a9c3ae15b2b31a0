package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// 食材行格式："Chicken: 0.2 kg; Rice: 0.1 kg"
// 擷取名稱、數量、單位；括號附註與其餘文字保留在 Raw
var ingredientLinePattern = regexp.MustCompile(`^\s*([^:]+):\s*([\d.]+)\s*([a-zA-Z]+)`)

// ParseIngredientList 解析分號分隔的食材描述字串
// 無法解析的片段以純名稱（無數量）保留，彙總時自然略過
func ParseIngredientList(raw string) []IngredientLine {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var lines []IngredientLine
	for _, part := range strings.Split(raw, ";") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		m := ingredientLinePattern.FindStringSubmatch(part)
		if m == nil {
			lines = append(lines, IngredientLine{
				Name: trimmed,
				Raw:  trimmed,
			})
			continue
		}

		qty, err := strconv.ParseFloat(m[2], 64)
		if err != nil || qty < 0 {
			lines = append(lines, IngredientLine{
				Name: strings.TrimSpace(m[1]),
				Raw:  trimmed,
			})
			continue
		}

		lines = append(lines, IngredientLine{
			Name:     strings.TrimSpace(m[1]),
			Quantity: &qty,
			Unit:     strings.TrimSpace(m[3]),
			Raw:      trimmed,
		})
	}
	return lines
}
