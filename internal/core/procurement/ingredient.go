package procurement

import (
	"regexp"
	"strings"
)

// 烹調方式等修飾詞，不影響採購品項的識別
var descriptorTokens = map[string]bool{
	"fried":      true,
	"baked":      true,
	"grilled":    true,
	"roasted":    true,
	"roast":      true,
	"scrambled":  true,
	"poached":    true,
	"steamed":    true,
	"soft":       true,
	"braised":    true,
	"pureed":     true,
	"low-sodium": true,
	"low":        true,
	"high":       true,
	"creamy":     true,
	"plain":      true,
	"with":       true,
	"and":        true,
}

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	tokenSplitPattern    = regexp.MustCompile(`[\s\-_/]+`)
)

// CanonicalizeIngredient 將食材名稱正規化為分組鍵與顯示名稱
// 同一食材的修飾詞變體與單複數變體必須對應到相同的 canonicalKey
func CanonicalizeIngredient(name string) (canonicalKey, displayName string) {
	raw := strings.ToLower(strings.TrimSpace(name))
	if raw == "" {
		return "", ""
	}

	// 去除括號附註，例如 "(boneless)"
	stripped := strings.TrimSpace(parentheticalPattern.ReplaceAllString(raw, " "))

	tokens := splitTokens(stripped)
	if len(tokens) == 0 {
		// 連切詞都切不出來時退回原始小寫字串
		canonical := pluralFold(raw)
		return canonical, titleCase(canonical)
	}

	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if descriptorTokens[tok] {
			continue
		}
		filtered = append(filtered, tok)
	}

	// 全部被濾掉時退回未過濾的 token 清單，避免空鍵
	if len(filtered) == 0 {
		filtered = tokens
	}

	canonical := pluralFold(strings.Join(filtered, " "))
	return canonical, titleCase(canonical)
}

// splitTokens 以空白/連字號/底線/斜線切詞，並去除尾端逗號句點
func splitTokens(s string) []string {
	var tokens []string
	for _, tok := range tokenSplitPattern.Split(s, -1) {
		tok = strings.TrimRight(tok, ",.")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// pluralFold 簡易複數折疊："berries"→"berry"，"eggs"→"egg"，"ss" 結尾不動
func pluralFold(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return strings.TrimSuffix(s, "s")
	default:
		return s
	}
}

// titleCase 每個單字首字母大寫
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
