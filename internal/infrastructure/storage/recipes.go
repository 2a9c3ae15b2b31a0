package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpsertRecipes 批次寫入食譜目錄
// 以 ExternalID 為衝突鍵，重複匯入覆蓋既有條目
func (s *Store) UpsertRecipes(ctx context.Context, recipes []catalog.Recipe) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO recipes (id, external_id, name, doc, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(external_id) DO UPDATE SET
            name = excluded.name,
            doc = excluded.doc,
            updated_at = excluded.updated_at
    `

	now := time.Now().UTC().Format(time.RFC3339)
	count := 0
	for i := range recipes {
		recipe := &recipes[i]
		if recipe.ExternalID == "" {
			continue
		}
		doc, err := json.Marshal(recipe)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal recipe %s: %w", recipe.ExternalID, err)
		}
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), recipe.ExternalID, recipe.Name, string(doc), now, now); err != nil {
			return 0, fmt.Errorf("failed to upsert recipe %s: %w", recipe.ExternalID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recipe upsert: %w", err)
	}
	common.LogInfo("食譜目錄已更新",
		zap.Int("count", count),
	)
	return count, nil
}

// ListRecipes 取得完整食譜目錄
func (s *Store) ListRecipes(ctx context.Context) ([]catalog.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM recipes ORDER BY external_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []catalog.Recipe
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		var recipe catalog.Recipe
		if err := json.Unmarshal([]byte(doc), &recipe); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

// ReplaceDiseaseRules 批次寫入疾病規則，名稱為主鍵
func (s *Store) ReplaceDiseaseRules(ctx context.Context, rules []catalog.DiseaseRule) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO disease_rules (name, prohibited_tags, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            prohibited_tags = excluded.prohibited_tags,
            updated_at = excluded.updated_at
    `

	now := time.Now().UTC().Format(time.RFC3339)
	count := 0
	for _, rule := range rules {
		if rule.Name == "" {
			continue
		}
		tags, err := json.Marshal(catalog.LowerList(rule.ProhibitedTags))
		if err != nil {
			return 0, fmt.Errorf("failed to marshal rule tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, rule.Name, string(tags), now); err != nil {
			return 0, fmt.Errorf("failed to upsert rule %s: %w", rule.Name, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rule upsert: %w", err)
	}
	common.LogInfo("疾病規則已更新",
		zap.Int("count", count),
	)
	return count, nil
}

// ListDiseaseRules 取得全部疾病規則
func (s *Store) ListDiseaseRules(ctx context.Context) ([]catalog.DiseaseRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, prohibited_tags FROM disease_rules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query disease rules: %w", err)
	}
	defer rows.Close()

	var rules []catalog.DiseaseRule
	for rows.Next() {
		var rule catalog.DiseaseRule
		var tags string
		if err := rows.Scan(&rule.Name, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan disease rule: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &rule.ProhibitedTags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rule tags: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
