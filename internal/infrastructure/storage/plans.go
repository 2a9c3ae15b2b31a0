package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutrition-planner/internal/core/plan"
	"nutrition-planner/internal/pkg/common"
)

// SavePlan 儲存一週計畫
// 同一病患同一週起始日的舊計畫先刪後存，重新生成即取代
func (s *Store) SavePlan(ctx context.Context, p *plan.WeeklyPlan) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM weekly_plans WHERE patient_id = ? AND week_start = ?`,
		p.PatientID, p.WeekStart); err != nil {
		return fmt.Errorf("failed to replace existing plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO weekly_plans (id, patient_id, week_start, strategy, doc, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.PatientID, p.WeekStart, p.Strategy, string(doc), p.GeneratedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return tx.Commit()
}

// GetPlan 依 ID 取得一週計畫
func (s *Store) GetPlan(ctx context.Context, id string) (*plan.WeeklyPlan, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM weekly_plans WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.WrapError(common.ErrNotFound, fmt.Errorf("plan %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	var p plan.WeeklyPlan
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &p, nil
}

// ListPlans 列出計畫，patientID 為空時列出全部
func (s *Store) ListPlans(ctx context.Context, patientID string) ([]*plan.WeeklyPlan, error) {
	query := `SELECT doc FROM weekly_plans`
	args := []interface{}{}
	if patientID != "" {
		query += ` WHERE patient_id = ?`
		args = append(args, patientID)
	}
	query += ` ORDER BY week_start DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []*plan.WeeklyPlan
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		var p plan.WeeklyPlan
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
		}
		plans = append(plans, &p)
	}
	return plans, rows.Err()
}

// DeletePlan 刪除一週計畫
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM weekly_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return common.WrapError(common.ErrNotFound, fmt.Errorf("plan %s not found", id))
	}
	return nil
}
