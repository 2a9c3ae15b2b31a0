package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/pkg/common"

	"github.com/google/uuid"
)

// Patient 病患實體：限制條件快照加上識別欄位
type Patient struct {
	ID        string                     `json:"id"`
	Profile   catalog.PatientConstraints `json:"profile"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// CreatePatient 新增病患
func (s *Store) CreatePatient(ctx context.Context, profile catalog.PatientConstraints) (*Patient, error) {
	doc, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patient profile: %w", err)
	}

	now := time.Now().UTC()
	patient := &Patient{
		ID:        uuid.NewString(),
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patients (id, name, profile, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		patient.ID, profile.Name, string(doc), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert patient: %w", err)
	}
	return patient, nil
}

// GetPatient 依 ID 取得病患
func (s *Store) GetPatient(ctx context.Context, id string) (*Patient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, profile, created_at, updated_at FROM patients WHERE id = ?`, id)
	return scanPatient(row)
}

// ListPatients 列出全部病患
func (s *Store) ListPatients(ctx context.Context) ([]*Patient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile, created_at, updated_at FROM patients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}
	return patients, rows.Err()
}

// UpdatePatient 更新病患限制條件
func (s *Store) UpdatePatient(ctx context.Context, id string, profile catalog.PatientConstraints) (*Patient, error) {
	doc, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patient profile: %w", err)
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE patients SET name = ?, profile = ?, updated_at = ? WHERE id = ?`,
		profile.Name, string(doc), now.Format(time.RFC3339), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, common.WrapError(common.ErrNotFound, fmt.Errorf("patient %s not found", id))
	}
	return s.GetPatient(ctx, id)
}

// DeletePatient 刪除病患（關聯計畫一併刪除）
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return common.WrapError(common.ErrNotFound, fmt.Errorf("patient %s not found", id))
	}
	// SQLite 預設不啟用外鍵，手動清除關聯計畫
	if _, err := s.db.ExecContext(ctx, `DELETE FROM weekly_plans WHERE patient_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete patient plans: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var patient Patient
	var doc, createdAt, updatedAt string

	if err := row.Scan(&patient.ID, &doc, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.WrapError(common.ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}

	if err := json.Unmarshal([]byte(doc), &patient.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patient profile: %w", err)
	}
	var err error
	if patient.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if patient.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &patient, nil
}
