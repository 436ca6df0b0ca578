package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertProjectDailySummary inserts or replaces the rollup for one
// project and day
func (db *DB) UpsertProjectDailySummary(ctx context.Context, s *ProjectDailySummary) error {
	risk, err := json.Marshal(s.RiskDistribution)
	if err != nil {
		return fmt.Errorf("failed to encode risk distribution: %w", err)
	}
	metals, err := json.Marshal(s.MetalDistribution)
	if err != nil {
		return fmt.Errorf("failed to encode metal distribution: %w", err)
	}
	compliance, err := json.Marshal(s.Compliance)
	if err != nil {
		return fmt.Errorf("failed to encode compliance: %w", err)
	}

	query := `
		INSERT INTO project_daily_summary (
			project_id, date, sample_count, average_hmpi, high_risk_count,
			risk_distribution, metal_distribution, compliance
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (project_id, date) DO UPDATE
		SET
			sample_count = EXCLUDED.sample_count,
			average_hmpi = EXCLUDED.average_hmpi,
			high_risk_count = EXCLUDED.high_risk_count,
			risk_distribution = EXCLUDED.risk_distribution,
			metal_distribution = EXCLUDED.metal_distribution,
			compliance = EXCLUDED.compliance,
			created_at = CURRENT_TIMESTAMP
		RETURNING created_at
	`

	return db.QueryRowContext(ctx, query,
		s.ProjectID,
		s.Date,
		s.SampleCount,
		s.AverageHMPI,
		s.HighRiskCount,
		risk,
		metals,
		compliance,
	).Scan(&s.CreatedAt)
}

// ListProjectDailySummaries returns a project's rollups, newest day first.
// A zero since returns every day.
func (db *DB) ListProjectDailySummaries(ctx context.Context, projectID uuid.UUID, since time.Time) ([]*ProjectDailySummary, error) {
	query := `
		SELECT project_id, date, sample_count, average_hmpi, high_risk_count,
		       risk_distribution, metal_distribution, compliance, created_at
		FROM project_daily_summary
		WHERE project_id = $1 AND date >= $2::date
		ORDER BY date DESC
	`

	rows, err := db.QueryContext(ctx, query, projectID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*ProjectDailySummary
	for rows.Next() {
		var (
			s                        ProjectDailySummary
			risk, metals, compliance []byte
		)
		if err := rows.Scan(
			&s.ProjectID,
			&s.Date,
			&s.SampleCount,
			&s.AverageHMPI,
			&s.HighRiskCount,
			&risk,
			&metals,
			&compliance,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(risk, &s.RiskDistribution); err != nil {
			return nil, fmt.Errorf("failed to decode risk distribution: %w", err)
		}
		if err := json.Unmarshal(metals, &s.MetalDistribution); err != nil {
			return nil, fmt.Errorf("failed to decode metal distribution: %w", err)
		}
		if err := json.Unmarshal(compliance, &s.Compliance); err != nil {
			return nil, fmt.Errorf("failed to decode compliance: %w", err)
		}
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}
