package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/hmpi"
)

const sampleColumns = `id, project_id, sample_id, metal, concentration, latitude, longitude,
	date_collected, hmpi_value, risk_level, created_at`

// InsertSamples writes a batch of samples in one transaction. Either every
// sample is stored or none is.
func (db *DB) InsertSamples(ctx context.Context, samples []*Sample) error {
	if len(samples) == 0 {
		return nil
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO samples (
				id, project_id, sample_id, metal, concentration, latitude, longitude,
				date_collected, hmpi_value, risk_level
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare sample insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range samples {
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			if err := stmt.QueryRowContext(ctx,
				s.ID,
				s.ProjectID,
				s.SampleCode,
				string(s.Metal),
				s.Concentration,
				s.Latitude,
				s.Longitude,
				s.DateCollected,
				s.HMPIValue,
				string(s.RiskLevel),
			).Scan(&s.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert sample %s: %w", s.SampleCode, err)
			}
		}
		return nil
	})
}

// ListSamples returns samples matching filter, newest first
func (db *DB) ListSamples(ctx context.Context, filter SampleFilter) ([]*Sample, error) {
	var (
		p     placeholders
		where []string
	)
	if filter.ProjectID != nil {
		where = append(where, "project_id = "+p.add(*filter.ProjectID))
	}
	if filter.Metal != "" {
		where = append(where, "metal = "+p.add(string(filter.Metal)))
	}
	if filter.RiskLevel != "" {
		where = append(where, "risk_level = "+p.add(string(filter.RiskLevel)))
	}
	if filter.CreatedFrom != nil {
		where = append(where, "created_at >= "+p.add(*filter.CreatedFrom))
	}
	if filter.CreatedBefore != nil {
		where = append(where, "created_at < "+p.add(*filter.CreatedBefore))
	}

	query := `SELECT ` + sampleColumns + ` FROM samples`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// GetSample retrieves a sample by id
func (db *DB) GetSample(ctx context.Context, id uuid.UUID) (*Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples WHERE id = $1`

	s, err := scanSample(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSample(row rowScanner) (*Sample, error) {
	var (
		s         Sample
		metal     string
		riskLevel string
	)
	if err := row.Scan(
		&s.ID,
		&s.ProjectID,
		&s.SampleCode,
		&metal,
		&s.Concentration,
		&s.Latitude,
		&s.Longitude,
		&s.DateCollected,
		&s.HMPIValue,
		&riskLevel,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.Metal = hmpi.Metal(metal)
	s.RiskLevel = hmpi.RiskTier(riskLevel)
	return &s, nil
}
