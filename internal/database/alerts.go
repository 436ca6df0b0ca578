package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/hmpi"
)

const alertColumns = `a.id, a.sample_id, a.priority, a.risk_level, a.status, a.recommended_action, a.created_at`

// InsertAlertIfAbsent stores alert unless the sample already has one. It
// returns the stored alert (new or existing) and whether it was created.
func (db *DB) InsertAlertIfAbsent(ctx context.Context, alert *Alert) (*Alert, bool, error) {
	query := `
		INSERT INTO alerts AS a (id, sample_id, priority, risk_level, status, recommended_action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sample_id) DO NOTHING
		RETURNING ` + alertColumns

	stored, err := scanAlert(db.QueryRowContext(ctx, query,
		alert.ID,
		alert.SampleID,
		alert.Priority,
		string(alert.RiskLevel),
		alert.Status,
		alert.RecommendedAction,
		alert.CreatedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	existing, err := scanAlert(db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts a WHERE a.sample_id = $1`, alert.SampleID))
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetAlert retrieves an alert by id
func (db *DB) GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := scanAlert(db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts a WHERE a.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAlertStatus moves an alert from one status to another. It returns
// ErrConflict if the alert is no longer in status from.
func (db *DB) UpdateAlertStatus(ctx context.Context, id uuid.UUID, from, to string) (*Alert, error) {
	query := `
		UPDATE alerts AS a
		SET status = $3, updated_at = CURRENT_TIMESTAMP
		WHERE a.id = $1 AND a.status = $2
		RETURNING ` + alertColumns

	a, err := scanAlert(db.QueryRowContext(ctx, query, id, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AcknowledgeActive acknowledges every active alert, optionally limited to
// one priority, and returns how many changed
func (db *DB) AcknowledgeActive(ctx context.Context, priority string) (int64, error) {
	query := `
		UPDATE alerts
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE status = $2 AND ($3 = '' OR priority = $3)
	`

	result, err := db.ExecContext(ctx, query, AlertStatusAcknowledged, AlertStatusActive, priority)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListAlerts returns alerts with their sample and project, newest first
func (db *DB) ListAlerts(ctx context.Context, filter AlertFilter) ([]*AlertDetail, error) {
	var (
		p     placeholders
		where []string
	)
	if filter.Status != "" {
		where = append(where, "a.status = "+p.add(filter.Status))
	}
	if filter.Priority != "" {
		where = append(where, "a.priority = "+p.add(filter.Priority))
	}

	query := `
		SELECT ` + alertColumns + `,
		       s.id, s.project_id, s.sample_id, s.metal, s.concentration, s.latitude, s.longitude,
		       s.date_collected, s.hmpi_value, s.risk_level, s.created_at,
		       ` + "p." + strings.ReplaceAll(projectColumns, ", ", ", p.") + `
		FROM alerts a
		JOIN samples s ON s.id = a.sample_id
		JOIN projects p ON p.id = s.project_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*AlertDetail
	for rows.Next() {
		var (
			d          AlertDetail
			s          Sample
			pr         Project
			alertRisk  string
			metal      string
			sampleRisk string
		)
		if err := rows.Scan(
			&d.ID, &d.SampleID, &d.Priority, &alertRisk, &d.Status, &d.RecommendedAction, &d.CreatedAt,
			&s.ID, &s.ProjectID, &s.SampleCode, &metal, &s.Concentration, &s.Latitude, &s.Longitude,
			&s.DateCollected, &s.HMPIValue, &sampleRisk, &s.CreatedAt,
			&pr.ID, &pr.Name, &pr.District, &pr.City, &pr.State, &pr.Description, &pr.CreatedBy, &pr.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.RiskLevel = hmpi.RiskTier(alertRisk)
		s.Metal = hmpi.Metal(metal)
		s.RiskLevel = hmpi.RiskTier(sampleRisk)
		d.Sample = &s
		d.Project = &pr
		alerts = append(alerts, &d)
	}

	return alerts, rows.Err()
}

// AlertStats counts alerts by status and by priority
type AlertStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
}

// GetAlertStats aggregates alert counts
func (db *DB) GetAlertStats(ctx context.Context) (*AlertStats, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, priority, COUNT(*) FROM alerts GROUP BY status, priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := NewAlertStats()
	for rows.Next() {
		var (
			status, priority string
			count            int
		)
		if err := rows.Scan(&status, &priority, &count); err != nil {
			return nil, err
		}
		stats.Add(status, priority, count)
	}

	return stats, rows.Err()
}

// NewAlertStats returns stats with every status and priority present at zero
func NewAlertStats() *AlertStats {
	return &AlertStats{
		ByStatus: map[string]int{
			AlertStatusActive:       0,
			AlertStatusAcknowledged: 0,
			AlertStatusResolved:     0,
		},
		ByPriority: map[string]int{
			AlertPriorityHigh:   0,
			AlertPriorityMedium: 0,
			AlertPriorityLow:    0,
		},
	}
}

// Add records count alerts with the given status and priority
func (s *AlertStats) Add(status, priority string, count int) {
	s.Total += count
	s.ByStatus[status] += count
	s.ByPriority[priority] += count
}

func scanAlert(row rowScanner) (*Alert, error) {
	var (
		a         Alert
		riskLevel string
	)
	if err := row.Scan(
		&a.ID,
		&a.SampleID,
		&a.Priority,
		&riskLevel,
		&a.Status,
		&a.RecommendedAction,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.RiskLevel = hmpi.RiskTier(riskLevel)
	return &a, nil
}
