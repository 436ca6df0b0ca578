package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/hmpi"
)

// Project groups samples taken for one monitoring campaign
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	District    string     `json:"location_district"`
	City        string     `json:"location_city"`
	State       string     `json:"location_state"`
	Description *string    `json:"description,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Location renders the district/city pair used in reports
func (p *Project) Location() string {
	switch {
	case p.District == "":
		return p.City
	case p.City == "":
		return p.District
	default:
		return p.District + ", " + p.City
	}
}

// Sample is one heavy-metal measurement. HMPIValue and RiskLevel are
// computed at creation and never recomputed.
type Sample struct {
	ID            uuid.UUID     `json:"id"`
	ProjectID     uuid.UUID     `json:"project_id"`
	SampleCode    string        `json:"sample_id"`
	Metal         hmpi.Metal    `json:"metal"`
	Concentration float64       `json:"concentration"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	DateCollected time.Time     `json:"date_collected"`
	HMPIValue     float64       `json:"hmpi_value"`
	RiskLevel     hmpi.RiskTier `json:"risk_level"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SampleFilter narrows sample listings. Zero values match everything.
type SampleFilter struct {
	ProjectID     *uuid.UUID
	Metal         hmpi.Metal
	RiskLevel     hmpi.RiskTier
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// Alert is raised for a sample whose risk tier warrants attention
type Alert struct {
	ID                uuid.UUID     `json:"id"`
	SampleID          uuid.UUID     `json:"sample_id"`
	Priority          string        `json:"priority"`
	RiskLevel         hmpi.RiskTier `json:"risk_level"`
	Status            string        `json:"status"`
	RecommendedAction string        `json:"recommended_action"`
	CreatedAt         time.Time     `json:"created_at"`
}

// AlertDetail is an alert joined with its sample and project
type AlertDetail struct {
	Alert
	Sample  *Sample  `json:"sample,omitempty"`
	Project *Project `json:"project,omitempty"`
}

// AlertFilter narrows alert listings. Empty strings match everything.
type AlertFilter struct {
	Status   string
	Priority string
}

const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"

	AlertPriorityLow    = "low"
	AlertPriorityMedium = "medium"
	AlertPriorityHigh   = "high"
)

// ProjectDailySummary is the persisted rollup of one project's samples
// created on one day
type ProjectDailySummary struct {
	ProjectID         uuid.UUID                `json:"project_id"`
	Date              time.Time                `json:"date"`
	SampleCount       int                      `json:"sample_count"`
	AverageHMPI       float64                  `json:"average_hmpi"`
	HighRiskCount     int                      `json:"high_risk_count"`
	RiskDistribution  map[hmpi.RiskTier]int    `json:"risk_distribution"`
	MetalDistribution map[hmpi.Metal]int       `json:"metal_distribution"`
	Compliance        map[string]ComplianceSet `json:"compliance"`
	CreatedAt         time.Time                `json:"created_at"`
}

// ComplianceSet is the per-metal compliance of one standard
type ComplianceSet map[hmpi.Metal]ComplianceEntry

type ComplianceEntry struct {
	Violations int     `json:"violations"`
	Total      int     `json:"total"`
	Rate       float64 `json:"rate"`
}
