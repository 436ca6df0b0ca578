package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/hmpi"
)

// SampleRecorded is published once per persisted sample, keyed by project
type SampleRecorded struct {
	Type          EventType     `json:"type"`
	SampleID      uuid.UUID     `json:"sample_id"`
	SampleCode    string        `json:"sample_code"`
	ProjectID     uuid.UUID     `json:"project_id"`
	ProjectName   string        `json:"project_name"`
	Location      string        `json:"location"`
	Metal         hmpi.Metal    `json:"metal"`
	Concentration float64       `json:"concentration"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	DateCollected time.Time     `json:"date_collected"`
	HMPIValue     float64       `json:"hmpi_value"`
	RiskLevel     hmpi.RiskTier `json:"risk_level"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewSampleRecorded builds the event for a stored sample. project may be nil.
func NewSampleRecorded(s *database.Sample, project *database.Project) *SampleRecorded {
	e := &SampleRecorded{
		Type:          EventSampleRecorded,
		SampleID:      s.ID,
		SampleCode:    s.SampleCode,
		ProjectID:     s.ProjectID,
		Metal:         s.Metal,
		Concentration: s.Concentration,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		DateCollected: s.DateCollected,
		HMPIValue:     s.HMPIValue,
		RiskLevel:     s.RiskLevel,
		CreatedAt:     s.CreatedAt,
	}
	if project != nil {
		e.ProjectName = project.Name
		e.Location = project.Location()
	}
	return e
}

// Sample converts the event back to the stored sample it describes
func (e *SampleRecorded) Sample() *database.Sample {
	return &database.Sample{
		ID:            e.SampleID,
		ProjectID:     e.ProjectID,
		SampleCode:    e.SampleCode,
		Metal:         e.Metal,
		Concentration: e.Concentration,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		DateCollected: e.DateCollected,
		HMPIValue:     e.HMPIValue,
		RiskLevel:     e.RiskLevel,
		CreatedAt:     e.CreatedAt,
	}
}

// AlertRaised is published once an alert is stored, keyed by sample
type AlertRaised struct {
	Type              EventType     `json:"type"`
	AlertID           uuid.UUID     `json:"alert_id"`
	SampleID          uuid.UUID     `json:"sample_id"`
	SampleCode        string        `json:"sample_code"`
	ProjectID         uuid.UUID     `json:"project_id"`
	ProjectName       string        `json:"project_name"`
	Location          string        `json:"location"`
	Metal             hmpi.Metal    `json:"metal"`
	Concentration     float64       `json:"concentration"`
	HMPIValue         float64       `json:"hmpi_value"`
	RiskLevel         hmpi.RiskTier `json:"risk_level"`
	Priority          string        `json:"priority"`
	RecommendedAction string        `json:"recommended_action"`
	RaisedAt          time.Time     `json:"raised_at"`
}

// NewAlertRaised combines a stored alert with the sample event that caused it
func NewAlertRaised(a *database.Alert, sample *SampleRecorded) *AlertRaised {
	return &AlertRaised{
		Type:              EventAlertRaised,
		AlertID:           a.ID,
		SampleID:          a.SampleID,
		SampleCode:        sample.SampleCode,
		ProjectID:         sample.ProjectID,
		ProjectName:       sample.ProjectName,
		Location:          sample.Location,
		Metal:             sample.Metal,
		Concentration:     sample.Concentration,
		HMPIValue:         sample.HMPIValue,
		RiskLevel:         a.RiskLevel,
		Priority:          a.Priority,
		RecommendedAction: a.RecommendedAction,
		RaisedAt:          a.CreatedAt,
	}
}

// EncodeSampleRecorded encodes a SampleRecorded to JSON
func EncodeSampleRecorded(e *SampleRecorded) ([]byte, error) {
	e.Type = EventSampleRecorded
	return json.Marshal(e)
}

// DecodeSampleRecorded decodes and validates a SampleRecorded
func DecodeSampleRecorded(data []byte) (*SampleRecorded, error) {
	var e SampleRecorded
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("invalid sample event: %w", err)
	}
	if err := validateSampleRecorded(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// EncodeAlertRaised encodes an AlertRaised to JSON
func EncodeAlertRaised(e *AlertRaised) ([]byte, error) {
	e.Type = EventAlertRaised
	return json.Marshal(e)
}

// DecodeAlertRaised decodes and validates an AlertRaised
func DecodeAlertRaised(data []byte) (*AlertRaised, error) {
	var e AlertRaised
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("invalid alert event: %w", err)
	}
	if err := validateAlertRaised(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
