package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// EventType identifies the payload carried on a topic
type EventType string

const (
	EventSampleRecorded EventType = "sample.recorded"
	EventAlertRaised    EventType = "alert.raised"
)

// BaseEvent is the common structure for all events
type BaseEvent struct {
	Type EventType `json:"type"`
}

// ParseEvent decodes a JSON payload into the event type it announces
func ParseEvent(data []byte) (interface{}, error) {
	var base BaseEvent
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch base.Type {
	case EventSampleRecorded:
		return DecodeSampleRecorded(data)
	case EventAlertRaised:
		return DecodeAlertRaised(data)
	default:
		return nil, fmt.Errorf("unknown event type: %s", base.Type)
	}
}

func validateSampleRecorded(e *SampleRecorded) error {
	if e.SampleID == uuid.Nil {
		return fmt.Errorf("sample_id is required")
	}
	if e.ProjectID == uuid.Nil {
		return fmt.Errorf("project_id is required")
	}
	if e.RiskLevel == "" {
		return fmt.Errorf("risk_level is required")
	}
	return nil
}

func validateAlertRaised(e *AlertRaised) error {
	if e.AlertID == uuid.Nil {
		return fmt.Errorf("alert_id is required")
	}
	if e.SampleID == uuid.Nil {
		return fmt.Errorf("sample_id is required")
	}
	if e.Priority == "" {
		return fmt.Errorf("priority is required")
	}
	return nil
}
